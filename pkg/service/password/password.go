/*
 * @Description: 密码生成与强度评估服务。
 * @Author: 安知鱼
 * @Date: 2025-09-05 15:42:18
 * @LastEditTime: 2025-11-26 19:10:37
 * @LastEditors: 安知鱼
 */
package password

import (
	"crypto/rand"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adammamod416/ToolX/pkg/constant"
	"github.com/adammamod416/ToolX/pkg/domain/model"
)

// 四类字符集，拼接顺序固定：大写、小写、数字、符号。
const (
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	numberChars    = "0123456789"
	symbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// MaxBulkCount 是单次批量生成的数量上限。
const MaxBulkCount = 100

// MaxLength 是单个密码的长度上限。
const MaxLength = 128

// Service 是无状态的密码生成器，可以被任意并发调用。
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Generate 按规格生成一个密码并附带强度评估。
func (s *Service) Generate(spec model.PasswordSpec) (model.PasswordResult, error) {
	charset := buildCharset(spec)
	if charset == "" {
		return model.PasswordResult{}, fmt.Errorf("%w: 至少需要选择一类字符", constant.ErrValidation)
	}
	if spec.Length < 1 || spec.Length > MaxLength {
		return model.PasswordResult{}, fmt.Errorf("%w: 密码长度必须在 1 到 %d 之间", constant.ErrValidation, MaxLength)
	}

	randomBytes := make([]byte, spec.Length)
	if _, err := rand.Read(randomBytes); err != nil {
		return model.PasswordResult{}, fmt.Errorf("%w: 获取随机源失败: %v", constant.ErrResource, err)
	}

	// byte mod len(charset) 在 256 不能整除字符集长度时，会让靠前的字符
	// 出现概率略高。对这个工具的威胁模型来说偏差可以忽略，且改为拒绝采样
	// 会改变既有的输出分布，所以保留取模实现并在此说明。
	var b strings.Builder
	b.Grow(spec.Length)
	for _, rb := range randomBytes {
		b.WriteByte(charset[int(rb)%len(charset)])
	}
	value := b.String()

	return model.PasswordResult{
		Password: value,
		Length:   len(value),
		Strength: CalculateStrength(value),
	}, nil
}

// GenerateBulk 生成 count 个相互独立的密码，count 上限为 100。
func (s *Service) GenerateBulk(spec model.PasswordSpec, count int) ([]model.PasswordResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count 必须是正整数", constant.ErrValidation)
	}
	if count > MaxBulkCount {
		return nil, fmt.Errorf("%w: 单次最多生成 %d 个密码", constant.ErrValidation, MaxBulkCount)
	}

	results := make([]model.PasswordResult, 0, count)
	for i := 0; i < count; i++ {
		result, err := s.Generate(spec)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// CalculateStrength 按固定的七项规则为密码打分，输入相同结果恒定。
// 长度按字符数计，多字节字符不会虚增长度。
func CalculateStrength(password string) model.PasswordStrength {
	score := 0
	checks := model.StrengthChecks{}

	runeCount := utf8.RuneCountInString(password)
	if runeCount >= 8 {
		score++
		checks.Length = true
	}
	if runeCount >= 12 {
		score++
		checks.LongLength = true
	}
	if runeCount >= 16 {
		score++
		checks.VeryLongLength = true
	}

	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			checks.Lowercase = true
		case r >= 'A' && r <= 'Z':
			checks.Uppercase = true
		case r >= '0' && r <= '9':
			checks.Numbers = true
		default:
			checks.Symbols = true
		}
	}
	if checks.Lowercase {
		score++
	}
	if checks.Uppercase {
		score++
	}
	if checks.Numbers {
		score++
	}
	if checks.Symbols {
		score++
	}

	var level int
	var text, color string
	switch {
	case score <= 2:
		level, text, color = 1, "弱", "#ef4444"
	case score <= 4:
		level, text, color = 2, "中等", "#f59e0b"
	case score <= 6:
		level, text, color = 3, "强", "#10b981"
	default:
		level, text, color = 4, "非常强", "#14b8a6"
	}

	return model.PasswordStrength{
		Score:  score,
		Level:  level,
		Text:   text,
		Color:  color,
		Checks: checks,
	}
}

// buildCharset 按固定顺序拼接被启用的字符类。
func buildCharset(spec model.PasswordSpec) string {
	var b strings.Builder
	if spec.IncludeUppercase {
		b.WriteString(uppercaseChars)
	}
	if spec.IncludeLowercase {
		b.WriteString(lowercaseChars)
	}
	if spec.IncludeNumbers {
		b.WriteString(numberChars)
	}
	if spec.IncludeSymbols {
		b.WriteString(symbolChars)
	}
	return b.String()
}
