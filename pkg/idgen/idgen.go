/*
 * @Description: 临时文件名唯一片段的生成服务
 * @Author: 安知鱼
 * @Date: 2025-09-02 11:25:40
 * @LastEditTime: 2025-11-14 20:02:18
 * @LastEditors: 安知鱼
 */
package idgen

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sqids/sqids-go"
)

// sqidsEncoder 是用于生成短唯一片段的 Sqids 编码器实例。
var sqidsEncoder *sqids.Sqids

// DefaultAlphabet 是默认的字母表
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// sequence 是进程内单调递增的序号，与毫秒时间戳一起编码，
// 保证同一毫秒内并发申请的路径也互不冲突。
var sequence uint64

// InitSqidsEncoder 初始化 Sqids 编码器，必须在首次调用 NewSlug 之前执行。
func InitSqidsEncoder() error {
	s, err := sqids.New(
		sqids.Options{
			MinLength: 8,
			Alphabet:  DefaultAlphabet,
		},
	)
	if err != nil {
		return fmt.Errorf("初始化 Sqids 编码器失败: %w", err)
	}
	sqidsEncoder = s
	return nil
}

// NewSlug 生成一个 URL 安全的唯一片段，用于拼接临时文件名。
// 编码内容是 (毫秒时间戳, 进程内序号) 二元组。
func NewSlug() (string, error) {
	if sqidsEncoder == nil {
		return "", fmt.Errorf("Sqids 编码器未初始化")
	}

	seq := atomic.AddUint64(&sequence, 1)
	id, err := sqidsEncoder.Encode([]uint64{uint64(time.Now().UnixMilli()), seq})
	if err != nil {
		return "", fmt.Errorf("编码唯一片段失败: %w", err)
	}
	return id, nil
}
