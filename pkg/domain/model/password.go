/*
 * @Description: 密码生成器的领域模型。
 * @Author: 安知鱼
 * @Date: 2025-09-02 11:10:03
 * @LastEditTime: 2025-09-25 09:48:31
 * @LastEditors: 安知鱼
 */
package model

// PasswordSpec 描述一次密码生成请求。
// 四个布尔开关至少要有一个为 true，否则生成被拒绝。
type PasswordSpec struct {
	Length           int  `json:"length"`
	IncludeUppercase bool `json:"includeUppercase"`
	IncludeLowercase bool `json:"includeLowercase"`
	IncludeNumbers   bool `json:"includeNumbers"`
	IncludeSymbols   bool `json:"includeSymbols"`
}

// StrengthChecks 是强度评分的逐项结果。
type StrengthChecks struct {
	Length         bool `json:"length"`
	Lowercase      bool `json:"lowercase"`
	Uppercase      bool `json:"uppercase"`
	Numbers        bool `json:"numbers"`
	Symbols        bool `json:"symbols"`
	LongLength     bool `json:"longLength"`
	VeryLongLength bool `json:"veryLongLength"`
}

// PasswordStrength 是固定七项评分的汇总：
// score 0-7，level 1-4，附带展示用的文案和颜色。
type PasswordStrength struct {
	Score  int            `json:"score"`
	Level  int            `json:"level"`
	Text   string         `json:"text"`
	Color  string         `json:"color"`
	Checks StrengthChecks `json:"checks"`
}

// PasswordResult 是一次生成的结果。
type PasswordResult struct {
	Password string           `json:"password"`
	Length   int              `json:"length"`
	Strength PasswordStrength `json:"strength"`
}
