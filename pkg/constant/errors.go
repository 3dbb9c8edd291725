/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 10:12:40
 * @LastEditTime: 2025-09-18 16:40:12
 * @LastEditors: 安知鱼
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误
var (
	// ErrValidation 表示请求校验失败（缺少文件、参数越界、输入数量不符等），
	// 可以由 Handler 转换为 400
	ErrValidation = errors.New("请求参数无效")

	// ErrResource 表示临时目录不可写或磁盘耗尽等资源性故障，可以由 Handler 转换为 503
	ErrResource = errors.New("临时存储不可用")

	// ErrTransformation 表示底层编解码器或外部进程处理失败，可以由 Handler 转换为 500
	ErrTransformation = errors.New("文件转换失败")

	// ErrNotFound 表示产物令牌无法解析到现存文件，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")
)
