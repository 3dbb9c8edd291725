/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 10:30:11
 * @LastEditTime: 2025-10-09 21:17:36
 * @LastEditors: 安知鱼
 */
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adammamod416/ToolX/pkg/constant"
)

// Response 是统一的API返回结构体
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success: false,
		Message: message,
	})
}

// FailWithError 根据错误分类选择 HTTP 状态码返回失败响应。
// 对外只暴露分类对应的本地化文案，底层错误细节只进服务端日志。
func FailWithError(c *gin.Context, err error) {
	Fail(c, StatusFromError(err), MessageFromError(err))
}

// StatusFromError 将错误分类映射为 HTTP 状态码
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, constant.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, constant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, constant.ErrResource):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// MessageFromError 提取可以安全返回给客户端的文案。
// 校验类错误的文案本身就是面向用户的，原样返回；
// 其余分类只返回哨兵错误的通用文案，防止内部细节外泄。
func MessageFromError(err error) string {
	if errors.Is(err, constant.ErrValidation) {
		return err.Error()
	}
	switch {
	case errors.Is(err, constant.ErrNotFound):
		return constant.ErrNotFound.Error()
	case errors.Is(err, constant.ErrResource):
		return constant.ErrResource.Error()
	case errors.Is(err, constant.ErrTransformation):
		return constant.ErrTransformation.Error()
	default:
		return "服务器内部错误"
	}
}
