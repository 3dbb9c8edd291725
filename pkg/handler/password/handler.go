/*
 * @Description: 负责处理密码工具相关的HTTP请求。
 * @Author: 安知鱼
 * @Date: 2025-09-09 09:25:16
 * @LastEditTime: 2025-12-22 17:03:48
 * @LastEditors: 安知鱼
 */
package password_handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/response"
	"github.com/adammamod416/ToolX/pkg/service/password"
)

// specRequest 是生成端点的请求体。
// 字段用指针是为了区分“显式传 false/0”和“未传”：未传的字段取默认值
// （长度 16，四类字符全开）。
type specRequest struct {
	Length           *int  `json:"length"`
	IncludeUppercase *bool `json:"includeUppercase"`
	IncludeLowercase *bool `json:"includeLowercase"`
	IncludeNumbers   *bool `json:"includeNumbers"`
	IncludeSymbols   *bool `json:"includeSymbols"`
}

// toSpec 应用默认值并转换为领域模型。
func (r specRequest) toSpec() model.PasswordSpec {
	spec := model.PasswordSpec{
		Length:           16,
		IncludeUppercase: true,
		IncludeLowercase: true,
		IncludeNumbers:   true,
		IncludeSymbols:   true,
	}
	if r.Length != nil {
		spec.Length = *r.Length
	}
	if r.IncludeUppercase != nil {
		spec.IncludeUppercase = *r.IncludeUppercase
	}
	if r.IncludeLowercase != nil {
		spec.IncludeLowercase = *r.IncludeLowercase
	}
	if r.IncludeNumbers != nil {
		spec.IncludeNumbers = *r.IncludeNumbers
	}
	if r.IncludeSymbols != nil {
		spec.IncludeSymbols = *r.IncludeSymbols
	}
	return spec
}

// PasswordHandler 负责处理密码生成与强度检测端点。
type PasswordHandler struct {
	svc *password.Service
}

// NewPasswordHandler 是 PasswordHandler 的构造函数。
func NewPasswordHandler(svc *password.Service) *PasswordHandler {
	return &PasswordHandler{svc: svc}
}

// Generate 生成单个密码
// @Summary      生成密码
// @Tags         密码工具
// @Accept       json
// @Produce      json
// @Param        body  body  specRequest  false  "生成规格"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /password/generate [post]
func (h *PasswordHandler) Generate(c *gin.Context) {
	var req specRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Fail(c, http.StatusBadRequest, "请求体格式无效")
		return
	}

	result, err := h.svc.Generate(req.toSpec())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "密码生成成功")
}

// GenerateBulk 批量生成密码
// @Summary      批量生成密码
// @Tags         密码工具
// @Accept       json
// @Produce      json
// @Param        body  body  object{count=int}  false  "生成规格与数量（最多 100）"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /password/generate-bulk [post]
func (h *PasswordHandler) GenerateBulk(c *gin.Context) {
	var req struct {
		specRequest
		Count *int `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Fail(c, http.StatusBadRequest, "请求体格式无效")
		return
	}

	count := 5
	if req.Count != nil {
		count = *req.Count
	}

	results, err := h.svc.GenerateBulk(req.toSpec(), count)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count":     len(results),
		"passwords": results,
	}, "密码批量生成成功")
}

// CheckStrength 评估一个密码的强度
// @Summary      检测密码强度
// @Tags         密码工具
// @Accept       json
// @Produce      json
// @Param        body  body  object{password=string}  true  "待检测的密码"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /password/check-strength [post]
func (h *PasswordHandler) CheckStrength(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		response.Fail(c, http.StatusBadRequest, "请输入待检测的密码")
		return
	}

	response.Success(c, password.CalculateStrength(req.Password), "")
}
