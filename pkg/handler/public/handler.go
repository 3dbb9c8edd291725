/*
 * @Description: 负责健康检查与产物下载等公开端点。
 * @Author: 安知鱼
 * @Date: 2025-09-09 11:08:52
 * @LastEditTime: 2026-01-08 10:31:26
 * @LastEditors: 安知鱼
 */
package public_handler

import (
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adammamod416/ToolX/internal/pkg/version"
	"github.com/adammamod416/ToolX/pkg/response"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
)

// PublicHandler 负责无需任何参数校验逻辑的公开端点。
type PublicHandler struct {
	store artifact.Store
}

// NewPublicHandler 是 PublicHandler 的构造函数。
func NewPublicHandler(store artifact.Store) *PublicHandler {
	return &PublicHandler{store: store}
}

// Health 健康检查
// @Summary      健康检查
// @Tags         系统
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *PublicHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "ToolX Server is running",
		"version":   version.GetVersion(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Download 按令牌下载转换产物
// @Summary      下载产物
// @Tags         系统
// @Param        token  path  string  true  "产物令牌"
// @Success      200  {file}  binary
// @Failure      404  {object}  response.Response
// @Router       /uploads/{token} [get]
func (h *PublicHandler) Download(c *gin.Context) {
	token := c.Param("token")

	path, err := h.store.Resolve(token)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	if ctype := mime.TypeByExtension(filepath.Ext(path)); ctype != "" {
		c.Header("Content-Type", ctype)
	}
	c.FileAttachment(path, token)
}
