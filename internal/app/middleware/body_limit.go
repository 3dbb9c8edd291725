/*
 * @Description: 请求体大小限制中间件
 * @Author: 安知鱼
 * @Date: 2025-09-10 10:02:35
 * @LastEditTime: 2025-09-10 10:40:18
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// formOverhead 给 multipart 边界与表单字段留出的余量。
const formOverhead = 1 << 20

// BodyLimit 把请求体截断在 maxFileSize 加少量表单开销的范围内。
// 超限的请求在文件落盘之前就会因读取失败而被拒绝，
// 比先收完再校验节省磁盘和带宽。
func BodyLimit(maxFileSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFileSize+formOverhead)
		c.Next()
	}
}
