/*
 * @Description: 路由注册，聚合各业务处理器并挂载中间件
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2026-01-17 18:26:37
 * @LastEditors: 安知鱼
 */
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/adammamod416/ToolX/internal/app/middleware"
	image_handler "github.com/adammamod416/ToolX/pkg/handler/image"
	password_handler "github.com/adammamod416/ToolX/pkg/handler/password"
	pdf_handler "github.com/adammamod416/ToolX/pkg/handler/pdf"
	public_handler "github.com/adammamod416/ToolX/pkg/handler/public"
	video_handler "github.com/adammamod416/ToolX/pkg/handler/video"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")

		c.Next()
	})
}

// Options 控制路由级别的中间件行为。
type Options struct {
	// MaxImageBodyBytes 图片与 PDF 接口允许的单次请求体上限。
	MaxImageBodyBytes int64
	// MaxVideoBodyBytes 视频接口允许的单次请求体上限。
	MaxVideoBodyBytes int64
	// RateLimitEnable 是否启用基于 IP 的 API 限流。
	RateLimitEnable bool
	// RateLimitPerMinute 每个 IP 每分钟允许的请求数。
	RateLimitPerMinute int
	// RateLimitBurst 限流桶的突发容量。
	RateLimitBurst int
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	imageHandler    *image_handler.ImageHandler
	pdfHandler      *pdf_handler.PdfHandler
	videoHandler    *video_handler.VideoHandler
	passwordHandler *password_handler.PasswordHandler
	publicHandler   *public_handler.PublicHandler
	opts            Options
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	imageHandler *image_handler.ImageHandler,
	pdfHandler *pdf_handler.PdfHandler,
	videoHandler *video_handler.VideoHandler,
	passwordHandler *password_handler.PasswordHandler,
	publicHandler *public_handler.PublicHandler,
	opts Options,
) *Router {
	return &Router{
		imageHandler:    imageHandler,
		pdfHandler:      pdfHandler,
		videoHandler:    videoHandler,
		passwordHandler: passwordHandler,
		publicHandler:   publicHandler,
		opts:            opts,
	}
}

// Setup 将全部路由注册到给定的 gin 引擎上。
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Cors())

	// 产物下载不走 /api 前缀，与生成的 downloadUrl 保持一致
	engine.GET("/uploads/:token", r.publicHandler.Download)

	apiGroup := engine.Group("/api")
	apiGroup.Use(NoCacheMiddleware())
	if r.opts.RateLimitEnable {
		apiGroup.Use(middleware.APIRateLimit(r.opts.RateLimitPerMinute, r.opts.RateLimitBurst))
	}

	apiGroup.GET("/health", r.publicHandler.Health)

	r.registerImageRoutes(apiGroup)
	r.registerPdfRoutes(apiGroup)
	r.registerVideoRoutes(apiGroup)
	r.registerPasswordRoutes(apiGroup)
}

func (r *Router) registerImageRoutes(api *gin.RouterGroup) {
	imageGroup := api.Group("/image")
	imageGroup.Use(middleware.BodyLimit(r.opts.MaxImageBodyBytes))
	{
		imageGroup.POST("/compress", r.imageHandler.Compress)
		imageGroup.POST("/resize", r.imageHandler.Resize)
		imageGroup.POST("/convert", r.imageHandler.Convert)
	}
}

func (r *Router) registerPdfRoutes(api *gin.RouterGroup) {
	pdfGroup := api.Group("/pdf")
	pdfGroup.Use(middleware.BodyLimit(r.opts.MaxImageBodyBytes))
	{
		pdfGroup.POST("/images-to-pdf", r.pdfHandler.ImagesToPdf)
		pdfGroup.POST("/merge", r.pdfHandler.Merge)
		pdfGroup.POST("/split", r.pdfHandler.Split)
		pdfGroup.POST("/compress", r.pdfHandler.Compress)
	}
}

func (r *Router) registerVideoRoutes(api *gin.RouterGroup) {
	videoGroup := api.Group("/video")
	videoGroup.Use(middleware.BodyLimit(r.opts.MaxVideoBodyBytes))
	{
		videoGroup.POST("/extract-audio", r.videoHandler.ExtractAudio)
		videoGroup.POST("/convert", r.videoHandler.Convert)
		videoGroup.POST("/compress", r.videoHandler.Compress)
	}
}

func (r *Router) registerPasswordRoutes(api *gin.RouterGroup) {
	passwordGroup := api.Group("/password")
	{
		passwordGroup.POST("/generate", r.passwordHandler.Generate)
		passwordGroup.POST("/generate-bulk", r.passwordHandler.GenerateBulk)
		passwordGroup.POST("/check-strength", r.passwordHandler.CheckStrength)
	}
}
