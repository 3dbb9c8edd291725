/*
 * @Description: 应用组装与生命周期管理
 * @Author: 安知鱼
 * @Date: 2025-10-17 10:35:28
 * @LastEditTime: 2026-01-22 16:15:28
 * @LastEditors: 安知鱼
 */
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adammamod416/ToolX/internal/app/task"
	"github.com/adammamod416/ToolX/internal/infra/router"
	"github.com/adammamod416/ToolX/internal/pkg/version"
	"github.com/adammamod416/ToolX/pkg/config"
	image_handler "github.com/adammamod416/ToolX/pkg/handler/image"
	password_handler "github.com/adammamod416/ToolX/pkg/handler/password"
	pdf_handler "github.com/adammamod416/ToolX/pkg/handler/pdf"
	public_handler "github.com/adammamod416/ToolX/pkg/handler/public"
	video_handler "github.com/adammamod416/ToolX/pkg/handler/video"
	"github.com/adammamod416/ToolX/pkg/idgen"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
	password_service "github.com/adammamod416/ToolX/pkg/service/password"
	"github.com/adammamod416/ToolX/pkg/service/transform"
)

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg       *config.Config
	engine    *gin.Engine
	server    *http.Server
	scheduler *task.Scheduler
	store     *artifact.LocalStore
}

// PrintBanner 在标准输出打印启动横幅。
func (a *App) PrintBanner() {
	banner := `

      ████████╗ ██████╗  ██████╗ ██╗     ██╗  ██╗
      ╚══██╔══╝██╔═══██╗██╔═══██╗██║     ╚██╗██╔╝
         ██║   ██║   ██║██║   ██║██║      ╚███╔╝
         ██║   ██║   ██║██║   ██║██║      ██╔██╗
         ██║   ╚██████╔╝╚██████╔╝███████╗██╔╝ ██╗
         ╚═╝    ╚═════╝  ╚═════╝ ╚══════╝╚═╝  ╚═╝

`
	log.Println(banner)
	log.Println("--------------------------------------------------------")
	log.Printf(" ToolX - 多格式文件处理服务 %s", version.GetVersionString())
	log.Println("--------------------------------------------------------")
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp() (*App, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	if err := idgen.InitSqidsEncoder(); err != nil {
		return nil, fmt.Errorf("初始化 ID 生成器失败: %w", err)
	}

	if !cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := artifact.NewLocalStore(cfg.GetString(config.KeyUploadDir))
	if err != nil {
		return nil, fmt.Errorf("初始化产物存储失败: %w", err)
	}

	// 组装转换服务：注册表 + 各格式转换器 + 执行器
	registry := transform.NewRegistry()
	transform.NewImageTransformer().Register(registry)
	transform.NewPdfTransformer().Register(registry)
	ffmpegTimeout := time.Duration(cfg.GetInt(config.KeyFfmpegTimeout)) * time.Second
	videoTransformer := transform.NewVideoTransformer(cfg.GetString(config.KeyFfmpegPath), ffmpegTimeout)
	videoTransformer.Register(registry)
	executor := transform.NewExecutor(store, registry)

	passwordSvc := password_service.NewService()

	maxImageBytes := cfg.GetInt64(config.KeyUploadMaxImageSizeMB) << 20
	maxVideoBytes := cfg.GetInt64(config.KeyUploadMaxVideoSizeMB) << 20

	imageHandler := image_handler.NewImageHandler(store, executor, maxImageBytes)
	pdfHandler := pdf_handler.NewPdfHandler(store, executor, maxImageBytes)
	videoHandler := video_handler.NewVideoHandler(store, executor, maxVideoBytes)
	passwordHandler := password_handler.NewPasswordHandler(passwordSvc)
	publicHandler := public_handler.NewPublicHandler(store)

	engine := gin.Default()
	appRouter := router.NewRouter(
		imageHandler,
		pdfHandler,
		videoHandler,
		passwordHandler,
		publicHandler,
		router.Options{
			MaxImageBodyBytes:  maxImageBytes,
			MaxVideoBodyBytes:  maxVideoBytes,
			RateLimitEnable:    cfg.GetBool(config.KeyRateLimitEnable),
			RateLimitPerMinute: cfg.GetInt(config.KeyRateLimitPerMinute),
			RateLimitBurst:     cfg.GetInt(config.KeyRateLimitBurst),
		},
	)
	appRouter.Setup(engine)

	app := &App{
		cfg:    cfg,
		engine: engine,
		store:  store,
	}

	if cfg.GetBool(config.KeyCleanupEnable) {
		retention := time.Duration(cfg.GetInt(config.KeyCleanupRetention)) * time.Minute
		app.scheduler = task.NewScheduler(store, cfg.GetString(config.KeyCleanupCron), retention)
	}

	return app, nil
}

// Config 返回应用配置，供外部诊断使用。
func (a *App) Config() *config.Config {
	return a.cfg
}

// Engine 返回底层的 gin 引擎。
func (a *App) Engine() *gin.Engine {
	return a.engine
}

// Run 启动后台调度与 HTTP 服务，阻塞直到服务退出。
func (a *App) Run() error {
	if a.scheduler != nil {
		a.scheduler.RegisterJobs()
		a.scheduler.Start()
	}

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	fmt.Printf("应用程序启动成功，正在监听端口: %s\n", port)

	a.server = &http.Server{
		Addr:    ":" + port,
		Handler: a.engine,
	}
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 优雅地停止 HTTP 服务与后台任务。
func (a *App) Stop() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			log.Printf("HTTP 服务关闭异常: %v", err)
		}
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
		log.Println("任务调度器已停止。")
	}
}
