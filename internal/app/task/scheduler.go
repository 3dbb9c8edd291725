/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-10 14:21:08
 * @LastEditTime: 2025-12-15 18:42:30
 * @LastEditors: 安知鱼
 */
package task

import (
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/adammamod416/ToolX/pkg/service/artifact"
)

// Scheduler 封装了 cron 实例和其依赖。
// 它是整个定时任务模块的核心协调者，负责任务的注册、启动和停止。
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	store       *artifact.LocalStore
	cleanupCron string
	retention   time.Duration
}

// NewScheduler 是 Scheduler 的构造函数。
func NewScheduler(store *artifact.LocalStore, cleanupCron string, retention time.Duration) *Scheduler {
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "cron")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.DelayIfStillRunning(cron.DefaultLogger),
		),
	)

	return &Scheduler{
		cron:        c,
		logger:      logger,
		store:       store,
		cleanupCron: cleanupCron,
		retention:   retention,
	}
}

// RegisterJobs 在调度器中注册所有定义好的定时任务。
func (s *Scheduler) RegisterJobs() {
	s.logger.Info("Registering all periodic jobs...")

	// --- 任务: 回收超龄的转换产物 ---
	cleanupJob := NewArtifactCleanupJob(s.store, s.retention)

	_, err := s.cron.AddJob(s.cleanupCron, cleanupJob)
	if err != nil {
		s.logger.Error("Failed to add 'ArtifactCleanupJob'", slog.Any("error", err))
		os.Exit(1)
	}
	s.logger.Info("-> Successfully registered 'ArtifactCleanupJob'", "schedule", s.cleanupCron)

	s.logger.Info("All periodic jobs registered.")
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 优雅地停止 cron 调度器。
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler gracefully stopped.")
}
