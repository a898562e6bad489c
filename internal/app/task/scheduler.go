/*
 * @Description: 定时任务调度器
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2026-02-06 10:20:31
 * @LastEditors: 安知鱼
 */
package task

import (
	"fmt"
	"log/slog"
	"os"

	news_history_service "github.com/anzhiyu-c/anheyu-news/pkg/service/news_history"

	"github.com/robfig/cron/v3"
)

// DefaultHistoryCleanupSpec 默认每天 3:30 清理旧快照（带秒字段）
const DefaultHistoryCleanupSpec = "0 30 3 * * *"

// Scheduler 封装了 cron 实例和任务需要的服务
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	newsHistorySvc news_history_service.Service
	cleanupSpec    string
}

// NewScheduler 是 Scheduler 的构造函数，cleanupSpec 为空时使用默认表达式
func NewScheduler(newsHistorySvc news_history_service.Service, cleanupSpec string) *Scheduler {
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "cron")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		),
	)

	if cleanupSpec == "" {
		cleanupSpec = DefaultHistoryCleanupSpec
	}
	return &Scheduler{
		cron:           c,
		logger:         logger,
		newsHistorySvc: newsHistorySvc,
		cleanupSpec:    cleanupSpec,
	}
}

// RegisterJobs 注册所有定时任务，返回已注册的任务数量。
// 快照保留数量为 0 时不注册清理任务。
func (s *Scheduler) RegisterJobs() (int, error) {
	s.logger.Info("Registering periodic jobs...")
	registered := 0

	if s.newsHistorySvc != nil && s.newsHistorySvc.MaxVersions() > 0 {
		job := NewNewsHistoryCleanupJob(s.newsHistorySvc)
		if _, err := s.cron.AddJob(s.cleanupSpec, job); err != nil {
			return registered, fmt.Errorf("注册任务 '%s' 失败: %w", job.Name(), err)
		}
		registered++
		s.logger.Info("-> Registered job", "job", job.Name(), "schedule", s.cleanupSpec, "keep", s.newsHistorySvc.MaxVersions())
	}

	s.logger.Info("Periodic jobs registered.", "count", registered)
	return registered, nil
}

// Start 启动 cron 调度器
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 停止调度器，并等待正在运行的任务结束
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler stopped.")
}
