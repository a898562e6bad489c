/*
 * @Description: 新闻历史快照清理定时任务
 * @Author: 安知鱼
 * @Date: 2026-01-13
 */
package task

import (
	"context"
	"log"
	"time"

	news_history_service "github.com/anzhiyu-c/anheyu-news/pkg/service/news_history"
)

// cleanupTimeout 单次清理的最长执行时间
const cleanupTimeout = 5 * time.Minute

// NewsHistoryCleanupJob 定期清理每条新闻超出保留数量的旧快照
type NewsHistoryCleanupJob struct {
	historyService news_history_service.Service
}

func NewNewsHistoryCleanupJob(historyService news_history_service.Service) *NewsHistoryCleanupJob {
	return &NewsHistoryCleanupJob{
		historyService: historyService,
	}
}

// Run 实现 cron.Job 接口
func (j *NewsHistoryCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	cleanedCount, err := j.historyService.CleanupAllOldVersions(ctx)
	if err != nil {
		log.Printf("任务 '%s' 执行失败: %v", j.Name(), err)
		return
	}
	log.Printf("任务 '%s' 执行完毕，共清理了 %d 条新闻的旧快照。", j.Name(), cleanedCount)
}

func (j *NewsHistoryCleanupJob) Name() string {
	return "NewsHistoryCleanupJob"
}
