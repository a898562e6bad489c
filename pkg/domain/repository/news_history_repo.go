/*
 * @Description: 新闻历史快照仓储接口
 * @Author: 安知鱼
 * @Date: 2026-02-03 12:11:03
 */
package repository

import (
	"context"
	"time"

	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
)

// NewsHistoryRepository 定义了新闻历史快照数据仓库的接口。
// 快照只追加，不会被修改。
type NewsHistoryRepository interface {
	// Record 追加一条快照
	Record(ctx context.Context, newsID uint, fields model.NewsPatch, at time.Time) (*model.NewsHistory, error)

	// MostRecent 获取最近的一条快照：created_at 最大者，相同时取ID最大者。
	// 没有快照时返回 constant.ErrNotFound
	MostRecent(ctx context.Context, newsID uint) (*model.NewsHistory, error)

	// Delete 删除单条快照（回滚消费快照时调用）
	Delete(ctx context.Context, id uint) error

	// DeleteAll 删除新闻的所有快照（新闻被删除时调用），返回删除的条数
	DeleteAll(ctx context.Context, newsID uint) (int, error)

	// ListByNews 获取新闻的全部快照，最新的在前
	ListByNews(ctx context.Context, newsID uint) ([]*model.NewsHistory, error)

	// CountByNews 获取新闻的快照总数
	CountByNews(ctx context.Context, newsID uint) (int, error)

	// DeleteOldVersions 只保留最近的 keepCount 条快照，返回删除的条数
	DeleteOldVersions(ctx context.Context, newsID uint, keepCount int) (int, error)

	// NewsIDsWithHistory 获取所有存在快照的新闻ID（用于定时清理任务）
	NewsIDsWithHistory(ctx context.Context) ([]uint, error)
}
