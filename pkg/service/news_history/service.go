/*
 * @Description: 新闻历史快照服务
 * @Author: 安知鱼
 * @Date: 2026-01-13
 */
package news_history

import (
	"context"
	"fmt"
	"log"

	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
)

// Service 定义了新闻历史快照服务的接口
type Service interface {
	// ListHistory 获取新闻的全部快照，最新的在前
	ListHistory(ctx context.Context, newsID uint) (*model.NewsHistoryListResponse, error)

	// GetHistoryCount 获取新闻的快照数量
	GetHistoryCount(ctx context.Context, newsID uint) (int, error)

	// CleanupAllOldVersions 清理所有新闻超出保留数量的旧快照（定时任务调用）
	CleanupAllOldVersions(ctx context.Context) (int, error)

	// MaxVersions 每条新闻最多保留的快照数量，0 表示不限制
	MaxVersions() int
}

type serviceImpl struct {
	historyRepo repository.NewsHistoryRepository
	newsRepo    repository.NewsRepository
	maxVersions int
}

// NewService 创建 NewsHistoryService 实例，maxVersions <= 0 表示不清理
func NewService(
	historyRepo repository.NewsHistoryRepository,
	newsRepo repository.NewsRepository,
	maxVersions int,
) Service {
	if maxVersions < 0 {
		maxVersions = 0
	}
	return &serviceImpl{
		historyRepo: historyRepo,
		newsRepo:    newsRepo,
		maxVersions: maxVersions,
	}
}

func (s *serviceImpl) MaxVersions() int {
	return s.maxVersions
}

// ListHistory 获取新闻历史快照列表
func (s *serviceImpl) ListHistory(ctx context.Context, newsID uint) (*model.NewsHistoryListResponse, error) {
	// 验证新闻是否存在
	if _, err := s.newsRepo.GetByID(ctx, newsID); err != nil {
		return nil, fmt.Errorf("新闻不存在: %w", err)
	}

	items, err := s.historyRepo.ListByNews(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("获取历史快照列表失败: %w", err)
	}

	return &model.NewsHistoryListResponse{
		List:  items,
		Total: len(items),
	}, nil
}

// GetHistoryCount 获取新闻的快照数量
func (s *serviceImpl) GetHistoryCount(ctx context.Context, newsID uint) (int, error) {
	count, err := s.historyRepo.CountByNews(ctx, newsID)
	if err != nil {
		return 0, fmt.Errorf("获取历史快照数量失败: %w", err)
	}
	return count, nil
}

// CleanupAllOldVersions 清理所有新闻的旧快照，返回被清理的新闻数量
func (s *serviceImpl) CleanupAllOldVersions(ctx context.Context) (int, error) {
	if s.maxVersions <= 0 {
		return 0, nil
	}

	newsIDs, err := s.historyRepo.NewsIDsWithHistory(ctx)
	if err != nil {
		return 0, fmt.Errorf("获取新闻ID列表失败: %w", err)
	}

	if len(newsIDs) == 0 {
		log.Printf("[NewsHistoryService] 没有需要清理的历史快照")
		return 0, nil
	}

	log.Printf("[NewsHistoryService] 开始清理历史快照，共有 %d 条新闻有历史记录", len(newsIDs))

	cleanedCount := 0
	errorCount := 0

	for _, newsID := range newsIDs {
		if err := ctx.Err(); err != nil {
			return cleanedCount, err
		}

		count, err := s.historyRepo.CountByNews(ctx, newsID)
		if err != nil {
			log.Printf("[NewsHistoryService] 获取新闻 %d 快照数量失败: %v", newsID, err)
			errorCount++
			continue
		}

		if count > s.maxVersions {
			if _, err := s.historyRepo.DeleteOldVersions(ctx, newsID, s.maxVersions); err != nil {
				log.Printf("[NewsHistoryService] 清理新闻 %d 旧快照失败: %v", newsID, err)
				errorCount++
				continue
			}
			cleanedCount++
		}
	}

	log.Printf("[NewsHistoryService] 历史快照清理完成: 清理了 %d 条新闻的旧快照，%d 个错误", cleanedCount, errorCount)
	return cleanedCount, nil
}
