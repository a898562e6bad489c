/*
 * @Description: 新闻仓储接口
 * @Author: 安知鱼
 * @Date: 2026-02-03 12:05:40
 */
package repository

import (
	"context"
	"time"

	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
)

// NewsRepository 定义了新闻数据仓库的接口。
type NewsRepository interface {
	// GetByID 根据ID获取新闻，不存在时返回 constant.ErrNotFound
	GetByID(ctx context.Context, id uint) (*model.News, error)

	// List 获取全部新闻，按ID升序
	List(ctx context.Context) ([]*model.News, error)

	// Create 创建新闻并返回新分配的ID，参数需已通过校验
	Create(ctx context.Context, req *model.CreateNewsRequest, at time.Time) (uint, error)

	// UpdateFields 只更新补丁中出现的字段，返回受影响的行数（0 表示记录不存在）
	UpdateFields(ctx context.Context, id uint, patch model.NewsPatch, at time.Time) (int64, error)

	// Delete 删除新闻，返回受影响的行数（0 表示记录不存在）
	Delete(ctx context.Context, id uint) (int64, error)

	// Count 获取新闻总数
	Count(ctx context.Context) (int, error)
}
