/*
 * @Description: 新闻仓储实现
 * @Author: 安知鱼
 * @Date: 2026-02-04 11:30:02
 * @LastEditTime: 2026-02-05 17:12:40
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
)

var newsSelectColumns = []string{
	database.ColumnID,
	database.ColumnTitle,
	database.ColumnText,
	database.ColumnImg,
	database.ColumnTags,
	database.ColumnCreatedAt,
	database.ColumnUpdatedAt,
}

type newsRepo struct {
	conn
}

// NewNewsRepo 是 newsRepo 的构造函数。drv 可以是驱动本身，也可以是事务。
func NewNewsRepo(drv dialect.ExecQuerier, dialectName string) repository.NewsRepository {
	return &newsRepo{conn: conn{drv: drv, dialect: dialectName}}
}

// scanNews 将一行数据转换为 model.News 领域模型
func scanNews(rows *entsql.Rows) (*model.News, error) {
	var (
		n                model.News
		tags             []byte
		created, updated timeValue
	)
	if err := rows.Scan(&n.ID, &n.Title, &n.Text, &n.Img, &tags, &created, &updated); err != nil {
		return nil, fmt.Errorf("读取新闻数据失败: %w", err)
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &n.Tags); err != nil {
			return nil, fmt.Errorf("解析新闻 %d 的标签失败: %w", n.ID, err)
		}
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	n.CreatedAt = created.t
	n.UpdatedAt = updated.t
	return &n, nil
}

// GetByID 根据ID获取新闻
func (r *newsRepo) GetByID(ctx context.Context, id uint) (*model.News, error) {
	s := r.builder().Select(newsSelectColumns...).
		From(entsql.Table(database.NewsTableName)).
		Where(entsql.EQ(database.ColumnID, id)).
		Limit(1)

	var found *model.News
	err := r.query(ctx, s, func(rows *entsql.Rows) error {
		n, err := scanNews(rows)
		found = n
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("查询新闻失败: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: 新闻 %d 不存在", constant.ErrNotFound, id)
	}
	return found, nil
}

// List 获取全部新闻，按ID升序
func (r *newsRepo) List(ctx context.Context) ([]*model.News, error) {
	s := r.builder().Select(newsSelectColumns...).
		From(entsql.Table(database.NewsTableName)).
		OrderBy(entsql.Asc(database.ColumnID))

	list := make([]*model.News, 0)
	err := r.query(ctx, s, func(rows *entsql.Rows) error {
		n, err := scanNews(rows)
		if err != nil {
			return err
		}
		list = append(list, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("查询新闻列表失败: %w", err)
	}
	return list, nil
}

// Create 创建新闻
func (r *newsRepo) Create(ctx context.Context, req *model.CreateNewsRequest, at time.Time) (uint, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	tags, err := json.Marshal(req.Tags)
	if err != nil {
		return 0, fmt.Errorf("序列化标签失败: %w", err)
	}

	ib := r.builder().Insert(database.NewsTableName).
		Columns(
			database.ColumnTitle,
			database.ColumnText,
			database.ColumnImg,
			database.ColumnTags,
			database.ColumnCreatedAt,
			database.ColumnUpdatedAt,
		).
		Values(*req.Title, *req.Text, *req.Img, string(tags), r.timeArg(at), r.timeArg(at))

	id, err := r.insert(ctx, ib)
	if err != nil {
		return 0, fmt.Errorf("创建新闻失败: %w", err)
	}
	return id, nil
}

// UpdateFields 只更新补丁中出现的字段
func (r *newsRepo) UpdateFields(ctx context.Context, id uint, patch model.NewsPatch, at time.Time) (int64, error) {
	if patch.IsEmpty() {
		return 0, fmt.Errorf("%w: 没有需要更新的字段", constant.ErrValidation)
	}

	ub := r.builder().Update(database.NewsTableName)
	if patch.Title != nil {
		ub.Set(database.ColumnTitle, *patch.Title)
	}
	if patch.Text != nil {
		ub.Set(database.ColumnText, *patch.Text)
	}
	if patch.Img != nil {
		ub.Set(database.ColumnImg, *patch.Img)
	}
	if patch.Tags != nil {
		tags, err := json.Marshal(patch.Tags)
		if err != nil {
			return 0, fmt.Errorf("序列化标签失败: %w", err)
		}
		ub.Set(database.ColumnTags, string(tags))
	}
	ub.Set(database.ColumnUpdatedAt, r.timeArg(at)).
		Where(entsql.EQ(database.ColumnID, id))

	affected, err := r.exec(ctx, ub)
	if err != nil {
		return 0, fmt.Errorf("更新新闻 %d 失败: %w", id, err)
	}
	return affected, nil
}

// Delete 删除新闻
func (r *newsRepo) Delete(ctx context.Context, id uint) (int64, error) {
	db := r.builder().Delete(database.NewsTableName).
		Where(entsql.EQ(database.ColumnID, id))

	affected, err := r.exec(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("删除新闻 %d 失败: %w", id, err)
	}
	return affected, nil
}

// Count 获取新闻总数
func (r *newsRepo) Count(ctx context.Context) (int, error) {
	s := r.builder().Select().From(entsql.Table(database.NewsTableName)).Count()
	n, err := r.count(ctx, s)
	if err != nil {
		return 0, fmt.Errorf("统计新闻数量失败: %w", err)
	}
	return n, nil
}
