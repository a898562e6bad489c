/*
 * @Description: 新闻历史快照仓储实现
 * @Author: 安知鱼
 * @Date: 2026-02-04 14:02:51
 * @LastEditTime: 2026-02-05 17:20:33
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
)

var historySelectColumns = []string{
	database.ColumnID,
	database.ColumnNewsID,
	database.ColumnFields,
	database.ColumnCreatedAt,
}

type newsHistoryRepo struct {
	conn
}

// NewNewsHistoryRepo 是 newsHistoryRepo 的构造函数。drv 可以是驱动本身，也可以是事务。
func NewNewsHistoryRepo(drv dialect.ExecQuerier, dialectName string) repository.NewsHistoryRepository {
	return &newsHistoryRepo{conn: conn{drv: drv, dialect: dialectName}}
}

func scanHistory(rows *entsql.Rows) (*model.NewsHistory, error) {
	var (
		h       model.NewsHistory
		fields  []byte
		created timeValue
	)
	if err := rows.Scan(&h.ID, &h.NewsID, &fields, &created); err != nil {
		return nil, fmt.Errorf("读取历史快照失败: %w", err)
	}
	if err := json.Unmarshal(fields, &h.Fields); err != nil {
		return nil, fmt.Errorf("解析历史快照 %d 失败: %w", h.ID, err)
	}
	h.CreatedAt = created.t
	return &h, nil
}

// newestFirst 返回按时间倒序（相同时间按ID倒序）查询某条新闻快照的选择器
func (r *newsHistoryRepo) newestFirst(newsID uint, columns ...string) *entsql.Selector {
	return r.builder().Select(columns...).
		From(entsql.Table(database.NewsHistoryTableName)).
		Where(entsql.EQ(database.ColumnNewsID, newsID)).
		OrderBy(entsql.Desc(database.ColumnCreatedAt), entsql.Desc(database.ColumnID))
}

// Record 追加一条快照
func (r *newsHistoryRepo) Record(ctx context.Context, newsID uint, fields model.NewsPatch, at time.Time) (*model.NewsHistory, error) {
	if fields.IsEmpty() {
		return nil, fmt.Errorf("%w: 快照至少需要包含一个字段", constant.ErrValidation)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("序列化历史快照失败: %w", err)
	}

	// 快照时间不早于该新闻已有的最新快照，时钟回拨时沿用最新的时间
	latest, found, err := r.latestCreatedAt(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("查询最新快照时间失败: %w", err)
	}
	at = at.UTC().Truncate(time.Microsecond)
	if found && at.Before(latest) {
		at = latest
	}

	ib := r.builder().Insert(database.NewsHistoryTableName).
		Columns(database.ColumnNewsID, database.ColumnFields, database.ColumnCreatedAt).
		Values(newsID, string(data), r.timeArg(at))

	id, err := r.insert(ctx, ib)
	if err != nil {
		return nil, fmt.Errorf("创建历史快照失败: %w", err)
	}

	log.Printf("[NewsHistoryRepo] 创建历史快照成功: 新闻ID=%d, 快照ID=%d", newsID, id)
	return &model.NewsHistory{
		ID:        id,
		NewsID:    newsID,
		Fields:    fields,
		CreatedAt: at,
	}, nil
}

// latestCreatedAt 返回某条新闻最新快照的时间
func (r *newsHistoryRepo) latestCreatedAt(ctx context.Context, newsID uint) (time.Time, bool, error) {
	var (
		latest timeValue
		found  bool
	)
	err := r.query(ctx, r.newestFirst(newsID, database.ColumnCreatedAt).Limit(1), func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&latest)
	})
	if err != nil {
		return time.Time{}, false, err
	}
	return latest.t.UTC(), found, nil
}

// MostRecent 获取最近的一条快照
func (r *newsHistoryRepo) MostRecent(ctx context.Context, newsID uint) (*model.NewsHistory, error) {
	var found *model.NewsHistory
	err := r.query(ctx, r.newestFirst(newsID, historySelectColumns...).Limit(1), func(rows *entsql.Rows) error {
		h, err := scanHistory(rows)
		found = h
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("查询最近的历史快照失败: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: 新闻 %d 没有历史快照", constant.ErrNotFound, newsID)
	}
	return found, nil
}

// Delete 删除单条快照
func (r *newsHistoryRepo) Delete(ctx context.Context, id uint) error {
	db := r.builder().Delete(database.NewsHistoryTableName).
		Where(entsql.EQ(database.ColumnID, id))
	if _, err := r.exec(ctx, db); err != nil {
		return fmt.Errorf("删除历史快照 %d 失败: %w", id, err)
	}
	return nil
}

// DeleteAll 删除新闻的所有快照
func (r *newsHistoryRepo) DeleteAll(ctx context.Context, newsID uint) (int, error) {
	db := r.builder().Delete(database.NewsHistoryTableName).
		Where(entsql.EQ(database.ColumnNewsID, newsID))
	affected, err := r.exec(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("删除新闻 %d 的历史快照失败: %w", newsID, err)
	}
	return int(affected), nil
}

// ListByNews 获取新闻的全部快照，最新的在前
func (r *newsHistoryRepo) ListByNews(ctx context.Context, newsID uint) ([]*model.NewsHistory, error) {
	list := make([]*model.NewsHistory, 0)
	err := r.query(ctx, r.newestFirst(newsID, historySelectColumns...), func(rows *entsql.Rows) error {
		h, err := scanHistory(rows)
		if err != nil {
			return err
		}
		list = append(list, h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("查询历史快照列表失败: %w", err)
	}
	return list, nil
}

// CountByNews 获取新闻的快照总数
func (r *newsHistoryRepo) CountByNews(ctx context.Context, newsID uint) (int, error) {
	s := r.builder().Select().
		From(entsql.Table(database.NewsHistoryTableName)).
		Where(entsql.EQ(database.ColumnNewsID, newsID)).
		Count()
	n, err := r.count(ctx, s)
	if err != nil {
		return 0, fmt.Errorf("统计历史快照数量失败: %w", err)
	}
	return n, nil
}

// DeleteOldVersions 只保留最近的 keepCount 条快照
func (r *newsHistoryRepo) DeleteOldVersions(ctx context.Context, newsID uint, keepCount int) (int, error) {
	if keepCount < 0 {
		keepCount = 0
	}

	var ids []any
	position := 0
	err := r.query(ctx, r.newestFirst(newsID, database.ColumnID), func(rows *entsql.Rows) error {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return err
		}
		if position >= keepCount {
			ids = append(ids, id)
		}
		position++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("查询需要清理的历史快照失败: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	db := r.builder().Delete(database.NewsHistoryTableName).
		Where(entsql.In(database.ColumnID, ids...))
	affected, err := r.exec(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("清理新闻 %d 的旧快照失败: %w", newsID, err)
	}

	log.Printf("[NewsHistoryRepo] 清理旧快照: 新闻ID=%d, 保留=%d, 删除=%d", newsID, keepCount, affected)
	return int(affected), nil
}

// NewsIDsWithHistory 获取所有存在快照的新闻ID
func (r *newsHistoryRepo) NewsIDsWithHistory(ctx context.Context) ([]uint, error) {
	s := r.builder().Select(database.ColumnNewsID).
		Distinct().
		From(entsql.Table(database.NewsHistoryTableName)).
		OrderBy(entsql.Asc(database.ColumnNewsID))

	ids := make([]uint, 0)
	err := r.query(ctx, s, func(rows *entsql.Rows) error {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("查询存在历史快照的新闻失败: %w", err)
	}
	return ids, nil
}
