/*
 * @Description: 新闻历史快照仓储的内存实现
 * @Author: 安知鱼
 * @Date: 2026-02-04 16:45:09
 */
package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
)

type newsHistoryRepo struct {
	store *Store
	inTx  bool
}

// deleteHistories 删除满足条件的快照，返回删除的条数。调用方需持有锁。
func (s *Store) deleteHistories(match func(h *model.NewsHistory) bool) int {
	kept := s.histories[:0:0]
	deleted := 0
	for _, h := range s.histories {
		if match(h) {
			deleted++
			continue
		}
		kept = append(kept, h)
	}
	s.histories = kept
	return deleted
}

// newestFirst 返回某条新闻的快照，时间倒序，相同时间按ID倒序。调用方需持有锁。
func (s *Store) newestFirst(newsID uint) []*model.NewsHistory {
	list := make([]*model.NewsHistory, 0)
	for _, h := range s.histories {
		if h.NewsID == newsID {
			list = append(list, h)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

func copyHistory(h *model.NewsHistory) *model.NewsHistory {
	c := *h
	if h.Fields.Tags != nil {
		c.Fields.Tags = append([]string{}, h.Fields.Tags...)
	}
	return &c
}

func (r *newsHistoryRepo) Record(ctx context.Context, newsID uint, fields model.NewsPatch, at time.Time) (*model.NewsHistory, error) {
	if fields.IsEmpty() {
		return nil, fmt.Errorf("%w: 快照至少需要包含一个字段", constant.ErrValidation)
	}
	defer r.store.lock(r.inTx)()

	if _, ok := r.store.news[newsID]; !ok {
		return nil, fmt.Errorf("创建历史快照失败: 新闻 %d 不存在", newsID)
	}
	// 快照时间不早于该新闻已有的最新快照，时钟回拨时沿用最新的时间
	if list := r.store.newestFirst(newsID); len(list) > 0 && at.Before(list[0].CreatedAt) {
		at = list[0].CreatedAt
	}
	h := &model.NewsHistory{
		ID:        r.store.nextHistoryID,
		NewsID:    newsID,
		Fields:    fields,
		CreatedAt: at,
	}
	r.store.nextHistoryID++
	r.store.histories = append(r.store.histories, copyHistory(h))
	return h, nil
}

func (r *newsHistoryRepo) MostRecent(ctx context.Context, newsID uint) (*model.NewsHistory, error) {
	defer r.store.lock(r.inTx)()

	list := r.store.newestFirst(newsID)
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: 新闻 %d 没有历史快照", constant.ErrNotFound, newsID)
	}
	return copyHistory(list[0]), nil
}

func (r *newsHistoryRepo) Delete(ctx context.Context, id uint) error {
	defer r.store.lock(r.inTx)()
	r.store.deleteHistories(func(h *model.NewsHistory) bool { return h.ID == id })
	return nil
}

func (r *newsHistoryRepo) DeleteAll(ctx context.Context, newsID uint) (int, error) {
	defer r.store.lock(r.inTx)()
	return r.store.deleteHistories(func(h *model.NewsHistory) bool { return h.NewsID == newsID }), nil
}

func (r *newsHistoryRepo) ListByNews(ctx context.Context, newsID uint) ([]*model.NewsHistory, error) {
	defer r.store.lock(r.inTx)()

	list := r.store.newestFirst(newsID)
	out := make([]*model.NewsHistory, len(list))
	for i, h := range list {
		out[i] = copyHistory(h)
	}
	return out, nil
}

func (r *newsHistoryRepo) CountByNews(ctx context.Context, newsID uint) (int, error) {
	defer r.store.lock(r.inTx)()
	return len(r.store.newestFirst(newsID)), nil
}

func (r *newsHistoryRepo) DeleteOldVersions(ctx context.Context, newsID uint, keepCount int) (int, error) {
	defer r.store.lock(r.inTx)()

	if keepCount < 0 {
		keepCount = 0
	}
	list := r.store.newestFirst(newsID)
	if len(list) <= keepCount {
		return 0, nil
	}
	stale := make(map[uint]struct{}, len(list)-keepCount)
	for _, h := range list[keepCount:] {
		stale[h.ID] = struct{}{}
	}
	return r.store.deleteHistories(func(h *model.NewsHistory) bool {
		_, ok := stale[h.ID]
		return ok
	}), nil
}

func (r *newsHistoryRepo) NewsIDsWithHistory(ctx context.Context) ([]uint, error) {
	defer r.store.lock(r.inTx)()

	seen := make(map[uint]struct{})
	ids := make([]uint, 0)
	for _, h := range r.store.histories {
		if _, ok := seen[h.NewsID]; ok {
			continue
		}
		seen[h.NewsID] = struct{}{}
		ids = append(ids, h.NewsID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
