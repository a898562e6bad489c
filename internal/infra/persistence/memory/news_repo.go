/*
 * @Description: 新闻仓储的内存实现
 * @Author: 安知鱼
 * @Date: 2026-02-04 16:21:40
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

type newsRepo struct {
	store *Store
	inTx  bool
}

func (r *newsRepo) GetByID(ctx context.Context, id uint) (*model.News, error) {
	defer r.store.lock(r.inTx)()

	n, ok := r.store.news[id]
	if !ok {
		return nil, fmt.Errorf("%w: 新闻 %d 不存在", constant.ErrNotFound, id)
	}
	return n.Clone(), nil
}

func (r *newsRepo) List(ctx context.Context) ([]*model.News, error) {
	defer r.store.lock(r.inTx)()

	list := make([]*model.News, 0, len(r.store.news))
	for _, n := range r.store.news {
		list = append(list, n.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *newsRepo) Create(ctx context.Context, req *model.CreateNewsRequest, at time.Time) (uint, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	defer r.store.lock(r.inTx)()

	id := r.store.nextNewsID
	r.store.nextNewsID++
	r.store.news[id] = &model.News{
		ID:        id,
		Title:     *req.Title,
		Text:      *req.Text,
		Img:       *req.Img,
		Tags:      append([]string(nil), req.Tags...),
		CreatedAt: at,
		UpdatedAt: at,
	}
	return id, nil
}

func (r *newsRepo) UpdateFields(ctx context.Context, id uint, patch model.NewsPatch, at time.Time) (int64, error) {
	if patch.IsEmpty() {
		return 0, fmt.Errorf("%w: 没有需要更新的字段", constant.ErrValidation)
	}
	defer r.store.lock(r.inTx)()

	n, ok := r.store.news[id]
	if !ok {
		return 0, nil
	}
	updated := n.Clone()
	updated.Apply(patch)
	updated.UpdatedAt = at
	r.store.news[id] = updated
	return 1, nil
}

func (r *newsRepo) Delete(ctx context.Context, id uint) (int64, error) {
	defer r.store.lock(r.inTx)()

	if _, ok := r.store.news[id]; !ok {
		return 0, nil
	}
	delete(r.store.news, id)
	// 与数据库的 ON DELETE CASCADE 保持一致
	r.store.deleteHistories(func(h *model.NewsHistory) bool { return h.NewsID == id })
	return 1, nil
}

func (r *newsRepo) Count(ctx context.Context) (int, error) {
	defer r.store.lock(r.inTx)()
	return len(r.store.news), nil
}
