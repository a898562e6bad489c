/*
 * @Description: 新闻服务，负责新闻的增删改查、字段级更新历史与回滚
 * @Author: 安知鱼
 * @Date: 2026-02-03 14:05:36
 * @LastEditTime: 2026-02-06 10:41:27
 * @LastEditors: 安知鱼
 */
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/anzhiyu-c/anheyu-news/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-news/internal/pkg/utils"
	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-news/pkg/service/utility"
)

// DefaultCacheTTL 新闻记录缓存的默认过期时间
const DefaultCacheTTL = 5 * time.Minute

// Service 定义了新闻服务的接口
type Service interface {
	List(ctx context.Context) ([]*model.News, error)
	// Get 获取单条新闻，优先读取缓存
	Get(ctx context.Context, id uint) (*model.News, error)
	Create(ctx context.Context, req *model.CreateNewsRequest) (uint, error)
	// Update 部分更新新闻，并在同一事务中记录被修改字段的旧值
	Update(ctx context.Context, id uint, body map[string]json.RawMessage) error
	// Rollback 将最近一次快照中的字段恢复到新闻记录上
	Rollback(ctx context.Context, id uint) error
	// Delete 删除新闻及其全部快照
	Delete(ctx context.Context, id uint) error
	// Render 将新闻正文渲染为 HTML 并生成摘要
	Render(ctx context.Context, id uint) (*model.RenderedNews, error)
	// Seed 在没有任何新闻时写入示例数据，返回写入的条数
	Seed(ctx context.Context) (int, error)
}

// Option 配置 Service 的可选项
type Option func(*serviceImpl)

// WithClock 替换时间来源
func WithClock(clock utils.Clock) Option {
	return func(s *serviceImpl) { s.clock = clock }
}

// WithCacheTTL 设置记录缓存的过期时间，ttl <= 0 关闭缓存
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *serviceImpl) { s.cacheTTL = ttl }
}

// WithConsumeOnRollback 控制回滚后是否删除被应用的快照
func WithConsumeOnRollback(consume bool) Option {
	return func(s *serviceImpl) { s.consumeOnRollback = consume }
}

type serviceImpl struct {
	repos     repository.Repositories
	txManager repository.TransactionManager
	cacheSvc  utility.CacheService
	eventBus  *event.EventBus

	clock             utils.Clock
	cacheTTL          time.Duration
	consumeOnRollback bool

	// cacheGen 记录每条新闻缓存失效的次数。读库期间次数变化时不回填缓存，
	// 否则失效之前读到的旧值会在失效之后写回。
	cacheMu  sync.Mutex
	cacheGen map[uint]uint64
}

// NewService 创建 NewsService 实例。cacheSvc 与 eventBus 可以为 nil。
func NewService(
	repos repository.Repositories,
	txManager repository.TransactionManager,
	cacheSvc utility.CacheService,
	eventBus *event.EventBus,
	opts ...Option,
) Service {
	s := &serviceImpl{
		repos:             repos,
		txManager:         txManager,
		cacheSvc:          cacheSvc,
		eventBus:          eventBus,
		clock:             utils.RealClock{},
		cacheTTL:          DefaultCacheTTL,
		consumeOnRollback: true,
		cacheGen:          make(map[uint]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(id uint) string {
	return fmt.Sprintf("news:record:%d", id)
}

func (s *serviceImpl) cacheEnabled() bool {
	return s.cacheSvc != nil && s.cacheTTL > 0
}

// invalidate 删除缓存，失败只记录日志
func (s *serviceImpl) invalidate(ctx context.Context, id uint) {
	if !s.cacheEnabled() {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cacheGen[id]++
	if err := s.cacheSvc.Delete(ctx, cacheKey(id)); err != nil {
		log.Printf("[NewsService] 删除新闻 %d 的缓存失败: %v", id, err)
	}
}

func (s *serviceImpl) generation(id uint) uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cacheGen[id]
}

// fill 回填缓存；gen 是读库之前的失效次数，不一致时放弃回填
func (s *serviceImpl) fill(ctx context.Context, n *model.News, gen uint64) {
	data, err := json.Marshal(n)
	if err != nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.cacheGen[n.ID] != gen {
		return
	}
	if err := s.cacheSvc.Set(ctx, cacheKey(n.ID), data, s.cacheTTL); err != nil {
		log.Printf("[NewsService] 写入新闻 %d 的缓存失败: %v", n.ID, err)
	}
}

func (s *serviceImpl) publish(topic event.Topic, id uint, fields []model.NewsField) {
	if s.eventBus == nil {
		return
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	s.eventBus.Publish(topic, event.NewsPayload{NewsID: id, Fields: names})
}

func (s *serviceImpl) List(ctx context.Context) ([]*model.News, error) {
	list, err := s.repos.News.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取新闻列表失败: %w", err)
	}
	return list, nil
}

func (s *serviceImpl) Get(ctx context.Context, id uint) (*model.News, error) {
	if s.cacheEnabled() {
		if cached, err := s.cacheSvc.Get(ctx, cacheKey(id)); err != nil {
			log.Printf("[NewsService] 读取新闻 %d 的缓存失败: %v", id, err)
		} else if cached != "" {
			var n model.News
			if err := json.Unmarshal([]byte(cached), &n); err == nil {
				return &n, nil
			}
			log.Printf("[NewsService] 新闻 %d 的缓存已损坏，忽略", id)
		}
	}

	gen := s.generation(id)
	n, err := s.repos.News.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		s.fill(ctx, n, gen)
	}
	return n, nil
}

func (s *serviceImpl) Create(ctx context.Context, req *model.CreateNewsRequest) (uint, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	id, err := s.repos.News.Create(ctx, req, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("创建新闻失败: %w", err)
	}

	log.Printf("[NewsService] 创建新闻成功: ID=%d", id)
	s.publish(event.NewsCreated, id, nil)
	return id, nil
}

func (s *serviceImpl) Update(ctx context.Context, id uint, body map[string]json.RawMessage) error {
	var changed []model.NewsField

	err := s.txManager.Do(ctx, func(repos repository.Repositories) error {
		// 1. 读取旧值
		old, err := repos.News.GetByID(ctx, id)
		if err != nil {
			return err
		}

		// 2. 校验字段名与取值，任何写入都发生在校验之后
		patch, err := model.DecodeNewsPatch(body)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			return fmt.Errorf("%w: 至少需要提供一个字段", constant.ErrValidation)
		}
		if err := patch.Validate(); err != nil {
			return err
		}
		changed = patch.Fields()

		// 3. 写入新值
		now := s.clock.Now()
		affected, err := repos.News.UpdateFields(ctx, id, patch, now)
		if err != nil {
			return fmt.Errorf("更新新闻失败: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: 新闻 %d 不存在", constant.ErrNotFound, id)
		}

		// 4. 记录被修改字段的旧值
		if _, err := repos.NewsHistory.Record(ctx, id, old.Snapshot(changed), now); err != nil {
			return fmt.Errorf("记录历史快照失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[NewsService] 更新新闻成功: ID=%d, 字段=%v", id, changed)
	s.invalidate(ctx, id)
	s.publish(event.NewsUpdated, id, changed)
	return nil
}

func (s *serviceImpl) Rollback(ctx context.Context, id uint) error {
	var restored []model.NewsField

	err := s.txManager.Do(ctx, func(repos repository.Repositories) error {
		entry, err := repos.NewsHistory.MostRecent(ctx, id)
		if err != nil {
			return err
		}
		if err := entry.Fields.Validate(); err != nil {
			return fmt.Errorf("历史快照 %d 无法应用: %w", entry.ID, err)
		}
		restored = entry.Fields.Fields()

		affected, err := repos.News.UpdateFields(ctx, id, entry.Fields, s.clock.Now())
		if err != nil {
			return fmt.Errorf("回滚新闻失败: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: 新闻 %d 不存在", constant.ErrNotFound, id)
		}

		// 默认删除已应用的快照，再次回滚时退回到更早的一条
		if s.consumeOnRollback {
			if err := repos.NewsHistory.Delete(ctx, entry.ID); err != nil {
				return fmt.Errorf("删除已应用的历史快照失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[NewsService] 回滚新闻成功: ID=%d, 字段=%v", id, restored)
	s.invalidate(ctx, id)
	s.publish(event.NewsRolledBack, id, restored)
	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id uint) error {
	var removed int

	err := s.txManager.Do(ctx, func(repos repository.Repositories) error {
		n, err := repos.NewsHistory.DeleteAll(ctx, id)
		if err != nil {
			return fmt.Errorf("删除新闻历史快照失败: %w", err)
		}
		removed = n

		affected, err := repos.News.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("删除新闻失败: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: 新闻 %d 不存在", constant.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[NewsService] 删除新闻成功: ID=%d, 同时删除 %d 条历史快照", id, removed)
	s.invalidate(ctx, id)
	s.publish(event.NewsDeleted, id, nil)
	return nil
}
