/*
 * @Description: 进程内存储，用于 Database.Type=memory 以及测试
 * @Author: 安知鱼
 * @Date: 2026-02-04 16:00:12
 */
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
)

// Store 保存新闻与历史快照。所有访问都经过同一把锁，事务期间整把锁被持有，
// 因此事务之间互相串行。
type Store struct {
	mu sync.Mutex

	news          map[uint]*model.News
	histories     []*model.NewsHistory
	nextNewsID    uint
	nextHistoryID uint
}

// NewStore 创建一个空的内存存储
func NewStore() *Store {
	return &Store{
		news:          make(map[uint]*model.News),
		nextNewsID:    1,
		nextHistoryID: 1,
	}
}

// state 是事务开始前的状态副本，用于失败时恢复
type state struct {
	news          map[uint]*model.News
	histories     []*model.NewsHistory
	nextNewsID    uint
	nextHistoryID uint
}

func (s *Store) save() state {
	st := state{
		news:          make(map[uint]*model.News, len(s.news)),
		histories:     make([]*model.NewsHistory, len(s.histories)),
		nextNewsID:    s.nextNewsID,
		nextHistoryID: s.nextHistoryID,
	}
	for id, n := range s.news {
		st.news[id] = n.Clone()
	}
	copy(st.histories, s.histories)
	return st
}

func (s *Store) restore(st state) {
	s.news = st.news
	s.histories = st.histories
	s.nextNewsID = st.nextNewsID
	s.nextHistoryID = st.nextHistoryID
}

// Repositories 返回不在事务中的仓储集合，每次调用各自加锁
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		News:        &newsRepo{store: s},
		NewsHistory: &newsHistoryRepo{store: s},
	}
}

// TransactionManager 返回基于该存储的事务管理器
func (s *Store) TransactionManager() repository.TransactionManager {
	return &transactionManager{store: s}
}

// lock 在非事务模式下加锁，事务模式下锁已由 Do 持有
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type transactionManager struct {
	store *Store
}

// Do 持有存储锁执行 fn；fn 返回错误或 panic 时恢复到执行前的状态
func (tm *transactionManager) Do(ctx context.Context, fn func(repos repository.Repositories) error) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}

	s := tm.store
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.save()
	defer func() {
		if v := recover(); v != nil {
			s.restore(saved)
			panic(v)
		}
	}()

	repos := repository.Repositories{
		News:        &newsRepo{store: s, inTx: true},
		NewsHistory: &newsHistoryRepo{store: s, inTx: true},
	}
	if err := fn(repos); err != nil {
		s.restore(saved)
		return err
	}
	return nil
}
