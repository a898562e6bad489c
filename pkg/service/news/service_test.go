package news

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ent_impl "github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/memory"
	"github.com/anzhiyu-c/anheyu-news/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-news/internal/testutil"
	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-news/pkg/service/utility"
)

var backends = map[string]testutil.BackendFactory{
	"memory": func(t *testing.T) testutil.Backend {
		store := memory.NewStore()
		return testutil.Backend{Repos: store.Repositories(), TxManager: store.TransactionManager()}
	},
	"sqlite": func(t *testing.T) testutil.Backend {
		drv := testutil.NewSQLiteDriver(t)
		return testutil.Backend{Repos: ent_impl.NewRepositories(drv), TxManager: ent_impl.NewEntTransactionManager(drv)}
	},
}

type fixture struct {
	svc   Service
	repos repository.Repositories
	clock *testutil.StubClock
}

func newFixture(t *testing.T, b testutil.Backend, opts ...Option) fixture {
	clock := testutil.TickingClock(time.Second)
	opts = append([]Option{WithClock(clock)}, opts...)
	return fixture{
		svc:   NewService(b.Repos, b.TxManager, nil, nil, opts...),
		repos: b.Repos,
		clock: clock,
	}
}

func body(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func (f fixture) create(t *testing.T, title string, tags ...string) uint {
	t.Helper()
	id, err := f.svc.Create(context.Background(), testutil.NewsRequest(title, tags...))
	require.NoError(t, err)
	return id
}

func (f fixture) history(t *testing.T, id uint) []*model.NewsHistory {
	t.Helper()
	list, err := f.repos.NewsHistory.ListByNews(context.Background(), id)
	require.NoError(t, err)
	return list
}

func TestNewsService(t *testing.T) {
	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			runServiceSuite(t, newBackend)
		})
	}
}

func runServiceSuite(t *testing.T, newBackend testutil.BackendFactory) {
	ctx := context.Background()

	t.Run("创建后可读取相同的值", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A", "x", "y")

		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "A", n.Title)
		assert.Equal(t, "text of A", n.Text)
		assert.Equal(t, "A.png", n.Img)
		assert.Equal(t, []string{"x", "y"}, n.Tags)
	})

	t.Run("创建参数校验", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		for _, title := range []string{"", " \t\n"} {
			_, err := f.svc.Create(ctx, testutil.NewsRequest(title))
			assert.ErrorIs(t, err, constant.ErrValidation, title)
		}

		list, err := f.svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("更新记录被修改字段的旧值", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A", "x")

		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"B","tags":["y"]}`)))

		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "B", n.Title)
		assert.Equal(t, []string{"y"}, n.Tags)
		assert.Equal(t, "text of A", n.Text)

		entries := f.history(t, id)
		require.Len(t, entries, 1)
		assert.ElementsMatch(t, []model.NewsField{model.NewsFieldTitle, model.NewsFieldTags}, entries[0].Fields.Fields())
		assert.Equal(t, "A", *entries[0].Fields.Title)
		assert.Equal(t, []string{"x"}, entries[0].Fields.Tags)
	})

	t.Run("相同的更新执行两次产生两条快照", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A")

		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"B"}`)))
		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"B"}`)))

		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "B", n.Title)

		entries := f.history(t, id)
		require.Len(t, entries, 2)
		assert.NotEqual(t, entries[0].ID, entries[1].ID)
		assert.Equal(t, "B", *entries[0].Fields.Title)
		assert.Equal(t, "A", *entries[1].Fields.Title)
	})

	t.Run("未知字段不修改任何数据", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A")

		err := f.svc.Update(ctx, id, body(t, `{"title":"B","bogus":"x"}`))
		assert.ErrorIs(t, err, constant.ErrInvalidField)

		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "A", n.Title)
		assert.Empty(t, f.history(t, id))
	})

	t.Run("更新参数校验", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A")

		for _, b := range []string{`{}`, `{"title":""}`, `{"title":"  "}`, `{"tags":[]}`, `{"title":7}`} {
			err := f.svc.Update(ctx, id, body(t, b))
			assert.ErrorIs(t, err, constant.ErrValidation, b)
		}
		assert.Empty(t, f.history(t, id))
	})

	t.Run("更新不存在的新闻", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		err := f.svc.Update(ctx, 404, body(t, `{"title":"B"}`))
		assert.ErrorIs(t, err, constant.ErrNotFound)
	})

	t.Run("回滚恢复被修改的字段", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A", "x")

		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"B"}`)))
		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"tags":["z"]}`)))

		require.NoError(t, f.svc.Rollback(ctx, id))
		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "B", n.Title, "未被快照覆盖的字段保持不变")
		assert.Equal(t, []string{"x"}, n.Tags)
	})

	t.Run("没有快照时回滚返回 NotFound", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A")

		err := f.svc.Rollback(ctx, id)
		assert.ErrorIs(t, err, constant.ErrNotFound)

		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "A", n.Title)
	})

	t.Run("更新两次再回滚两次", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A")

		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"B"}`)))
		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"C"}`)))

		require.NoError(t, f.svc.Rollback(ctx, id))
		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "B", n.Title)

		require.NoError(t, f.svc.Rollback(ctx, id))
		n, err = f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "A", n.Title)

		assert.ErrorIs(t, f.svc.Rollback(ctx, id), constant.ErrNotFound)
		assert.Empty(t, f.history(t, id), "回滚不产生新的快照")
	})

	t.Run("时钟回拨后回滚撤销的是最后一次更新", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A")

		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"B"}`)))
		f.clock.Advance(-time.Minute)
		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"C"}`)))

		require.NoError(t, f.svc.Rollback(ctx, id))
		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "B", n.Title)

		require.NoError(t, f.svc.Rollback(ctx, id))
		n, err = f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "A", n.Title)
	})

	t.Run("保留快照时重复回滚同一条", func(t *testing.T) {
		f := newFixture(t, newBackend(t), WithConsumeOnRollback(false))
		id := f.create(t, "A")

		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"B"}`)))
		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"C"}`)))

		require.NoError(t, f.svc.Rollback(ctx, id))
		require.NoError(t, f.svc.Rollback(ctx, id))
		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "B", n.Title)
		assert.Len(t, f.history(t, id), 2)
	})

	t.Run("删除新闻同时删除快照", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A")
		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"title":"B"}`)))

		require.NoError(t, f.svc.Delete(ctx, id))

		_, err := f.svc.Get(ctx, id)
		assert.ErrorIs(t, err, constant.ErrNotFound)
		assert.ErrorIs(t, f.svc.Rollback(ctx, id), constant.ErrNotFound)
		assert.Empty(t, f.history(t, id))

		assert.ErrorIs(t, f.svc.Delete(ctx, id), constant.ErrNotFound)
	})

	t.Run("快照写入失败时回滚记录更新", func(t *testing.T) {
		b := newBackend(t)
		b.TxManager = failingHistoryTx{inner: b.TxManager}
		f := newFixture(t, b)
		id := f.create(t, "A")

		err := f.svc.Update(ctx, id, body(t, `{"title":"B"}`))
		assert.ErrorIs(t, err, errHistoryWrite)

		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "A", n.Title)
		assert.Empty(t, f.history(t, id))
	})

	t.Run("快照时间来自注入的时钟", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A")

		f.clock.Advance(time.Hour)
		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"text":"new"}`)))

		entries := f.history(t, id)
		require.Len(t, entries, 1)
		n, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, entries[0].CreatedAt.Equal(n.UpdatedAt))
		assert.True(t, entries[0].CreatedAt.After(n.CreatedAt))
	})

	t.Run("渲染正文", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		id := f.create(t, "A")
		require.NoError(t, f.svc.Update(ctx, id, body(t, `{"text":"# Hi\n\n**bold** <script>alert(1)</script>"}`)))

		r, err := f.svc.Render(ctx, id)
		require.NoError(t, err)
		assert.Contains(t, r.HTML, "<strong>bold</strong>")
		assert.NotContains(t, r.HTML, "<script>")
		assert.Equal(t, "A", r.Title)
		assert.NotContains(t, r.Summary, "<")

		_, err = f.svc.Render(ctx, 999)
		assert.ErrorIs(t, err, constant.ErrNotFound)
	})

	t.Run("只在空库中写入示例数据", func(t *testing.T) {
		f := newFixture(t, newBackend(t))
		n, err := f.svc.Seed(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = f.svc.Seed(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		list, err := f.svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Lorem Ipsum1", list[0].Title)
		assert.Equal(t, []string{SeedTag}, list[0].Tags)
	})
}

var errHistoryWrite = errors.New("history write failed")

type failingHistoryRepo struct {
	repository.NewsHistoryRepository
}

func (failingHistoryRepo) Record(context.Context, uint, model.NewsPatch, time.Time) (*model.NewsHistory, error) {
	return nil, errHistoryWrite
}

// failingHistoryTx 在事务中替换历史仓储，使快照写入失败
type failingHistoryTx struct {
	inner repository.TransactionManager
}

func (f failingHistoryTx) Do(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return f.inner.Do(ctx, func(repos repository.Repositories) error {
		repos.NewsHistory = failingHistoryRepo{repos.NewsHistory}
		return fn(repos)
	})
}

func TestGetUsesCacheAndUpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cache := utility.NewMemoryCacheService()
	t.Cleanup(func() { _ = cache.Close() })

	svc := NewService(store.Repositories(), store.TransactionManager(), cache, nil, WithClock(testutil.FixedClock()))
	id, err := svc.Create(ctx, testutil.NewsRequest("A"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, id)
	require.NoError(t, err)
	cached, err := cache.Get(ctx, cacheKey(id))
	require.NoError(t, err)
	assert.Contains(t, cached, `"title":"A"`)

	require.NoError(t, svc.Update(ctx, id, body(t, `{"title":"B"}`)))
	cached, err = cache.Get(ctx, cacheKey(id))
	require.NoError(t, err)
	assert.Empty(t, cached)

	n, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "B", n.Title)
}

// pausingNewsRepo 在第一次 GetByID 读到数据之后暂停，直到 release 被关闭
type pausingNewsRepo struct {
	repository.NewsRepository
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func (r *pausingNewsRepo) GetByID(ctx context.Context, id uint) (*model.News, error) {
	n, err := r.NewsRepository.GetByID(ctx, id)
	r.once.Do(func() {
		close(r.reached)
		<-r.release
	})
	return n, err
}

func TestGetDoesNotCacheRecordReadBeforeUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cache := utility.NewMemoryCacheService()
	t.Cleanup(func() { _ = cache.Close() })

	repos := store.Repositories()
	id, err := repos.News.Create(ctx, testutil.NewsRequest("A"), testutil.FixedClock().Now())
	require.NoError(t, err)

	paused := &pausingNewsRepo{
		NewsRepository: repos.News,
		reached:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	repos.News = paused
	svc := NewService(repos, store.TransactionManager(), cache, nil, WithClock(testutil.TickingClock(time.Second)))

	type result struct {
		n   *model.News
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := svc.Get(ctx, id)
		done <- result{n, err}
	}()

	<-paused.reached
	require.NoError(t, svc.Update(ctx, id, body(t, `{"title":"B"}`)))
	close(paused.release)

	stale := <-done
	require.NoError(t, stale.err)
	assert.Equal(t, "A", stale.n.Title, "读库发生在更新之前")

	cached, err := cache.Get(ctx, cacheKey(id))
	require.NoError(t, err)
	assert.Empty(t, cached)

	n, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "B", n.Title)
}

func TestEventsArePublished(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	bus := event.NewEventBus()

	received := make(chan event.NewsPayload, 8)
	for _, topic := range []event.Topic{event.NewsCreated, event.NewsUpdated, event.NewsRolledBack, event.NewsDeleted} {
		bus.Subscribe(topic, func(payload interface{}) {
			received <- payload.(event.NewsPayload)
		})
	}

	svc := NewService(store.Repositories(), store.TransactionManager(), nil, bus, WithClock(testutil.TickingClock(time.Second)))
	id, err := svc.Create(ctx, testutil.NewsRequest("A"))
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, id, body(t, `{"img":"b.png"}`)))
	require.NoError(t, svc.Rollback(ctx, id))
	require.NoError(t, svc.Delete(ctx, id))
	bus.Shutdown()

	close(received)
	var payloads []event.NewsPayload
	for p := range received {
		payloads = append(payloads, p)
	}
	require.Len(t, payloads, 4)
	var withFields int
	for _, p := range payloads {
		assert.Equal(t, id, p.NewsID)
		if len(p.Fields) > 0 {
			assert.Equal(t, []string{"img"}, p.Fields)
			withFields++
		}
	}
	assert.Equal(t, 2, withFields)
}
