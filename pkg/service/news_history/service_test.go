package news_history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/memory"
	"github.com/anzhiyu-c/anheyu-news/internal/testutil"
	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
)

func seed(t *testing.T, repos repository.Repositories, versions int) uint {
	t.Helper()
	ctx := context.Background()
	clock := testutil.TickingClock(time.Second)

	id, err := repos.News.Create(ctx, testutil.NewsRequest("A"), clock.Now())
	require.NoError(t, err)
	for i := 0; i < versions; i++ {
		title := fmt.Sprintf("v%d", i)
		_, err := repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: &title}, clock.Now())
		require.NoError(t, err)
	}
	return id
}

func TestListHistory(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	svc := NewService(repos.NewsHistory, repos.News, 0)

	id := seed(t, repos, 3)
	resp, err := svc.ListHistory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.List, 3)
	assert.Equal(t, "v2", *resp.List[0].Fields.Title)
	assert.Equal(t, "v0", *resp.List[2].Fields.Title)

	empty := seed(t, repos, 0)
	resp, err = svc.ListHistory(ctx, empty)
	require.NoError(t, err)
	assert.Zero(t, resp.Total)
	assert.NotNil(t, resp.List)

	_, err = svc.ListHistory(ctx, 999)
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestGetHistoryCount(t *testing.T) {
	repos := memory.NewStore().Repositories()
	svc := NewService(repos.NewsHistory, repos.News, 0)

	id := seed(t, repos, 2)
	n, err := svc.GetHistoryCount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCleanupAllOldVersions(t *testing.T) {
	ctx := context.Background()

	t.Run("不限制时不清理", func(t *testing.T) {
		repos := memory.NewStore().Repositories()
		svc := NewService(repos.NewsHistory, repos.News, -1)
		assert.Zero(t, svc.MaxVersions())

		id := seed(t, repos, 5)
		cleaned, err := svc.CleanupAllOldVersions(ctx)
		require.NoError(t, err)
		assert.Zero(t, cleaned)

		n, err := repos.NewsHistory.CountByNews(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("只保留最近的快照", func(t *testing.T) {
		repos := memory.NewStore().Repositories()
		svc := NewService(repos.NewsHistory, repos.News, 2)

		big := seed(t, repos, 4)
		small := seed(t, repos, 1)

		cleaned, err := svc.CleanupAllOldVersions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, cleaned)

		list, err := repos.NewsHistory.ListByNews(ctx, big)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "v3", *list[0].Fields.Title)
		assert.Equal(t, "v2", *list[1].Fields.Title)

		n, err := repos.NewsHistory.CountByNews(ctx, small)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("上下文取消时停止", func(t *testing.T) {
		repos := memory.NewStore().Repositories()
		svc := NewService(repos.NewsHistory, repos.News, 1)
		seed(t, repos, 3)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.CleanupAllOldVersions(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
