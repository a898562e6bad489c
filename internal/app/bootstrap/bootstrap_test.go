package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/memory"
	"github.com/anzhiyu-c/anheyu-news/internal/testutil"
	news_service "github.com/anzhiyu-c/anheyu-news/pkg/service/news"
)

func TestInitializeData(t *testing.T) {
	ctx := context.Background()

	t.Run("关闭示例数据时不写入", func(t *testing.T) {
		store := memory.NewStore()
		svc := news_service.NewService(store.Repositories(), store.TransactionManager(), nil, nil)
		n, err := NewBootstrapper(store.Repositories().News, svc, false).InitializeData(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		count, err := store.Repositories().News.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("空库写入示例数据", func(t *testing.T) {
		store := memory.NewStore()
		svc := news_service.NewService(store.Repositories(), store.TransactionManager(), nil, nil)
		n, err := NewBootstrapper(store.Repositories().News, svc, true).InitializeData(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("已有数据时不写入", func(t *testing.T) {
		store := memory.NewStore()
		svc := news_service.NewService(store.Repositories(), store.TransactionManager(), nil, nil)
		_, err := svc.Create(ctx, testutil.NewsRequest("A"))
		require.NoError(t, err)

		n, err := NewBootstrapper(store.Repositories().News, svc, true).InitializeData(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
