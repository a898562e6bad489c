package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-news/internal/testutil"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
)

func newBackend(t *testing.T) testutil.Backend {
	store := NewStore()
	return testutil.Backend{Repos: store.Repositories(), TxManager: store.TransactionManager()}
}

func TestMemoryRepositories(t *testing.T) {
	testutil.RunRepositoryContract(t, newBackend)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repositories()

	id, err := repos.News.Create(ctx, testutil.NewsRequest("A", "x"), time.Now())
	require.NoError(t, err)

	n, err := repos.News.GetByID(ctx, id)
	require.NoError(t, err)
	n.Title = "changed"
	n.Tags[0] = "changed"

	again, err := repos.News.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Title)
	assert.Equal(t, []string{"x"}, again.Tags)
}

func TestMemoryTransactionRestoresOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repositories()

	id, err := repos.News.Create(ctx, testutil.NewsRequest("A"), time.Now())
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = store.TransactionManager().Do(ctx, func(tx repository.Repositories) error {
			title := "B"
			if _, err := tx.News.UpdateFields(ctx, id, model.NewsPatch{Title: &title}, time.Now()); err != nil {
				return err
			}
			panic("boom")
		})
	})

	n, err := repos.News.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", n.Title)
}

func TestMemoryRecordRequiresNews(t *testing.T) {
	title := "A"
	_, err := NewStore().Repositories().NewsHistory.Record(context.Background(), 7, model.NewsPatch{Title: &title}, time.Now())
	assert.Error(t, err)
}
