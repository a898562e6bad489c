package ent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-news/internal/testutil"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
)

func newBackend(t *testing.T) testutil.Backend {
	drv := testutil.NewSQLiteDriver(t)
	return testutil.Backend{Repos: NewRepositories(drv), TxManager: NewEntTransactionManager(drv)}
}

func TestSQLiteRepositories(t *testing.T) {
	testutil.RunRepositoryContract(t, newBackend)
}

func TestSQLiteRecordRequiresNews(t *testing.T) {
	b := newBackend(t)
	title := "A"
	_, err := b.Repos.NewsHistory.Record(context.Background(), 99, model.NewsPatch{Title: &title}, time.Now())
	assert.Error(t, err, "外键约束应拒绝不存在的新闻")
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	drv := testutil.NewSQLiteDriver(t)
	require.NoError(t, database.Migrate(context.Background(), drv))
}

func TestTimeValueScan(t *testing.T) {
	want := time.Date(2026, 1, 15, 10, 30, 0, 123456000, time.UTC)
	tests := []struct {
		name string
		src  any
	}{
		{name: "time.Time", src: want},
		{name: "SQLite 定宽文本", src: "2026-01-15 10:30:00.123456"},
		{name: "RFC3339 字节", src: []byte("2026-01-15T10:30:00.123456Z")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v timeValue
			require.NoError(t, v.Scan(tt.src))
			assert.True(t, want.Equal(v.t), "got %s", v.t)
		})
	}

	var v timeValue
	assert.Error(t, v.Scan(42))
}
