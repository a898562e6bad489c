/*
 * @Description: 测试用数据库
 * @Author: 安知鱼
 * @Date: 2026-02-05 11:31:52
 */
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/database"
)

// NewSQLiteDriver 在临时目录中创建已完成迁移的 SQLite 驱动，测试结束时关闭
func NewSQLiteDriver(t *testing.T) dialect.Driver {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "news_test.db"))
	require.NoError(t, err)

	drv, err := database.OpenDriver(context.Background(), db, "sqlite", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = drv.Close() })
	return drv
}
