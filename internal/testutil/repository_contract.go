/*
 * @Description: 仓储实现共用的行为测试
 * @Author: 安知鱼
 * @Date: 2026-02-05 14:10:36
 */
package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
)

// Backend 是一套仓储实现及其事务管理器
type Backend struct {
	Repos     repository.Repositories
	TxManager repository.TransactionManager
}

// BackendFactory 为每个子测试创建一套全新的仓储
type BackendFactory func(t *testing.T) Backend

// NewsRequest 构造创建新闻的请求
func NewsRequest(title string, tags ...string) *model.CreateNewsRequest {
	text, img := "text of "+title, title+".png"
	if tags == nil {
		tags = []string{"news"}
	}
	return &model.CreateNewsRequest{Title: &title, Text: &text, Img: &img, Tags: tags}
}

func strPtr(s string) *string { return &s }

// RunRepositoryContract 验证 NewsRepository、NewsHistoryRepository 与 TransactionManager 的共同行为
func RunRepositoryContract(t *testing.T, newBackend BackendFactory) {
	ctx := context.Background()
	at := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	t.Run("创建后可按ID读取", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A", "x", "y"), at)
		require.NoError(t, err)

		n, err := b.Repos.News.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, n.ID)
		assert.Equal(t, "A", n.Title)
		assert.Equal(t, "text of A", n.Text)
		assert.Equal(t, "A.png", n.Img)
		assert.Equal(t, []string{"x", "y"}, n.Tags)
		assert.True(t, at.Equal(n.CreatedAt))
		assert.True(t, at.Equal(n.UpdatedAt))
	})

	t.Run("ID单调递增且列表按ID升序", func(t *testing.T) {
		b := newBackend(t)
		first, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)
		second, err := b.Repos.News.Create(ctx, NewsRequest("B"), at)
		require.NoError(t, err)
		assert.Greater(t, second, first)

		list, err := b.Repos.News.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first, list[0].ID)
		assert.Equal(t, second, list[1].ID)

		count, err := b.Repos.News.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("不存在的新闻", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.Repos.News.GetByID(ctx, 42)
		assert.ErrorIs(t, err, constant.ErrNotFound)

		affected, err := b.Repos.News.UpdateFields(ctx, 42, model.NewsPatch{Title: strPtr("X")}, at)
		require.NoError(t, err)
		assert.Zero(t, affected)

		affected, err = b.Repos.News.Delete(ctx, 42)
		require.NoError(t, err)
		assert.Zero(t, affected)
	})

	t.Run("创建参数不合法", func(t *testing.T) {
		b := newBackend(t)
		req := NewsRequest("A")
		req.Tags = []string{}
		_, err := b.Repos.News.Create(ctx, req, at)
		assert.ErrorIs(t, err, constant.ErrValidation)
	})

	t.Run("只更新出现的字段", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A", "x"), at)
		require.NoError(t, err)

		later := at.Add(time.Minute)
		affected, err := b.Repos.News.UpdateFields(ctx, id, model.NewsPatch{Title: strPtr("B"), Tags: []string{"y", "z"}}, later)
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)

		n, err := b.Repos.News.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "B", n.Title)
		assert.Equal(t, []string{"y", "z"}, n.Tags)
		assert.Equal(t, "text of A", n.Text)
		assert.True(t, at.Equal(n.CreatedAt))
		assert.True(t, later.Equal(n.UpdatedAt))

		_, err = b.Repos.News.UpdateFields(ctx, id, model.NewsPatch{}, later)
		assert.ErrorIs(t, err, constant.ErrValidation)
	})

	t.Run("写入相同的值仍视为命中", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)

		affected, err := b.Repos.News.UpdateFields(ctx, id, model.NewsPatch{Title: strPtr("A")}, at)
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)
	})

	t.Run("快照按写入顺序倒序排列", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)

		h1, err := b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("1")}, at)
		require.NoError(t, err)
		h2, err := b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("2")}, at)
		require.NoError(t, err)
		h3, err := b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Text: strPtr("3")}, at.Add(time.Second))
		require.NoError(t, err)

		recent, err := b.Repos.NewsHistory.MostRecent(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, h3.ID, recent.ID)
		assert.Equal(t, []model.NewsField{model.NewsFieldText}, recent.Fields.Fields())

		list, err := b.Repos.NewsHistory.ListByNews(ctx, id)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []uint{h3.ID, h2.ID, h1.ID}, []uint{list[0].ID, list[1].ID, list[2].ID})

		count, err := b.Repos.NewsHistory.CountByNews(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("时钟回拨时最新写入的快照仍是最近的", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)
		other, err := b.Repos.News.Create(ctx, NewsRequest("B"), at)
		require.NoError(t, err)

		h1, err := b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("1")}, at)
		require.NoError(t, err)
		h2, err := b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("2")}, at.Add(-time.Hour))
		require.NoError(t, err)
		assert.True(t, h2.CreatedAt.Equal(h1.CreatedAt), "快照时间不能早于已有的最新快照")

		// 其他新闻的快照不受影响
		h3, err := b.Repos.NewsHistory.Record(ctx, other, model.NewsPatch{Title: strPtr("3")}, at.Add(-time.Hour))
		require.NoError(t, err)
		assert.True(t, h3.CreatedAt.Equal(at.Add(-time.Hour)))

		recent, err := b.Repos.NewsHistory.MostRecent(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, h2.ID, recent.ID)
		assert.Equal(t, "2", *recent.Fields.Title)
		assert.True(t, recent.CreatedAt.Equal(h1.CreatedAt))

		list, err := b.Repos.NewsHistory.ListByNews(ctx, id)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, []uint{h2.ID, h1.ID}, []uint{list[0].ID, list[1].ID})
	})

	t.Run("没有快照", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)

		_, err = b.Repos.NewsHistory.MostRecent(ctx, id)
		assert.ErrorIs(t, err, constant.ErrNotFound)

		list, err := b.Repos.NewsHistory.ListByNews(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("快照保留标签的空数组与顺序", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)

		_, err = b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Tags: []string{"b", "a"}, Img: strPtr("")}, at)
		require.NoError(t, err)

		recent, err := b.Repos.NewsHistory.MostRecent(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, recent.Fields.Tags)
		require.NotNil(t, recent.Fields.Img)
		assert.Equal(t, "", *recent.Fields.Img)
		assert.Nil(t, recent.Fields.Title)
	})

	t.Run("删除单条与全部快照", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)
		other, err := b.Repos.News.Create(ctx, NewsRequest("B"), at)
		require.NoError(t, err)

		h1, err := b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("1")}, at)
		require.NoError(t, err)
		_, err = b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("2")}, at.Add(time.Second))
		require.NoError(t, err)
		_, err = b.Repos.NewsHistory.Record(ctx, other, model.NewsPatch{Title: strPtr("3")}, at)
		require.NoError(t, err)

		ids, err := b.Repos.NewsHistory.NewsIDsWithHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, []uint{id, other}, ids)

		require.NoError(t, b.Repos.NewsHistory.Delete(ctx, h1.ID))
		count, err := b.Repos.NewsHistory.CountByNews(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		deleted, err := b.Repos.NewsHistory.DeleteAll(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		count, err = b.Repos.NewsHistory.CountByNews(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("删除新闻级联删除快照", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)
		_, err = b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("1")}, at)
		require.NoError(t, err)

		affected, err := b.Repos.News.Delete(ctx, id)
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)

		count, err := b.Repos.NewsHistory.CountByNews(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("只保留最近的快照", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)

		var last *model.NewsHistory
		for i := 0; i < 5; i++ {
			last, err = b.Repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("v")}, at.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
		}

		deleted, err := b.Repos.NewsHistory.DeleteOldVersions(ctx, id, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, deleted)

		recent, err := b.Repos.NewsHistory.MostRecent(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, last.ID, recent.ID)

		deleted, err = b.Repos.NewsHistory.DeleteOldVersions(ctx, id, 2)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("事务失败时回滚所有写入", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)

		boom := errors.New("boom")
		err = b.TxManager.Do(ctx, func(repos repository.Repositories) error {
			if _, err := repos.News.UpdateFields(ctx, id, model.NewsPatch{Title: strPtr("B")}, at); err != nil {
				return err
			}
			if _, err := repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("A")}, at); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		n, err := b.Repos.News.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "A", n.Title)

		count, err := b.Repos.NewsHistory.CountByNews(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("事务成功时提交所有写入", func(t *testing.T) {
		b := newBackend(t)
		id, err := b.Repos.News.Create(ctx, NewsRequest("A"), at)
		require.NoError(t, err)

		err = b.TxManager.Do(ctx, func(repos repository.Repositories) error {
			if _, err := repos.News.UpdateFields(ctx, id, model.NewsPatch{Title: strPtr("B")}, at); err != nil {
				return err
			}
			_, err := repos.NewsHistory.Record(ctx, id, model.NewsPatch{Title: strPtr("A")}, at)
			return err
		})
		require.NoError(t, err)

		n, err := b.Repos.News.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "B", n.Title)

		count, err := b.Repos.NewsHistory.CountByNews(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
