package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/anzhiyu-c/anheyu-news/docs"
	"github.com/anzhiyu-c/anheyu-news/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/memory"
	"github.com/anzhiyu-c/anheyu-news/internal/testutil"
	news_handler "github.com/anzhiyu-c/anheyu-news/pkg/handler/news"
	news_history_handler "github.com/anzhiyu-c/anheyu-news/pkg/handler/news_history"
	version_handler "github.com/anzhiyu-c/anheyu-news/pkg/handler/version"
	newsSvc "github.com/anzhiyu-c/anheyu-news/pkg/service/news"
	historySvc "github.com/anzhiyu-c/anheyu-news/pkg/service/news_history"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	ID      uint            `json:"id"`
}

func newEngine(t *testing.T, writeLimit gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	repos := store.Repositories()
	news := newsSvc.NewService(repos, store.TransactionManager(), nil, nil,
		newsSvc.WithClock(testutil.TickingClock(time.Second)))
	history := historySvc.NewService(repos.NewsHistory, repos.News, 0)

	engine := gin.New()
	NewRouter(
		news_handler.NewHandler(news),
		news_history_handler.NewHandler(history),
		version_handler.NewHandler(),
		writeLimit,
	).Setup(engine)
	return engine
}

func do(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

const createBody = `{"title":"A","text":"hello","img":"a.png","tags":["x"]}`

func TestNewsLifecycle(t *testing.T) {
	engine := newEngine(t, nil)

	w, env := do(t, engine, http.MethodPost, "/news", createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusCreated, env.Code)
	assert.Equal(t, "Created", env.Message)
	assert.Equal(t, uint(1), env.ID)
	assert.JSONEq(t, `{"id":1}`, string(env.Data))

	w, _ = do(t, engine, http.MethodPatch, "/news/1", `{"title":"B"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, engine, http.MethodGet, "/news/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var n struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &n))
	assert.Equal(t, "B", n.Title)

	w, env = do(t, engine, http.MethodGet, "/news/1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Total int `json:"total"`
		List  []struct {
			NewsID uint           `json:"news_id"`
			Fields map[string]any `json:"fields"`
		} `json:"list"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Equal(t, 1, history.Total)
	assert.Equal(t, map[string]any{"title": "A"}, history.List[0].Fields)

	w, env = do(t, engine, http.MethodGet, "/news/1/history/count", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	w, env = do(t, engine, http.MethodPatch, "/news/1/rollback", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, news_handler.MessageUpdated, env.Message)

	_, env = do(t, engine, http.MethodGet, "/news/1", "")
	require.NoError(t, json.Unmarshal(env.Data, &n))
	assert.Equal(t, "A", n.Title)

	w, _ = do(t, engine, http.MethodPatch, "/news/1/rollback", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, engine, http.MethodDelete, "/news/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())

	w, _ = do(t, engine, http.MethodGet, "/news/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorStatusCodes(t *testing.T) {
	engine := newEngine(t, nil)
	w, _ := do(t, engine, http.MethodPost, "/news", createBody)
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"未知字段", http.MethodPatch, "/news/1", `{"bogus":"x"}`, http.StatusBadRequest},
		{"空更新", http.MethodPatch, "/news/1", `{}`, http.StatusBadRequest},
		{"非对象请求体", http.MethodPatch, "/news/1", `[1,2]`, http.StatusBadRequest},
		{"更新不存在的新闻", http.MethodPatch, "/news/99", `{"title":"B"}`, http.StatusNotFound},
		{"非法ID", http.MethodGet, "/news/abc", "", http.StatusBadRequest},
		{"零ID", http.MethodDelete, "/news/0", "", http.StatusBadRequest},
		{"缺少字段的创建", http.MethodPost, "/news", `{"title":"A"}`, http.StatusBadRequest},
		{"空标签的创建", http.MethodPost, "/news", `{"title":"A","text":"","img":"","tags":[]}`, http.StatusBadRequest},
		{"删除不存在的新闻", http.MethodDelete, "/news/99", "", http.StatusNotFound},
		{"不存在新闻的历史", http.MethodGet, "/news/99/history", "", http.StatusNotFound},
		{"未知路径", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, engine, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Equal(t, tt.want, env.Code)
			assert.NotEmpty(t, env.Message)
		})
	}

	// 失败的请求不能改变记录
	_, env := do(t, engine, http.MethodGet, "/news/1/history/count", "")
	assert.JSONEq(t, `{"count":0}`, string(env.Data))
}

func TestIndexRedirectsToList(t *testing.T) {
	engine := newEngine(t, nil)
	w, _ := do(t, engine, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/news", w.Header().Get("Location"))

	w, env := do(t, engine, http.MethodGet, "/news", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestGlobalMiddleware(t *testing.T) {
	engine := newEngine(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "http://example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w, _ = do(t, engine, http.MethodGet, "/news", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w, _ = do(t, engine, http.MethodOptions, "/news/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestWriteRoutesAreRateLimited(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1, 1)
	t.Cleanup(limiter.Stop)
	engine := newEngine(t, middleware.RateLimit(limiter))

	w, _ := do(t, engine, http.MethodPost, "/news", createBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, engine, http.MethodPost, "/news", createBody)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, http.StatusTooManyRequests, env.Code)

	// 读接口不受限制
	for i := 0; i < 3; i++ {
		w, _ = do(t, engine, http.MethodGet, "/news", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestDocAndVersion(t *testing.T) {
	engine := newEngine(t, nil)

	w, _ := do(t, engine, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/news/{id}/rollback"`)

	w, env := do(t, engine, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, env.Data)
}
