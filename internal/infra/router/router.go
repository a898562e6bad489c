/*
 * @Description: 路由注册
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2026-02-06 14:30:12
 * @LastEditors: 安知鱼
 */
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	"github.com/anzhiyu-c/anheyu-news/internal/app/middleware"
	news_handler "github.com/anzhiyu-c/anheyu-news/pkg/handler/news"
	news_history_handler "github.com/anzhiyu-c/anheyu-news/pkg/handler/news_history"
	version_handler "github.com/anzhiyu-c/anheyu-news/pkg/handler/version"
	"github.com/anzhiyu-c/anheyu-news/pkg/response"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Next()
	}
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	newsHandler        *news_handler.Handler
	newsHistoryHandler *news_history_handler.Handler
	versionHandler     *version_handler.Handler
	// writeLimit 限制写接口的请求频率，为 nil 时不限制
	writeLimit gin.HandlerFunc
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	newsHandler *news_handler.Handler,
	newsHistoryHandler *news_history_handler.Handler,
	versionHandler *version_handler.Handler,
	writeLimit gin.HandlerFunc,
) *Router {
	return &Router{
		newsHandler:        newsHandler,
		newsHistoryHandler: newsHistoryHandler,
		versionHandler:     versionHandler,
		writeLimit:         writeLimit,
	}
}

// Setup 将所有路由注册到 gin 引擎上
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.RequestID(), middleware.Cors(), NoCacheMiddleware())

	engine.GET("/", r.newsHandler.Index)

	r.registerNewsRoutes(engine)
	r.registerVersionRoutes(engine)
	r.registerDocRoutes(engine)

	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "接口不存在")
	})
}

func (r *Router) write() []gin.HandlerFunc {
	if r.writeLimit == nil {
		return nil
	}
	return []gin.HandlerFunc{r.writeLimit}
}

func (r *Router) registerNewsRoutes(engine *gin.Engine) {
	news := engine.Group("/news")
	{
		news.GET("", r.newsHandler.List)
		news.GET("/:id", r.newsHandler.Get)
		news.GET("/:id/render", r.newsHandler.Render)
		news.GET("/:id/history", r.newsHistoryHandler.ListHistory)
		news.GET("/:id/history/count", r.newsHistoryHandler.GetHistoryCount)
	}

	writes := engine.Group("/news", r.write()...)
	{
		writes.POST("", r.newsHandler.Create)
		writes.PATCH("/:id", r.newsHandler.Update)
		writes.PATCH("/:id/rollback", r.newsHandler.Rollback)
		writes.DELETE("/:id", r.newsHandler.Delete)
	}
}

func (r *Router) registerVersionRoutes(engine *gin.Engine) {
	engine.GET("/version", r.versionHandler.GetVersion)
}

// registerDocRoutes 提供 swag 注册的 OpenAPI 文档
func (r *Router) registerDocRoutes(engine *gin.Engine) {
	engine.GET("/swagger/doc.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			response.Fail(c, http.StatusNotFound, "接口文档不可用")
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})
}
