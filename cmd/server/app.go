/*
 * @Description: 应用装配
 * @Author: 安知鱼
 * @Date: 2025-10-17 10:35:28
 * @LastEditTime: 2026-02-06 16:20:45
 * @LastEditors: 安知鱼
 */
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	_ "github.com/anzhiyu-c/anheyu-news/docs"
	"github.com/anzhiyu-c/anheyu-news/internal/app/bootstrap"
	"github.com/anzhiyu-c/anheyu-news/internal/app/listener"
	"github.com/anzhiyu-c/anheyu-news/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-news/internal/app/task"
	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/database"
	ent_impl "github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/memory"
	"github.com/anzhiyu-c/anheyu-news/internal/infra/router"
	"github.com/anzhiyu-c/anheyu-news/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-news/internal/pkg/version"
	"github.com/anzhiyu-c/anheyu-news/pkg/config"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
	news_handler "github.com/anzhiyu-c/anheyu-news/pkg/handler/news"
	news_history_handler "github.com/anzhiyu-c/anheyu-news/pkg/handler/news_history"
	version_handler "github.com/anzhiyu-c/anheyu-news/pkg/handler/version"
	news_service "github.com/anzhiyu-c/anheyu-news/pkg/service/news"
	news_history_service "github.com/anzhiyu-c/anheyu-news/pkg/service/news_history"
	"github.com/anzhiyu-c/anheyu-news/pkg/service/utility"
)

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg            *config.Config
	engine         *gin.Engine
	scheduler      *task.Scheduler
	eventBus       *event.EventBus
	cacheSvc       utility.CacheService
	writeLimiter   *middleware.IPRateLimiter
	newsSvc        news_service.Service
	newsHistorySvc news_history_service.Service
	auditListener  *listener.NewsAuditListener
	appVersion     string
}

func (a *App) PrintBanner() {
	banner := `

       █████╗ ███╗   ██╗███████╗██╗  ██╗███████╗██╗   ██╗██╗   ██╗
      ██╔══██╗████╗  ██║██╔════╝██║  ██║██╔════╝╚██╗ ██╔╝██║   ██║
      ███████║██╔██╗ ██║█████╗  ███████║█████╗   ╚████╔╝ ██║   ██║
      ██╔══██║██║╚██╗██║██╔══╝  ██╔══██║██╔══╝    ╚██╔╝  ██║   ██║
      ██║  ██║██║ ╚████║███████╗██║  ██║███████╗   ██║   ╚██████╔╝
      ╚═╝  ╚═╝╚═╝  ╚═══╝╚══════╝╚═╝  ╚═╝╚══════╝   ╚═╝    ╚═════╝
                              N E W S
`
	log.Println(banner)
	log.Println("--------------------------------------------------------")
	log.Printf(" Anheyu News: %s", version.GetVersionString())
	log.Println("--------------------------------------------------------")
}

// NewApp 加载外部配置并构建整个应用
func NewApp() (*App, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	return NewAppWithConfig(cfg)
}

// storage 保存数据层的装配结果
type storage struct {
	repos     repository.Repositories
	txManager repository.TransactionManager
	close     func()
}

// newStorage 根据 Database.Type 选择内存存储或关系数据库
func newStorage(cfg *config.Config) (*storage, error) {
	dbType := database.NormalizeType(cfg.GetString(config.KeyDBType))
	if dbType == database.TypeMemory {
		log.Println("【提示】Database.Type=memory，数据只保存在进程内存中，重启后丢失")
		store := memory.NewStore()
		return &storage{
			repos:     store.Repositories(),
			txManager: store.TransactionManager(),
			close:     func() {},
		}, nil
	}

	sqlDB, err := database.NewSQLDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}
	drv, err := database.NewEntDriver(sqlDB, cfg)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &storage{
		repos:     ent_impl.NewRepositories(drv),
		txManager: ent_impl.NewEntTransactionManager(drv),
		close:     closeSQL(sqlDB),
	}, nil
}

func closeSQL(db *sql.DB) func() {
	return func() {
		log.Println("执行清理操作：关闭数据库连接...")
		db.Close()
	}
}

// NewAppWithConfig 执行所有的初始化和依赖注入工作
func NewAppWithConfig(cfg *config.Config) (*App, func(), error) {
	appVersion := version.GetVersion()
	ctx := context.Background()

	// --- Phase 1: 初始化基础设施 ---
	store, err := newStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	// 尝试连接 Redis（如果失败，将自动降级到内存缓存）
	var redisClient *redis.Client
	if cfg.GetInt(config.KeyCacheTTL) > 0 {
		redisClient = database.NewRedisClient(ctx, cfg)
	}
	cacheSvc := utility.NewCacheServiceWithFallback(ctx, redisClient)
	log.Printf("缓存类型: %s", utility.KindOf(cacheSvc))
	eventBus := event.NewEventBus()

	cleanup := func() {
		cacheSvc.Close()
		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
		store.close()
	}

	// --- Phase 2: 初始化业务逻辑层 ---
	maxVersions := cfg.GetInt(config.KeyHistoryMaxVersions)
	newsSvc := news_service.NewService(
		store.repos,
		store.txManager,
		cacheSvc,
		eventBus,
		news_service.WithCacheTTL(time.Duration(cfg.GetInt(config.KeyCacheTTL))*time.Second),
		news_service.WithConsumeOnRollback(cfg.GetBool(config.KeyHistoryConsumeOnRollback)),
	)
	newsHistorySvc := news_history_service.NewService(store.repos.NewsHistory, store.repos.News, maxVersions)
	auditListener := listener.NewNewsAuditListener(eventBus, store.repos.NewsHistory, maxVersions)

	// --- Phase 3: 数据初始化 ---
	bootstrapper := bootstrap.NewBootstrapper(store.repos.News, newsSvc, cfg.GetBool(config.KeyServerSeed))
	if _, err := bootstrapper.InitializeData(ctx); err != nil {
		eventBus.Shutdown()
		cleanup()
		return nil, nil, fmt.Errorf("数据初始化失败: %w", err)
	}

	// --- Phase 4: 初始化定时任务 ---
	scheduler := task.NewScheduler(newsHistorySvc, cfg.GetString(config.KeyHistoryCleanupCron))
	if _, err := scheduler.RegisterJobs(); err != nil {
		eventBus.Shutdown()
		cleanup()
		return nil, nil, fmt.Errorf("注册定时任务失败: %w", err)
	}

	// --- Phase 5: 初始化表现层 (Handlers) ---
	newsHandler := news_handler.NewHandler(newsSvc)
	newsHistoryHandler := news_history_handler.NewHandler(newsHistorySvc)
	versionHandler := version_handler.NewHandler()

	writeLimiter := middleware.NewIPRateLimiter(
		cfg.GetInt(config.KeyRateLimitWritePerMinute),
		cfg.GetInt(config.KeyRateLimitBurst),
	)
	var writeLimit gin.HandlerFunc
	if cfg.GetInt(config.KeyRateLimitWritePerMinute) > 0 {
		writeLimit = middleware.RateLimit(writeLimiter)
	}

	appRouter := router.NewRouter(newsHandler, newsHistoryHandler, versionHandler, writeLimit)

	// --- Phase 6: 配置 Gin 引擎 ---
	if cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.DebugMode)
		log.Println("运行模式: Debug (Gin 将打印详细路由日志)")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("运行模式: Release (Gin 启动日志已禁用)")
	}

	engine := gin.Default()
	err = engine.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	if err != nil {
		eventBus.Shutdown()
		writeLimiter.Stop()
		cleanup()
		return nil, nil, fmt.Errorf("设置信任代理失败: %w", err)
	}
	engine.ForwardedByClientIP = true
	appRouter.Setup(engine)

	app := &App{
		cfg:            cfg,
		engine:         engine,
		scheduler:      scheduler,
		eventBus:       eventBus,
		cacheSvc:       cacheSvc,
		writeLimiter:   writeLimiter,
		newsSvc:        newsSvc,
		newsHistorySvc: newsHistorySvc,
		auditListener:  auditListener,
		appVersion:     appVersion,
	}
	return app, cleanup, nil
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

// NewsService 返回新闻服务
func (a *App) NewsService() news_service.Service {
	return a.newsSvc
}

// AuditListener 返回新闻事件审计监听器
func (a *App) AuditListener() *listener.NewsAuditListener {
	return a.auditListener
}

// EventBus 返回事件总线，用于发布和订阅事件
func (a *App) EventBus() *event.EventBus {
	return a.eventBus
}

// Version 返回应用的版本号
func (a *App) Version() string {
	return a.appVersion
}

func (a *App) Run() error {
	a.scheduler.Start()
	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	fmt.Printf("应用程序启动成功，正在监听端口: %s\n", port)

	return a.engine.Run(":" + port)
}

// Stop 停止后台任务，可重复调用
func (a *App) Stop() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		log.Println("任务调度器已停止。")
	}
	if a.writeLimiter != nil {
		a.writeLimiter.Stop()
	}
	if a.eventBus != nil {
		a.eventBus.Shutdown()
	}
}
