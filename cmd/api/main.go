package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discuss-go/internal/api/handler"
	"discuss-go/internal/api/middleware"
	"discuss-go/internal/api/router"
	"discuss-go/internal/config"
	"discuss-go/internal/infra/database"
	infraES "discuss-go/internal/infra/elasticsearch"
	infraKafka "discuss-go/internal/infra/kafka"
	infraRedis "discuss-go/internal/infra/redis"
	"discuss-go/internal/repository"
	"discuss-go/internal/repository/cache"
	"discuss-go/internal/repository/memstore"
	"discuss-go/internal/service"
	"discuss-go/pkg/logger"

	_ "discuss-go/api/openapi"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Discuss-Go API
// @version 1.0
// @description 文章评论区服务：多级回复拍平、点赞账本与管理后台检索
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@discuss.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

// stores 服务层依赖的存储，postgres 与内存实现二选一
type stores struct {
	users    service.UserStore
	articles service.ArticleStore
	comments service.CommentStore
	likes    service.LikeStore
}

func main() {
	// 加载配置文件
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	st := initStores(cfg)
	defer database.Close()

	// 初始化Redis（可选，关闭时不缓存分页也不做浏览去重）
	var (
		pageCache cache.CommentPageCache
		viewCache cache.ViewCache
	)
	if cfg.Redis.Enabled {
		rdb, err := infraRedis.Connect(context.Background(), &cfg.Redis)
		if err != nil {
			// 缓存和去重都能降级，连不上也照常启动
			logger.Warn("Redis unavailable, running without cache", zap.Error(err))
		} else {
			defer infraRedis.Close()
			if ttl := cfg.Thread.CacheTTL(); ttl > 0 {
				pageCache = cache.NewCommentPageRedisCache(rdb, ttl)
			}
			viewCache = cache.NewViewRedisCache(rdb, cfg.Engagement.ViewDedupeDuration())
		}
	}

	// 初始化Kafka生产者（可选，关闭时事件直接丢弃）
	var events service.EventPublisher = service.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher := infraKafka.NewPublisher(&cfg.Kafka)
		defer publisher.Close()
		events = publisher
	}

	// 初始化 Elasticsearch（可选，失败则检索降级到 DB）
	var commentIndex service.CommentIndex
	if cfg.Elasticsearch.Enabled {
		indexName := cfg.Elasticsearch.IndexName(infraES.IndexComments)
		if err := infraES.Init(&cfg.Elasticsearch); err != nil {
			logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
		} else {
			defer infraES.Close()
			if err := infraES.InitIndexes(indexName); err != nil {
				logger.Warn("Elasticsearch index init failed", zap.Error(err))
			}
			commentIndex = infraES.NewCommentIndex(indexName)
		}
	}

	// 初始化依赖（Repository -> Service -> Handler）
	flattener := service.NewFlattener(st.comments, st.users, cfg.Thread.MaxDepth)
	authService := service.NewAuthService(st.users)
	likeService := service.NewLikeService(st.likes, st.articles, events)
	articleService := service.NewArticleService(st.articles, st.users, likeService, viewCache)
	commentService := service.NewCommentService(
		st.comments, st.articles, st.users, flattener, pageCache, events, cfg.Thread.FlattenWorkers,
	)
	searchService := service.NewSearchService(st.comments, commentIndex)

	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Article: handler.NewArticleHandler(articleService),
		Comment: handler.NewCommentHandler(commentService),
		Like:    handler.NewLikeHandler(likeService),
		Admin:   handler.NewAdminHandler(searchService),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database":      database.Ping,
			"redis":         infraRedis.Ping,
			"elasticsearch": infraES.Ping,
		}),
	}

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 创建Gin路由器（不使用默认中间件）
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	if len(cfg.App.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.App.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Setup(r, handlers, authService.Identify)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", cfg.Database.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("kafka", cfg.Kafka.Enabled),
		zap.Bool("elasticsearch", commentIndex != nil),
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

func initStores(cfg *config.Config) stores {
	if cfg.Database.IsMemory() {
		logger.Warn("Using in-memory storage, data will be lost on restart")
		mem := memstore.New()
		return stores{
			users:    mem.Users(),
			articles: mem.Articles(),
			comments: mem.Comments(),
			likes:    mem.Likes(),
		}
	}

	// 初始化数据库
	if err := database.Init(&cfg.Database, cfg.App.Mode == gin.DebugMode); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}

	// 自动迁移数据库表
	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	db := database.Get()
	return stores{
		users:    repository.NewUserRepository(db),
		articles: repository.NewArticleRepository(db),
		comments: repository.NewCommentRepository(db),
		likes:    repository.NewLikeRepository(db),
	}
}
