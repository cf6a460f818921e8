package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discuss-go/internal/config"
	"discuss-go/internal/infra/database"
	infraES "discuss-go/internal/infra/elasticsearch"
	infraKafka "discuss-go/internal/infra/kafka"
	"discuss-go/internal/reconcile"
	"discuss-go/internal/repository"
	"discuss-go/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if cfg.Database.IsMemory() {
		logger.Fatal("Worker requires a shared database, memory driver is not supported")
	}
	if err := database.Init(&cfg.Database, false); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	var indexer reconcile.Indexer
	if cfg.Elasticsearch.Enabled {
		indexName := cfg.Elasticsearch.IndexName(infraES.IndexComments)
		if err := infraES.Init(&cfg.Elasticsearch); err != nil {
			logger.Warn("Elasticsearch init failed, comment indexing disabled", zap.Error(err))
		} else {
			defer infraES.Close()
			if err := infraES.InitIndexes(indexName); err != nil {
				logger.Warn("Elasticsearch index init failed", zap.Error(err))
			}
			indexer = infraES.NewCommentIndex(indexName)
		}
	}

	db := database.Get()
	reconciler := reconcile.New(
		repository.NewArticleRepository(db),
		repository.NewCommentRepository(db),
		repository.NewLikeRepository(db),
		indexer,
		cfg.Thread.FlattenWorkers,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if cfg.Kafka.Enabled {
		topic := cfg.Kafka.Topic(infraKafka.TopicThreadEvents)
		go infraKafka.ConsumeThreadEvents(ctx, cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID, reconciler.HandleEvent)
	} else {
		logger.Warn("Kafka disabled, only periodic reconcile will run")
	}

	logger.Info("Thread worker started",
		zap.Duration("reconcile_every", cfg.Engagement.ReconcileEvery()),
		zap.Bool("kafka", cfg.Kafka.Enabled),
		zap.Bool("indexing", indexer != nil),
	)

	sweep(ctx, reconciler)

	ticker := time.NewTicker(cfg.Engagement.ReconcileEvery())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Thread worker stopped")
			return
		case <-ticker.C:
			sweep(ctx, reconciler)
		}
	}
}

func sweep(ctx context.Context, r *reconcile.Reconciler) {
	start := time.Now()
	n, err := r.Sweep(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Error("Reconcile sweep failed", zap.Int("articles", n), zap.Error(err))
		return
	}
	logger.Info("Reconcile sweep finished", zap.Int("articles", n), zap.Duration("duration", time.Since(start)))
}
