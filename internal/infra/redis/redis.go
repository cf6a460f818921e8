package redis

import (
	"context"
	"fmt"
	"time"

	"discuss-go/internal/config"
	"discuss-go/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	connectTimeout = 5 * time.Second
	// 分页缓存和浏览去重都可以回源，读写超时设短，Redis 变慢时直接降级
	opTimeout = 300 * time.Millisecond
)

// client 未启用或连接失败时为 nil，健康检查把 nil 视为未启用
var client *redis.Client

func options(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  connectTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	}
}

// Connect 建立连接并确认可用。ping 不通时关闭客户端并返回错误，不留半初始化的全局实例
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	c := redis.NewClient(options(cfg))

	pctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := c.Ping(pctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr(), err)
	}

	client = c
	logger.Info("Redis connected",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", cfg.PoolSize),
	)
	return c, nil
}

// Ping 健康检查用
func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

// Close 关闭连接，重复调用无害
func Close() error {
	if client == nil {
		return nil
	}
	c := client
	client = nil
	logger.Info("Redis connection closed")
	return c.Close()
}
