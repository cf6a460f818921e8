package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=./view.go -package=cachemocks -destination=mocks/view.mock.go ViewCache
type ViewCache interface {
	// MarkViewed 窗口期内第一次浏览返回 true
	MarkViewed(ctx context.Context, articleID int64, actor string) (bool, error)
}

type ViewRedisCache struct {
	client redis.Cmdable
	window time.Duration
}

func NewViewRedisCache(client redis.Cmdable, window time.Duration) ViewCache {
	return &ViewRedisCache{client: client, window: window}
}

func (c *ViewRedisCache) MarkViewed(ctx context.Context, articleID int64, actor string) (bool, error) {
	key := fmt.Sprintf("discuss:views:%d:%s", articleID, actor)
	return c.client.SetNX(ctx, key, 1, c.window).Result()
}
