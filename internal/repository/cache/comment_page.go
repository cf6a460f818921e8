package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"discuss-go/internal/api/dto"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotExist 缓存未命中
var ErrKeyNotExist = redis.Nil

//go:generate mockgen -source=./comment_page.go -package=cachemocks -destination=mocks/comment_page.mock.go CommentPageCache
type CommentPageCache interface {
	// Get 同时返回读到的版本号，未命中时回填必须用这个版本，不能重新读
	Get(ctx context.Context, articleID int64, page, pageSize int) (*dto.CommentListData, int64, error)
	Set(ctx context.Context, articleID, version int64, page, pageSize int, data *dto.CommentListData) error
	// Invalidate 文章下评论有增删时调用，旧版本的分页自然过期
	Invalidate(ctx context.Context, articleID int64) error
}

type CommentPageRedisCache struct {
	client     redis.Cmdable
	expiration time.Duration
}

func NewCommentPageRedisCache(client redis.Cmdable, expiration time.Duration) CommentPageCache {
	return &CommentPageRedisCache{client: client, expiration: expiration}
}

func (c *CommentPageRedisCache) Get(ctx context.Context, articleID int64, page, pageSize int) (*dto.CommentListData, int64, error) {
	version, err := c.version(ctx, articleID)
	if err != nil {
		return nil, 0, err
	}
	val, err := c.client.Get(ctx, c.pageKey(articleID, version, page, pageSize)).Bytes()
	if err != nil {
		return nil, version, err
	}
	var data dto.CommentListData
	if err := json.Unmarshal(val, &data); err != nil {
		// 坏数据按未命中处理，回填覆盖
		return nil, version, ErrKeyNotExist
	}
	return &data, version, nil
}

// Set 写入指定版本下的分页。期间版本被 Invalidate 推进的话，这份数据只会落在旧版本上
func (c *CommentPageRedisCache) Set(ctx context.Context, articleID, version int64, page, pageSize int, data *dto.CommentListData) error {
	val, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.pageKey(articleID, version, page, pageSize), val, c.expiration).Err()
}

func (c *CommentPageRedisCache) Invalidate(ctx context.Context, articleID int64) error {
	return c.client.Incr(ctx, c.versionKey(articleID)).Err()
}

// version 没有版本号时视为 0
func (c *CommentPageRedisCache) version(ctx context.Context, articleID int64) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(articleID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *CommentPageRedisCache) versionKey(articleID int64) string {
	return fmt.Sprintf("discuss:comments:ver:%d", articleID)
}

func (c *CommentPageRedisCache) pageKey(articleID, version int64, page, pageSize int) string {
	return fmt.Sprintf("discuss:comments:page:%d:%d:%d:%d", articleID, version, page, pageSize)
}
