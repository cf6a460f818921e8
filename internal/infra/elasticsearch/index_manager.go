package elasticsearch

import (
	"context"
	"strings"
	"time"

	"discuss-go/pkg/logger"

	"go.uber.org/zap"
)

// IndexComments 评论索引的配置名
const IndexComments = "comments"

// CommentsIndexMapping 返回 comments 索引的 mapping（含 IK 中文分词）
func CommentsIndexMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		},
		"mappings": {
			"properties": {
				"id": {"type": "long"},
				"article_id": {"type": "long"},
				"article_title": {
					"type": "text",
					"analyzer": "ik_max_word",
					"search_analyzer": "ik_smart"
				},
				"user_id": {"type": "long"},
				"username": {"type": "keyword"},
				"parent_id": {"type": "long"},
				"content": {
					"type": "text",
					"analyzer": "ik_max_word",
					"search_analyzer": "ik_smart"
				},
				"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
			}
		}
	}`
}

// EnsureIndex 确保索引存在，不存在则按 mapping 创建
func EnsureIndex(ctx context.Context, indexName, mapping string) error {
	exists, err := indexExists(ctx, indexName)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("Elasticsearch index already exists", zap.String("index", indexName))
		return nil
	}

	if err := createIndex(ctx, indexName, strings.NewReader(mapping)); err != nil {
		return err
	}
	logger.Info("Elasticsearch index created", zap.String("index", indexName))
	return nil
}

// InitIndexes 初始化所有索引（启动时调用）
func InitIndexes(commentsIndex string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return EnsureIndex(ctx, commentsIndex, CommentsIndexMapping())
}
