package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"discuss-go/internal/model"
	"discuss-go/pkg/logger"

	"go.uber.org/zap"
)

// CommentDoc ES 评论文档结构
type CommentDoc struct {
	ID           int64  `json:"id"`
	ArticleID    int64  `json:"article_id"`
	ArticleTitle string `json:"article_title"`
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	ParentID     *int64 `json:"parent_id,omitempty"`
	Content      string `json:"content"`
	CreatedAt    string `json:"created_at"`
}

func commentToDoc(c *model.Comment) *CommentDoc {
	return &CommentDoc{
		ID:           c.ID,
		ArticleID:    c.ArticleID,
		ArticleTitle: c.Article.Title,
		UserID:       c.UserID,
		Username:     c.User.UserName,
		ParentID:     c.ParentID,
		Content:      c.Content,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

// CommentIndex 评论索引的读写入口
type CommentIndex struct {
	index string
}

func NewCommentIndex(index string) *CommentIndex {
	return &CommentIndex{index: index}
}

// IndexComment 同步单条评论到 ES（需预加载 User 和 Article）
func (ci *CommentIndex) IndexComment(ctx context.Context, c *model.Comment) error {
	body, err := json.Marshal(commentToDoc(c))
	if err != nil {
		return err
	}

	if err := indexDocument(ctx, ci.index, strconv.FormatInt(c.ID, 10), bytes.NewReader(body)); err != nil {
		return err
	}

	logger.Debug("Comment synced to ES", zap.Int64("comment_id", c.ID))
	return nil
}

// DeleteComments 批量从 ES 删除评论，文档不存在不算失败
func (ci *CommentIndex) DeleteComments(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	var buf strings.Builder
	for _, id := range ids {
		buf.WriteString(fmt.Sprintf(`{"delete":{"_index":"%s","_id":"%d"}}`, ci.index, id))
		buf.WriteString("\n")
	}

	var bulkResp struct {
		Items []struct {
			Delete struct {
				Status int `json:"status"`
			} `json:"delete"`
		} `json:"items"`
	}
	if err := bulk(ctx, strings.NewReader(buf.String()), &bulkResp); err != nil {
		return err
	}

	failed := 0
	for _, item := range bulkResp.Items {
		s := item.Delete.Status
		if (s < 200 || s >= 300) && s != 404 {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("bulk delete: %d of %d items failed", failed, len(ids))
	}
	return nil
}

// SearchComments 按内容检索评论，返回命中 ID（按相关度）、总数和高亮
func (ci *CommentIndex) SearchComments(ctx context.Context, keyword string, offset, limit int) ([]int64, int64, map[int64]map[string][]string, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":                keyword,
				"fields":               []string{"content^3", "article_title", "username"},
				"type":                 "best_fields",
				"operator":             "or",
				"minimum_should_match": "50%",
			},
		},
		"_source": []string{"id"},
		"from":    offset,
		"size":    limit,
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]string{"order": "desc"}},
			map[string]interface{}{"created_at": map[string]string{"order": "desc"}},
		},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"content": map[string]interface{}{},
			},
			"pre_tags":  []string{"<em>"},
			"post_tags": []string{"</em>"},
		},
	}

	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, 0, nil, err
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := search(ctx, ci.index, bytes.NewReader(queryJSON), &esResp); err != nil {
		return nil, 0, nil, err
	}

	ids := make([]int64, 0, len(esResp.Hits.Hits))
	highlights := make(map[int64]map[string][]string)
	for _, h := range esResp.Hits.Hits {
		ids = append(ids, h.Source.ID)
		if len(h.Highlight) > 0 {
			highlights[h.Source.ID] = h.Highlight
		}
	}
	return ids, esResp.Hits.Total.Value, highlights, nil
}
