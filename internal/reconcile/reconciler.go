// Package reconcile 是 worker 的业务逻辑：消费评论区事件同步搜索索引，
// 并用重新统计的结果修正文章上的点赞数和评论数。
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"discuss-go/internal/model"
	"discuss-go/internal/repository"
	"discuss-go/internal/service"
	"discuss-go/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sweepBatch = 200

// Indexer 评论搜索索引，ES 未启用时为 nil
type Indexer interface {
	IndexComment(ctx context.Context, c *model.Comment) error
	DeleteComments(ctx context.Context, ids []int64) error
}

type Reconciler struct {
	articles service.ArticleStore
	comments service.CommentStore
	likes    service.LikeStore
	indexer  Indexer
	workers  int
}

func New(articles service.ArticleStore, comments service.CommentStore, likes service.LikeStore, indexer Indexer, workers int) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	return &Reconciler{
		articles: articles,
		comments: comments,
		likes:    likes,
		indexer:  indexer,
		workers:  workers,
	}
}

// HandleEvent 处理一条事件：先同步索引，再对账该文章的计数器
func (r *Reconciler) HandleEvent(ctx context.Context, evt *model.ThreadEvent) error {
	var indexErr error
	switch evt.Type {
	case model.EventCommentCreated:
		indexErr = r.indexComment(ctx, evt.CommentID)
	case model.EventCommentDeleted:
		if r.indexer != nil {
			indexErr = r.indexer.DeleteComments(ctx, evt.RemovedIDs)
		}
	case model.EventArticleLiked, model.EventArticleUnliked:
	default:
		logger.Warn("Unknown thread event type", zap.String("type", evt.Type))
		return nil
	}

	return errors.Join(indexErr, r.Recount(ctx, evt.ArticleID))
}

func (r *Reconciler) indexComment(ctx context.Context, commentID int64) error {
	if r.indexer == nil {
		return nil
	}
	found, err := r.comments.GetByIDs(ctx, []int64{commentID})
	if err != nil {
		return err
	}
	// 事件到达前评论已被删除
	if len(found) == 0 {
		return nil
	}
	return r.indexer.IndexComment(ctx, &found[0])
}

// Recount 用点赞记录数和评论数覆盖文章上的计数器，文章已删除时忽略
func (r *Reconciler) Recount(ctx context.Context, articleID int64) error {
	article, err := r.articles.GetByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	var (
		eg       errgroup.Group
		likes    int64
		comments int64
	)
	eg.Go(func() error {
		var err error
		likes, err = r.likes.CountByArticle(ctx, articleID)
		return err
	})
	eg.Go(func() error {
		var err error
		comments, err = r.comments.CountByArticle(ctx, articleID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("recount article %d: %w", articleID, err)
	}

	if article.LikeCount == likes && article.CommentCount == comments {
		return nil
	}
	if err := r.articles.SetCounters(ctx, articleID, likes, comments); err != nil {
		return err
	}
	logger.Info("Article counters reconciled",
		zap.Int64("article_id", articleID),
		zap.Int64("likes_before", article.LikeCount),
		zap.Int64("likes_after", likes),
		zap.Int64("comments_before", article.CommentCount),
		zap.Int64("comments_after", comments),
	)
	return nil
}

// Sweep 分批对账所有文章，单篇失败不影响其他文章，返回处理的文章数
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	var (
		afterID int64
		count   int
	)
	for {
		ids, err := r.articles.ListIDs(ctx, afterID, sweepBatch)
		if err != nil {
			return count, err
		}
		if len(ids) == 0 {
			return count, nil
		}

		eg, gctx := errgroup.WithContext(ctx)
		eg.SetLimit(r.workers)
		for _, id := range ids {
			eg.Go(func() error {
				if err := r.Recount(gctx, id); err != nil {
					logger.Error("Reconcile article failed", zap.Int64("article_id", id), zap.Error(err))
				}
				return gctx.Err()
			})
		}
		if err := eg.Wait(); err != nil {
			return count, err
		}

		count += len(ids)
		afterID = ids[len(ids)-1]
	}
}
