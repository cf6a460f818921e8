package service

import (
	"context"
	"errors"

	"discuss-go/internal/api/dto"
	"discuss-go/internal/identity"
	"discuss-go/internal/metrics"
	"discuss-go/internal/model"
	"discuss-go/internal/repository"
)

const (
	actionLike   = "like"
	actionUnlike = "unlike"
)

// LikeService 点赞账本：同一文章同一身份最多一条记录，并维护文章的点赞数
type LikeService struct {
	likes    LikeStore
	articles ArticleStore
	events   EventPublisher
}

func NewLikeService(likes LikeStore, articles ArticleStore, events EventPublisher) *LikeService {
	if events == nil {
		events = NopPublisher{}
	}
	return &LikeService{likes: likes, articles: articles, events: events}
}

// Like 点赞。已点过赞返回 ErrAlreadyLiked，并发插入撞上唯一索引也按已点赞处理
func (s *LikeService) Like(ctx context.Context, articleID int64, key identity.ActorKey) (*dto.LikeResult, error) {
	res, err := s.like(ctx, articleID, key)
	record(actionLike, err)
	return res, err
}

func (s *LikeService) like(ctx context.Context, articleID int64, key identity.ActorKey) (*dto.LikeResult, error) {
	if !key.Valid() {
		return nil, ErrActorRequired
	}
	if err := ensureArticle(ctx, s.articles, articleID); err != nil {
		return nil, err
	}

	_, err := s.likes.Find(ctx, articleID, key)
	switch {
	case err == nil:
		return nil, ErrAlreadyLiked
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeFailure(err)
	}

	like := &model.Like{ArticleID: articleID}
	key.Apply(like)
	if err := s.likes.Insert(ctx, like); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyLiked
		}
		return nil, storeFailure(err)
	}

	article, err := s.articles.AdjustCounters(ctx, articleID, model.CounterDelta{Likes: 1})
	if err != nil {
		return nil, storeFailure(err)
	}

	publish(ctx, s.events, model.ThreadEvent{
		Type:      model.EventArticleLiked,
		ArticleID: articleID,
		Actor:     key.String(),
	})
	return &dto.LikeResult{Likes: article.LikeCount, Liked: true}, nil
}

// Unlike 取消点赞。没有记录返回 ErrNotLiked；并发取消时没删到行也返回 ErrNotLiked，计数不动
func (s *LikeService) Unlike(ctx context.Context, articleID int64, key identity.ActorKey) (*dto.LikeResult, error) {
	res, err := s.unlike(ctx, articleID, key)
	record(actionUnlike, err)
	return res, err
}

func (s *LikeService) unlike(ctx context.Context, articleID int64, key identity.ActorKey) (*dto.LikeResult, error) {
	if !key.Valid() {
		return nil, ErrActorRequired
	}
	if err := ensureArticle(ctx, s.articles, articleID); err != nil {
		return nil, err
	}

	like, err := s.likes.Find(ctx, articleID, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotLiked
		}
		return nil, storeFailure(err)
	}

	deleted, err := s.likes.Delete(ctx, like)
	if err != nil {
		return nil, storeFailure(err)
	}
	if !deleted {
		return nil, ErrNotLiked
	}

	article, err := s.articles.AdjustCounters(ctx, articleID, model.CounterDelta{Likes: -1})
	if err != nil {
		return nil, storeFailure(err)
	}

	publish(ctx, s.events, model.ThreadEvent{
		Type:      model.EventArticleUnliked,
		ArticleID: articleID,
		Actor:     key.String(),
	})
	return &dto.LikeResult{Likes: article.LikeCount, Liked: false}, nil
}

// HasLiked 当前身份是否已点赞，身份无法识别时视为未点赞
func (s *LikeService) HasLiked(ctx context.Context, articleID int64, key identity.ActorKey) (bool, error) {
	if !key.Valid() {
		return false, nil
	}
	_, err := s.likes.Find(ctx, articleID, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, storeFailure(err)
	}
}

func record(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if AsError(err).Kind == KindConflict {
			outcome = "conflict"
		}
	}
	metrics.Engagement.WithLabelValues(action, outcome).Inc()
}
