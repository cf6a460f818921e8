package service

import (
	"context"
	"errors"
	"strings"

	"discuss-go/internal/api/dto"
	"discuss-go/internal/identity"
	"discuss-go/internal/model"
	"discuss-go/internal/repository"
	"discuss-go/internal/repository/cache"
	"discuss-go/pkg/logger"

	"github.com/ecodeclub/ekit/slice"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

type ArticleService struct {
	articles  ArticleStore
	users     UserStore
	ledger    *LikeService
	views     cache.ViewCache
	sanitizer *bluemonday.Policy
}

// NewArticleService views 为 nil 时每次访问都计一次浏览
func NewArticleService(articles ArticleStore, users UserStore, ledger *LikeService, views cache.ViewCache) *ArticleService {
	return &ArticleService{
		articles:  articles,
		users:     users,
		ledger:    ledger,
		views:     views,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Get 文章详情：浏览数加一（同一身份在去重窗口内只计一次），并带上当前身份是否已点赞
func (s *ArticleService) Get(ctx context.Context, id int64, ident *identity.Identity, address string) (*dto.ArticleInfo, error) {
	article, err := findArticle(ctx, s.articles, id)
	if err != nil {
		return nil, err
	}

	key, keyErr := identity.Resolve(ident, address)
	if s.countView(ctx, id, key, keyErr) {
		updated, err := s.articles.AdjustCounters(ctx, id, model.CounterDelta{Views: 1})
		if err != nil {
			logger.FromContext(ctx).Warn("Increment view count failed", zap.Int64("article_id", id), zap.Error(err))
		} else {
			article = updated
		}
	}

	info := toArticleInfo(article)
	if keyErr == nil {
		liked, err := s.ledger.HasLiked(ctx, id, key)
		if err != nil {
			return nil, err
		}
		info.Liked = liked
	}

	name, err := s.users.DisplayName(ctx, article.AuthorID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		name = PlaceholderName
	default:
		return nil, storeFailure(err)
	}
	info.Author = &dto.AuthorBrief{ID: article.AuthorID, Username: name}
	return &info, nil
}

// countView Redis 不可用时宁可多计也不漏计
func (s *ArticleService) countView(ctx context.Context, id int64, key identity.ActorKey, keyErr error) bool {
	if s.views == nil || keyErr != nil {
		return true
	}
	first, err := s.views.MarkViewed(ctx, id, key.String())
	if err != nil {
		logger.FromContext(ctx).Warn("View dedupe failed", zap.Int64("article_id", id), zap.Error(err))
		return true
	}
	return first
}

// Create 发表文章
func (s *ArticleService) Create(ctx context.Context, ident *identity.Identity, req *dto.ArticleCreateRequest) (*dto.ArticleInfo, error) {
	if ident == nil {
		return nil, ErrLoginRequired
	}
	title := strings.TrimSpace(req.Title)
	content := plainText(s.sanitizer, req.Content)
	if title == "" || content == "" {
		return nil, ErrEmptyContent
	}

	article := &model.Article{
		AuthorID: ident.ID,
		Title:    title,
		Content:  content,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, storeFailure(err)
	}

	info := toArticleInfo(article)
	info.Author = &dto.AuthorBrief{ID: ident.ID, Username: ident.Username}
	return &info, nil
}

// Delete 删除文章及其评论和点赞，仅管理员
func (s *ArticleService) Delete(ctx context.Context, ident *identity.Identity, id int64) error {
	if ident == nil || ident.Role != model.RoleAdmin {
		return ErrForbidden
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrArticleNotFound
		}
		return storeFailure(err)
	}
	logger.FromContext(ctx).Info("Article deleted", zap.Int64("article_id", id), zap.Int64("operator", ident.ID))
	return nil
}

// List 文章列表，最新的在前
func (s *ArticleService) List(ctx context.Context, page, pageSize int) (*dto.ArticleListData, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPagination
	}
	articles, total, err := s.articles.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, storeFailure(err)
	}

	items := slice.Map(articles, func(idx int, a model.Article) dto.ArticleInfo {
		info := toArticleInfo(&a)
		name := a.Author.UserName
		if a.Author.ID == 0 {
			name = PlaceholderName
		}
		info.Author = &dto.AuthorBrief{ID: a.AuthorID, Username: name}
		return info
	})

	return &dto.ArticleListData{
		Articles:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
	}, nil
}

func findArticle(ctx context.Context, articles ArticleStore, id int64) (*model.Article, error) {
	article, err := articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, storeFailure(err)
	}
	return article, nil
}

func ensureArticle(ctx context.Context, articles ArticleStore, id int64) error {
	_, err := findArticle(ctx, articles, id)
	return err
}

func toArticleInfo(a *model.Article) dto.ArticleInfo {
	return dto.ArticleInfo{
		ID:           a.ID,
		AuthorID:     a.AuthorID,
		Title:        a.Title,
		Content:      a.Content,
		ViewCount:    a.ViewCount,
		LikeCount:    a.LikeCount,
		CommentCount: a.CommentCount,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
