package service

import (
	"context"
	"errors"

	"discuss-go/internal/api/dto"
	"discuss-go/internal/identity"
	"discuss-go/internal/model"
	"discuss-go/internal/repository"
	"discuss-go/internal/repository/cache"
	"discuss-go/pkg/logger"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CommentService struct {
	comments  CommentStore
	articles  ArticleStore
	users     UserStore
	flattener *Flattener
	pages     cache.CommentPageCache
	events    EventPublisher
	workers   int
	sanitizer *bluemonday.Policy
}

// NewCommentService pages 为 nil 时不缓存分页结果；workers 为同时拍平的顶级评论数
func NewCommentService(
	comments CommentStore,
	articles ArticleStore,
	users UserStore,
	flattener *Flattener,
	pages cache.CommentPageCache,
	events EventPublisher,
	workers int,
) *CommentService {
	if workers <= 0 {
		workers = 1
	}
	if events == nil {
		events = NopPublisher{}
	}
	return &CommentService{
		comments:  comments,
		articles:  articles,
		users:     users,
		flattener: flattener,
		pages:     pages,
		events:    events,
		workers:   workers,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// ListByArticle 按顶级评论分页，每条顶级评论带上整棵拍平的回复
func (s *CommentService) ListByArticle(ctx context.Context, articleID int64, page, pageSize int) (*dto.CommentListData, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPagination
	}
	if err := ensureArticle(ctx, s.articles, articleID); err != nil {
		return nil, err
	}

	// 版本号在读库之前取定，回填时沿用，避免旧数据落到新版本上
	var (
		version   int64
		cacheable bool
	)
	if s.pages != nil {
		data, ver, err := s.pages.Get(ctx, articleID, page, pageSize)
		switch {
		case err == nil:
			return data, nil
		case errors.Is(err, cache.ErrKeyNotExist):
			version, cacheable = ver, true
		default:
			logger.FromContext(ctx).Warn("Read comment page cache failed",
				zap.Int64("article_id", articleID), zap.Error(err))
		}
	}

	var (
		eg       errgroup.Group
		total    int64
		topLevel []model.Comment
	)
	eg.Go(func() error {
		var err error
		total, err = s.comments.CountTopLevel(ctx, articleID)
		return err
	})
	eg.Go(func() error {
		var err error
		topLevel, err = s.comments.FindTopLevel(ctx, articleID, (page-1)*pageSize, pageSize)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, storeFailure(err)
	}

	items, err := s.expand(ctx, topLevel)
	if err != nil {
		return nil, err
	}

	data := &dto.CommentListData{
		Comments:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	if cacheable {
		if err := s.pages.Set(ctx, articleID, version, page, pageSize, data); err != nil {
			logger.FromContext(ctx).Warn("Write comment page cache failed",
				zap.Int64("article_id", articleID), zap.Error(err))
		}
	}
	return data, nil
}

// expand 并发拍平同一页的顶级评论，结果保持原顺序
func (s *CommentService) expand(ctx context.Context, topLevel []model.Comment) ([]dto.CommentInfo, error) {
	items := make([]dto.CommentInfo, len(topLevel))
	if len(topLevel) == 0 {
		return items, nil
	}

	authorIDs := make([]int64, 0, len(topLevel))
	for i := range topLevel {
		authorIDs = append(authorIDs, topLevel[i].UserID)
	}
	names, err := s.users.DisplayNames(ctx, authorIDs)
	if err != nil {
		return nil, storeFailure(err)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i := range topLevel {
		eg.Go(func() error {
			res, err := s.flattener.Flatten(gctx, &topLevel[i])
			if err != nil {
				return err
			}
			info := toCommentInfo(&topLevel[i], names)
			info.Replies = res.Replies
			info.RepliesCount = len(res.Replies)
			info.RepliesTruncated = res.Truncated
			items[i] = info
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, AsError(err)
	}
	return items, nil
}

// Create 发表评论或回复
func (s *CommentService) Create(ctx context.Context, ident *identity.Identity, req *dto.CommentCreateRequest) (*dto.CommentInfo, error) {
	if ident == nil {
		return nil, ErrLoginRequired
	}

	content := plainText(s.sanitizer, req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	if err := ensureArticle(ctx, s.articles, req.ArticleID); err != nil {
		return nil, err
	}

	var replyTo *string
	if req.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, storeFailure(err)
		}
		if parent.ArticleID != req.ArticleID {
			return nil, ErrParentArticleMismatch
		}
		// 与拍平结果一致：只有回复的是另一条回复时才带被回复人
		if !parent.IsTopLevel() {
			name, err := s.authorName(ctx, parent.UserID)
			if err != nil {
				return nil, err
			}
			replyTo = &name
		}
	}

	comment := &model.Comment{
		ArticleID: req.ArticleID,
		UserID:    ident.ID,
		Content:   content,
		ParentID:  req.ParentID,
	}
	if err := s.comments.Insert(ctx, comment); err != nil {
		return nil, storeFailure(err)
	}

	s.adjustComments(ctx, req.ArticleID, 1)
	s.invalidate(ctx, req.ArticleID)
	publish(ctx, s.events, model.ThreadEvent{
		Type:      model.EventCommentCreated,
		ArticleID: req.ArticleID,
		CommentID: comment.ID,
	})

	info := toCommentInfo(comment, map[int64]string{ident.ID: ident.Username})
	info.ReplyToUsername = replyTo
	return &info, nil
}

func (s *CommentService) authorName(ctx context.Context, userID int64) (string, error) {
	name, err := s.users.DisplayName(ctx, userID)
	switch {
	case err == nil:
		return name, nil
	case errors.Is(err, repository.ErrNotFound):
		return PlaceholderName, nil
	default:
		return "", storeFailure(err)
	}
}

// Delete 删除评论及其全部回复，仅版主和管理员可操作
func (s *CommentService) Delete(ctx context.Context, ident *identity.Identity, commentID int64) (*dto.CommentDeleteData, error) {
	if !ident.Elevated() {
		return nil, ErrForbidden
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, storeFailure(err)
	}

	removed, err := s.comments.DeleteTree(ctx, commentID)
	if err != nil {
		return nil, storeFailure(err)
	}
	// 并发删除时另一方已经删掉
	if len(removed) == 0 {
		return nil, ErrCommentNotFound
	}

	s.adjustComments(ctx, comment.ArticleID, -int64(len(removed)))
	s.invalidate(ctx, comment.ArticleID)
	publish(ctx, s.events, model.ThreadEvent{
		Type:       model.EventCommentDeleted,
		ArticleID:  comment.ArticleID,
		CommentID:  commentID,
		RemovedIDs: removed,
		Actor:      actorOf(ident),
	})

	logger.FromContext(ctx).Info("Comment deleted",
		zap.Int64("comment_id", commentID),
		zap.Int64("article_id", comment.ArticleID),
		zap.Int("removed", len(removed)),
		zap.Int64("operator", ident.ID),
	)

	return &dto.CommentDeleteData{
		ID:        commentID,
		ArticleID: comment.ArticleID,
		Removed:   int64(len(removed)),
	}, nil
}

// adjustComments 评论数只是缓存值，失败只记日志，由 worker 对账修正
func (s *CommentService) adjustComments(ctx context.Context, articleID, delta int64) {
	if _, err := s.articles.AdjustCounters(ctx, articleID, model.CounterDelta{Comments: delta}); err != nil {
		logger.FromContext(ctx).Warn("Adjust comment count failed",
			zap.Int64("article_id", articleID),
			zap.Int64("delta", delta),
			zap.Error(err),
		)
	}
}

func (s *CommentService) invalidate(ctx context.Context, articleID int64) {
	if s.pages == nil {
		return
	}
	if err := s.pages.Invalidate(ctx, articleID); err != nil {
		logger.FromContext(ctx).Warn("Invalidate comment page cache failed",
			zap.Int64("article_id", articleID), zap.Error(err))
	}
}

func toCommentInfo(c *model.Comment, names map[int64]string) dto.CommentInfo {
	username, ok := names[c.UserID]
	if !ok {
		username = PlaceholderName
	}
	return dto.CommentInfo{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		UserID:    c.UserID,
		Username:  username,
		Content:   c.Content,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		Replies:   []dto.ReplyInfo{},
	}
}
