package service

import (
	"context"
	"strings"

	"discuss-go/internal/api/dto"
	"discuss-go/internal/model"
	"discuss-go/pkg/logger"

	"github.com/ecodeclub/ekit/slice"
	"go.uber.org/zap"
)

// SearchService 管理后台的评论列表与检索
type SearchService struct {
	comments CommentStore
	index    CommentIndex
}

// NewSearchService index 为 nil 时检索直接走数据库
func NewSearchService(comments CommentStore, index CommentIndex) *SearchService {
	return &SearchService{comments: comments, index: index}
}

// SearchComments 没有关键字时按时间倒序列出全站评论；有关键字时 ES 优先，失败则降级到 DB
func (s *SearchService) SearchComments(ctx context.Context, req *dto.AdminCommentQuery) (*dto.AdminCommentListData, error) {
	if req.Page < 1 || req.PageSize < 1 {
		return nil, ErrInvalidPagination
	}
	offset := (req.Page - 1) * req.PageSize
	q := strings.TrimSpace(req.Q)

	if q == "" {
		comments, total, err := s.comments.ListAll(ctx, offset, req.PageSize)
		if err != nil {
			return nil, storeFailure(err)
		}
		return buildAdminData(comments, nil, total, req.Page, req.PageSize), nil
	}

	if s.index != nil {
		data, err := s.searchFromES(ctx, q, offset, req.Page, req.PageSize)
		if err == nil {
			return data, nil
		}
		logger.FromContext(ctx).Warn("ES search failed, fallback to DB", zap.Error(err))
	}

	comments, total, err := s.comments.SearchContent(ctx, q, offset, req.PageSize)
	if err != nil {
		return nil, storeFailure(err)
	}
	return buildAdminData(comments, nil, total, req.Page, req.PageSize), nil
}

func (s *SearchService) searchFromES(ctx context.Context, q string, offset, page, pageSize int) (*dto.AdminCommentListData, error) {
	ids, total, highlights, err := s.index.SearchComments(ctx, q, offset, pageSize)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return buildAdminData(nil, nil, total, page, pageSize), nil
	}

	comments, err := s.comments.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 按 ES 的相关度顺序输出，已被删除但索引还没同步的直接跳过
	byID := make(map[int64]model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	ordered := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return buildAdminData(ordered, highlights, total, page, pageSize), nil
}

func buildAdminData(comments []model.Comment, highlights map[int64]map[string][]string, total int64, page, pageSize int) *dto.AdminCommentListData {
	items := slice.Map(comments, func(idx int, c model.Comment) dto.AdminCommentInfo {
		username := c.User.UserName
		if c.User.ID == 0 {
			username = PlaceholderName
		}
		return dto.AdminCommentInfo{
			ID:           c.ID,
			ArticleID:    c.ArticleID,
			ArticleTitle: c.Article.Title,
			UserID:       c.UserID,
			Username:     username,
			Content:      c.Content,
			ParentID:     c.ParentID,
			CreatedAt:    c.CreatedAt,
			Highlight:    highlights[c.ID],
		}
	})

	return &dto.AdminCommentListData{
		Comments:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}
