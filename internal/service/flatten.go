package service

import (
	"context"
	"errors"

	"discuss-go/internal/api/dto"
	"discuss-go/internal/metrics"
	"discuss-go/internal/model"
	"discuss-go/internal/repository"
	"discuss-go/pkg/logger"

	"go.uber.org/zap"
)

const (
	// DefaultMaxDepth 回复链最大展开深度
	DefaultMaxDepth = 50
	// PlaceholderName 作者已不存在时显示的名字
	PlaceholderName = "已注销用户"
)

// Flattener 把一条顶级评论下任意深度的回复树拍平成一层列表：
// 深度优先，同级按时间倒序，子孙紧跟在祖先之后。
type Flattener struct {
	comments CommentStore
	users    UserStore
	maxDepth int
}

func NewFlattener(comments CommentStore, users UserStore, maxDepth int) *Flattener {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Flattener{comments: comments, users: users, maxDepth: maxDepth}
}

// FlattenResult 拍平结果。Truncated 表示有分支因深度上限或环被截断
type FlattenResult struct {
	Replies   []dto.ReplyInfo
	Truncated bool
}

// Flatten 拍平 root 的整棵回复子树，root 本身不在结果中。
// 作者缺失用占位名；存储出错则整体失败，不返回半截结果。
func (f *Flattener) Flatten(ctx context.Context, root *model.Comment) (FlattenResult, error) {
	w := &walk{
		Flattener: f,
		ctx:       ctx,
		root:      root,
		names:     make(map[int64]string),
		visited:   map[int64]struct{}{root.ID: {}},
		replies:   make([]dto.ReplyInfo, 0),
	}
	if err := w.descend(root, 1); err != nil {
		return FlattenResult{}, err
	}

	if w.truncated {
		metrics.FlattenTruncated.Inc()
	}
	metrics.FlattenReplies.Observe(float64(len(w.replies)))
	return FlattenResult{Replies: w.replies, Truncated: w.truncated}, nil
}

// walk 单次拍平的状态，名字缓存只在本次调用内有效
type walk struct {
	*Flattener
	ctx       context.Context
	root      *model.Comment
	names     map[int64]string
	visited   map[int64]struct{}
	replies   []dto.ReplyInfo
	truncated bool
}

// descend 追加 parent 的所有子孙，depth 为子节点所在层（root 的直接回复为 1）
func (w *walk) descend(parent *model.Comment, depth int) error {
	if err := w.ctx.Err(); err != nil {
		return storeFailure(err)
	}

	children, err := w.comments.FindChildren(w.ctx, w.root.ArticleID, parent.ID)
	if err != nil {
		return storeFailure(err)
	}
	if len(children) == 0 {
		return nil
	}
	if depth > w.maxDepth {
		w.truncated = true
		logger.FromContext(w.ctx).Warn("Reply depth limit reached",
			zap.Int64("root_id", w.root.ID),
			zap.Int64("parent_id", parent.ID),
			zap.Int("max_depth", w.maxDepth),
		)
		return nil
	}

	var replyTo *string
	if parent.ID != w.root.ID {
		name, err := w.name(parent.UserID)
		if err != nil {
			return err
		}
		replyTo = &name
	}

	for i := range children {
		child := &children[i]
		if _, seen := w.visited[child.ID]; seen {
			w.truncated = true
			logger.FromContext(w.ctx).Warn("Comment cycle detected",
				zap.Int64("root_id", w.root.ID),
				zap.Int64("comment_id", child.ID),
			)
			continue
		}
		w.visited[child.ID] = struct{}{}

		username, err := w.name(child.UserID)
		if err != nil {
			return err
		}
		w.replies = append(w.replies, dto.ReplyInfo{
			ID:              child.ID,
			ArticleID:       child.ArticleID,
			UserID:          child.UserID,
			Username:        username,
			Content:         child.Content,
			ParentID:        parent.ID,
			ReplyToUsername: replyTo,
			CreatedAt:       child.CreatedAt,
		})

		if err := w.descend(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) name(userID int64) (string, error) {
	if name, ok := w.names[userID]; ok {
		return name, nil
	}
	name := PlaceholderName
	if userID > 0 {
		found, err := w.users.DisplayName(w.ctx, userID)
		switch {
		case err == nil:
			name = found
		case errors.Is(err, repository.ErrNotFound):
		default:
			return "", storeFailure(err)
		}
	}
	w.names[userID] = name
	return name, nil
}
