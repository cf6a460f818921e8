package service

import (
	"context"

	"discuss-go/internal/identity"
	"discuss-go/internal/model"
)

// 以下接口由 repository（gorm）和 repository/memstore 实现

//go:generate mockgen -source=./store.go -package=svcmocks -destination=mocks/store.mock.go
type CommentStore interface {
	Insert(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Comment, error)
	// FindChildren 直接回复，最新的在前
	FindChildren(ctx context.Context, articleID, parentID int64) ([]model.Comment, error)
	// FindTopLevel 顶级评论分页，最新的在前
	FindTopLevel(ctx context.Context, articleID int64, offset, limit int) ([]model.Comment, error)
	CountTopLevel(ctx context.Context, articleID int64) (int64, error)
	CountByArticle(ctx context.Context, articleID int64) (int64, error)
	// DeleteTree 删除评论及其子树，返回被删除的 ID
	DeleteTree(ctx context.Context, id int64) ([]int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]model.Comment, int64, error)
	SearchContent(ctx context.Context, keyword string, offset, limit int) ([]model.Comment, int64, error)
}

type ArticleStore interface {
	GetByID(ctx context.Context, id int64) (*model.Article, error)
	Create(ctx context.Context, article *model.Article) error
	List(ctx context.Context, offset, limit int) ([]model.Article, int64, error)
	Delete(ctx context.Context, id int64) error
	// AdjustCounters 计数器加减，结果不小于 0，返回调整后的文章
	AdjustCounters(ctx context.Context, id int64, delta model.CounterDelta) (*model.Article, error)
	SetCounters(ctx context.Context, id, likes, comments int64) error
	ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

type LikeStore interface {
	Find(ctx context.Context, articleID int64, key identity.ActorKey) (*model.Like, error)
	// Insert 唯一约束冲突时返回 repository.ErrDuplicate
	Insert(ctx context.Context, like *model.Like) error
	Delete(ctx context.Context, like *model.Like) (bool, error)
	CountByArticle(ctx context.Context, articleID int64) (int64, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	// DisplayName 用户不存在时返回 repository.ErrNotFound
	DisplayName(ctx context.Context, id int64) (string, error)
	DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// EventPublisher 发布评论区事件，Kafka 未启用时使用 NopPublisher
type EventPublisher interface {
	Publish(ctx context.Context, evt model.ThreadEvent) error
}

// CommentIndex 评论全文检索，按相关度返回命中的评论 ID 和高亮片段
type CommentIndex interface {
	SearchComments(ctx context.Context, keyword string, offset, limit int) (ids []int64, total int64, highlights map[int64]map[string][]string, err error)
}
