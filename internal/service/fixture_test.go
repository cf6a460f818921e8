package service

import (
	"context"
	"testing"
	"time"

	"discuss-go/internal/identity"
	"discuss-go/internal/model"
	"discuss-go/internal/repository/memstore"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fixture 基于内存仓储的测试数据
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memstore.Store
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, ctx: context.Background(), store: memstore.New()}
}

func (f *fixture) user(name, role string) *identity.Identity {
	u := &model.User{UserName: name, Password: "x", UserRole: role}
	require.NoError(f.t, f.store.Users().Create(f.ctx, u))
	return &identity.Identity{ID: u.ID, Username: u.UserName, Role: u.UserRole}
}

func (f *fixture) article(authorID int64) *model.Article {
	a := &model.Article{AuthorID: authorID, Title: "title", Content: "content", CreatedAt: epoch}
	require.NoError(f.t, f.store.Articles().Create(f.ctx, a))
	return a
}

// comment at 为相对 epoch 的分钟数，决定同级排序
func (f *fixture) comment(articleID, userID int64, parent *model.Comment, at int) *model.Comment {
	c := &model.Comment{
		ArticleID: articleID,
		UserID:    userID,
		Content:   "reply",
		CreatedAt: epoch.Add(time.Duration(at) * time.Minute),
	}
	if parent != nil {
		pid := parent.ID
		c.ParentID = &pid
	}
	require.NoError(f.t, f.store.Comments().Insert(f.ctx, c))
	return c
}

func (f *fixture) flattener(maxDepth int) *Flattener {
	return NewFlattener(f.store.Comments(), f.store.Users(), maxDepth)
}

func (f *fixture) articleByID(id int64) *model.Article {
	a, err := f.store.Articles().GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return a
}

func replyIDs(res FlattenResult) []int64 {
	ids := make([]int64, 0, len(res.Replies))
	for _, r := range res.Replies {
		ids = append(ids, r.ID)
	}
	return ids
}

func newAdmin() *identity.Identity {
	return &identity.Identity{ID: 1, Username: "root", Role: model.RoleAdmin}
}
