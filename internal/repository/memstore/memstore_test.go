package memstore

import (
	"context"
	"testing"
	"time"

	"discuss-go/internal/identity"
	"discuss-go/internal/model"
	"discuss-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCommentStore_Ordering(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	comments := New().Comments()

	first := &model.Comment{ArticleID: 1, UserID: 1, Content: "a", CreatedAt: base}
	second := &model.Comment{ArticleID: 1, UserID: 1, Content: "b", CreatedAt: base.Add(time.Minute)}
	// 与 second 同一时刻，按 ID 倒序排在前面
	third := &model.Comment{ArticleID: 1, UserID: 1, Content: "c", CreatedAt: base.Add(time.Minute)}
	other := &model.Comment{ArticleID: 2, UserID: 1, Content: "d", CreatedAt: base}
	for _, c := range []*model.Comment{first, second, third, other} {
		require.NoError(t, comments.Insert(ctx, c))
	}

	top, err := comments.FindTopLevel(ctx, 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{top[0].ID, top[1].ID, top[2].ID})

	paged, err := comments.FindTopLevel(ctx, 1, 2, 10)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, first.ID, paged[0].ID)

	empty, err := comments.FindTopLevel(ctx, 1, 30, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	n, err := comments.CountTopLevel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCommentStore_DeleteTree(t *testing.T) {
	ctx := context.Background()
	comments := New().Comments()

	root := &model.Comment{ArticleID: 1, UserID: 1, Content: "root"}
	require.NoError(t, comments.Insert(ctx, root))
	child := &model.Comment{ArticleID: 1, UserID: 1, Content: "child", ParentID: ptr(root.ID)}
	require.NoError(t, comments.Insert(ctx, child))
	grandchild := &model.Comment{ArticleID: 1, UserID: 1, Content: "grandchild", ParentID: ptr(child.ID)}
	require.NoError(t, comments.Insert(ctx, grandchild))
	sibling := &model.Comment{ArticleID: 1, UserID: 1, Content: "sibling"}
	require.NoError(t, comments.Insert(ctx, sibling))

	removed, err := comments.DeleteTree(ctx, root.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{root.ID, child.ID, grandchild.ID}, removed)

	n, err := comments.CountByArticle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	removed, err = comments.DeleteTree(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestCommentStore_SearchContent(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := &model.User{UserName: "alice", Password: "x"}
	require.NoError(t, s.Users().Create(ctx, user))
	article := &model.Article{AuthorID: user.ID, Title: "t", Content: "c"}
	require.NoError(t, s.Articles().Create(ctx, article))

	comments := s.Comments()
	require.NoError(t, comments.Insert(ctx, &model.Comment{ArticleID: article.ID, UserID: user.ID, Content: "Hello Gopher"}))
	require.NoError(t, comments.Insert(ctx, &model.Comment{ArticleID: article.ID, UserID: user.ID, Content: "nothing here"}))

	found, total, err := comments.SearchContent(ctx, "gopher", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, "alice", found[0].User.UserName)
	assert.Equal(t, "t", found[0].Article.Title)
}

func TestLikeStore(t *testing.T) {
	ctx := context.Background()
	likes := New().Likes()

	account, err := identity.Account(1)
	require.NoError(t, err)
	anon, err := identity.Anonymous("10.0.0.1")
	require.NoError(t, err)

	like := &model.Like{ArticleID: 1}
	account.Apply(like)
	require.NoError(t, likes.Insert(ctx, like))

	dup := &model.Like{ArticleID: 1}
	account.Apply(dup)
	assert.ErrorIs(t, likes.Insert(ctx, dup), repository.ErrDuplicate)

	anonLike := &model.Like{ArticleID: 1}
	anon.Apply(anonLike)
	require.NoError(t, likes.Insert(ctx, anonLike))

	_, err = likes.Find(ctx, 2, account)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	found, err := likes.Find(ctx, 1, anon)
	require.NoError(t, err)
	assert.Equal(t, anonLike.ID, found.ID)

	n, err := likes.CountByArticle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	deleted, err := likes.Delete(ctx, found)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = likes.Delete(ctx, found)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestArticleStore_AdjustCountersFloor(t *testing.T) {
	ctx := context.Background()
	articles := New().Articles()

	article := &model.Article{AuthorID: 1, Title: "t", Content: "c"}
	require.NoError(t, articles.Create(ctx, article))

	updated, err := articles.AdjustCounters(ctx, article.ID, model.CounterDelta{Likes: 2, Comments: -3, Views: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.LikeCount)
	assert.Equal(t, int64(0), updated.CommentCount)
	assert.Equal(t, int64(1), updated.ViewCount)

	_, err = articles.AdjustCounters(ctx, 999, model.CounterDelta{Likes: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestArticleStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	article := &model.Article{AuthorID: 1, Title: "t", Content: "c"}
	require.NoError(t, s.Articles().Create(ctx, article))
	require.NoError(t, s.Comments().Insert(ctx, &model.Comment{ArticleID: article.ID, UserID: 1, Content: "x"}))
	key, err := identity.Account(1)
	require.NoError(t, err)
	like := &model.Like{ArticleID: article.ID}
	key.Apply(like)
	require.NoError(t, s.Likes().Insert(ctx, like))

	require.NoError(t, s.Articles().Delete(ctx, article.ID))
	assert.ErrorIs(t, s.Articles().Delete(ctx, article.ID), repository.ErrNotFound)

	n, err := s.Comments().CountByArticle(ctx, article.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = s.Likes().CountByArticle(ctx, article.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestArticleStore_ListIDs(t *testing.T) {
	ctx := context.Background()
	articles := New().Articles()
	for i := 0; i < 5; i++ {
		require.NoError(t, articles.Create(ctx, &model.Article{AuthorID: 1, Title: "t", Content: "c"}))
	}

	ids, err := articles.ListIDs(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	ids, err = articles.ListIDs(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5}, ids)
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	users := New().Users()

	alice := &model.User{UserName: "alice", Password: "x"}
	require.NoError(t, users.Create(ctx, alice))
	assert.Equal(t, model.RoleUser, alice.UserRole)
	assert.ErrorIs(t, users.Create(ctx, &model.User{UserName: "alice"}), repository.ErrDuplicate)

	names, err := users.DisplayNames(ctx, []int64{alice.ID, 404})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{alice.ID: "alice"}, names)

	users.Remove(alice.ID)
	_, err = users.DisplayName(ctx, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
