package reconcile

import (
	"context"
	"errors"
	"testing"

	"discuss-go/internal/identity"
	"discuss-go/internal/model"
	"discuss-go/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexer struct {
	indexed []int64
	deleted []int64
	err     error
}

func (f *fakeIndexer) IndexComment(_ context.Context, c *model.Comment) error {
	f.indexed = append(f.indexed, c.ID)
	return f.err
}

func (f *fakeIndexer) DeleteComments(_ context.Context, ids []int64) error {
	f.deleted = append(f.deleted, ids...)
	return f.err
}

type env struct {
	ctx     context.Context
	store   *memstore.Store
	indexer *fakeIndexer
	r       *Reconciler
}

func newEnv(t *testing.T) *env {
	store := memstore.New()
	indexer := &fakeIndexer{}
	return &env{
		ctx:     context.Background(),
		store:   store,
		indexer: indexer,
		r:       New(store.Articles(), store.Comments(), store.Likes(), indexer, 2),
	}
}

func (e *env) article(t *testing.T) *model.Article {
	a := &model.Article{AuthorID: 1, Title: "t", Content: "c"}
	require.NoError(t, e.store.Articles().Create(e.ctx, a))
	return a
}

func (e *env) like(t *testing.T, articleID, userID int64) {
	key, err := identity.Account(userID)
	require.NoError(t, err)
	like := &model.Like{ArticleID: articleID}
	key.Apply(like)
	require.NoError(t, e.store.Likes().Insert(e.ctx, like))
}

func TestReconciler_Recount(t *testing.T) {
	e := newEnv(t)
	a := e.article(t)
	e.like(t, a.ID, 1)
	e.like(t, a.ID, 2)
	require.NoError(t, e.store.Comments().Insert(e.ctx, &model.Comment{ArticleID: a.ID, UserID: 1, Content: "x"}))
	// 计数器漂移
	_, err := e.store.Articles().AdjustCounters(e.ctx, a.ID, model.CounterDelta{Likes: 10, Comments: 5})
	require.NoError(t, err)

	require.NoError(t, e.r.Recount(e.ctx, a.ID))
	got, err := e.store.Articles().GetByID(e.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LikeCount)
	assert.Equal(t, int64(1), got.CommentCount)

	// 文章已删除时忽略
	assert.NoError(t, e.r.Recount(e.ctx, 404))
}

func TestReconciler_HandleEvent(t *testing.T) {
	e := newEnv(t)
	a := e.article(t)
	c := &model.Comment{ArticleID: a.ID, UserID: 1, Content: "x"}
	require.NoError(t, e.store.Comments().Insert(e.ctx, c))

	require.NoError(t, e.r.HandleEvent(e.ctx, &model.ThreadEvent{
		Type: model.EventCommentCreated, ArticleID: a.ID, CommentID: c.ID,
	}))
	assert.Equal(t, []int64{c.ID}, e.indexer.indexed)
	got, err := e.store.Articles().GetByID(e.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CommentCount)

	// 事件到达前评论已被删掉
	require.NoError(t, e.r.HandleEvent(e.ctx, &model.ThreadEvent{
		Type: model.EventCommentCreated, ArticleID: a.ID, CommentID: 999,
	}))
	assert.Len(t, e.indexer.indexed, 1)

	require.NoError(t, e.r.HandleEvent(e.ctx, &model.ThreadEvent{
		Type: model.EventCommentDeleted, ArticleID: a.ID, CommentID: c.ID, RemovedIDs: []int64{c.ID, 77},
	}))
	assert.Equal(t, []int64{c.ID, 77}, e.indexer.deleted)

	assert.NoError(t, e.r.HandleEvent(e.ctx, &model.ThreadEvent{Type: "unknown", ArticleID: a.ID}))
}

func TestReconciler_HandleEvent_IndexFailureStillRecounts(t *testing.T) {
	e := newEnv(t)
	a := e.article(t)
	e.like(t, a.ID, 1)
	e.indexer.err = errors.New("es down")

	err := e.r.HandleEvent(e.ctx, &model.ThreadEvent{
		Type: model.EventCommentDeleted, ArticleID: a.ID, RemovedIDs: []int64{1},
	})
	assert.ErrorIs(t, err, e.indexer.err)

	got, getErr := e.store.Articles().GetByID(e.ctx, a.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(1), got.LikeCount)
}

func TestReconciler_WithoutIndexer(t *testing.T) {
	store := memstore.New()
	r := New(store.Articles(), store.Comments(), store.Likes(), nil, 0)
	assert.NoError(t, r.HandleEvent(context.Background(), &model.ThreadEvent{
		Type: model.EventCommentDeleted, ArticleID: 1, RemovedIDs: []int64{1},
	}))
}

func TestReconciler_Sweep(t *testing.T) {
	e := newEnv(t)
	const n = sweepBatch + 5
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		a := e.article(t)
		_, err := e.store.Articles().AdjustCounters(e.ctx, a.ID, model.CounterDelta{Likes: 3})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	count, err := e.r.Sweep(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)
	for _, id := range []int64{ids[0], ids[sweepBatch], ids[n-1]} {
		got, err := e.store.Articles().GetByID(e.ctx, id)
		require.NoError(t, err)
		assert.Zero(t, got.LikeCount)
	}
}

func TestReconciler_SweepCancelled(t *testing.T) {
	e := newEnv(t)
	e.article(t)
	ctx, cancel := context.WithCancel(e.ctx)
	cancel()

	_, err := e.r.Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
