package service

import (
	"context"
	"errors"
	"testing"

	"discuss-go/internal/api/dto"
	"discuss-go/internal/model"
	"discuss-go/internal/repository/cache"
	cachemocks "discuss-go/internal/repository/cache/mocks"
	svcmocks "discuss-go/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func (f *fixture) commentService(pages cache.CommentPageCache, events EventPublisher) *CommentService {
	return NewCommentService(
		f.store.Comments(), f.store.Articles(), f.store.Users(),
		f.flattener(0), pages, events, 4,
	)
}

func TestCommentService_ListByArticle_Pagination(t *testing.T) {
	f := newFixture(t)
	u := f.user("alice", model.RoleUser)
	article := f.article(u.ID)
	for i := 0; i < 25; i++ {
		top := f.comment(article.ID, u.ID, nil, i)
		if i%5 == 0 {
			f.comment(article.ID, u.ID, top, 100+i)
		}
	}
	svc := f.commentService(nil, nil)

	testCases := []struct {
		name      string
		page      int
		pageSize  int
		wantLen   int
		wantPages int64
	}{
		{name: "第一页", page: 1, pageSize: 10, wantLen: 10, wantPages: 3},
		{name: "最后一页不满", page: 3, pageSize: 10, wantLen: 5, wantPages: 3},
		{name: "超出最后一页", page: 4, pageSize: 10, wantLen: 0, wantPages: 3},
		{name: "整除", page: 1, pageSize: 5, wantLen: 5, wantPages: 5},
		{name: "一页装下", page: 1, pageSize: 100, wantLen: 25, wantPages: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := svc.ListByArticle(f.ctx, article.ID, tc.page, tc.pageSize)
			require.NoError(t, err)
			assert.Len(t, data.Comments, tc.wantLen)
			assert.NotNil(t, data.Comments)
			assert.Equal(t, int64(25), data.Total)
			assert.Equal(t, tc.wantPages, data.TotalPages)
			assert.Equal(t, tc.page, data.Page)
			assert.Equal(t, tc.pageSize, data.PageSize)
		})
	}

	data, err := svc.ListByArticle(f.ctx, article.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, data.Comments, 1)
	// 最新的顶级评论排第一，i=24 没有回复
	assert.Equal(t, 0, data.Comments[0].RepliesCount)
	assert.Equal(t, "alice", data.Comments[0].Username)

	data, err = svc.ListByArticle(f.ctx, article.ID, 1, 25)
	require.NoError(t, err)
	withReplies := 0
	for _, c := range data.Comments {
		assert.Equal(t, len(c.Replies), c.RepliesCount)
		if c.RepliesCount > 0 {
			withReplies++
		}
	}
	assert.Equal(t, 5, withReplies)
}

func TestCommentService_ListByArticle_Errors(t *testing.T) {
	f := newFixture(t)
	u := f.user("alice", model.RoleUser)
	article := f.article(u.ID)
	svc := f.commentService(nil, nil)

	_, err := svc.ListByArticle(f.ctx, article.ID, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidPagination)
	_, err = svc.ListByArticle(f.ctx, article.ID, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidPagination)
	_, err = svc.ListByArticle(f.ctx, 404, 1, 10)
	assert.ErrorIs(t, err, ErrArticleNotFound)

	data, err := svc.ListByArticle(f.ctx, article.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, data.Comments)
	assert.Equal(t, int64(0), data.Total)
	assert.Equal(t, int64(0), data.TotalPages)
}

func TestCommentService_ListByArticle_DeletedAuthor(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", model.RoleUser)
	ghost := f.user("ghost", model.RoleUser)
	article := f.article(alice.ID)
	f.comment(article.ID, ghost.ID, nil, 0)
	f.store.Users().Remove(ghost.ID)

	data, err := f.commentService(nil, nil).ListByArticle(f.ctx, article.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, data.Comments, 1)
	assert.Equal(t, PlaceholderName, data.Comments[0].Username)
}

func TestCommentService_ListByArticle_Cache(t *testing.T) {
	f := newFixture(t)
	u := f.user("alice", model.RoleUser)
	article := f.article(u.ID)
	f.comment(article.ID, u.ID, nil, 0)

	t.Run("命中", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		pages := cachemocks.NewMockCommentPageCache(ctrl)
		cached := &dto.CommentListData{Comments: []dto.CommentInfo{}, Total: 99, Page: 1, PageSize: 10, TotalPages: 10}
		pages.EXPECT().Get(gomock.Any(), article.ID, 1, 10).Return(cached, int64(0), nil)

		data, err := f.commentService(pages, nil).ListByArticle(f.ctx, article.ID, 1, 10)
		require.NoError(t, err)
		assert.Same(t, cached, data)
	})

	t.Run("未命中后回填", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		pages := cachemocks.NewMockCommentPageCache(ctrl)
		pages.EXPECT().Get(gomock.Any(), article.ID, 1, 10).Return(nil, int64(2), cache.ErrKeyNotExist)
		pages.EXPECT().Set(gomock.Any(), article.ID, int64(2), 1, 10, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ int64, _, _ int, data *dto.CommentListData) error {
				assert.Equal(t, int64(1), data.Total)
				return nil
			})

		data, err := f.commentService(pages, nil).ListByArticle(f.ctx, article.ID, 1, 10)
		require.NoError(t, err)
		assert.Len(t, data.Comments, 1)
	})

	t.Run("缓存故障不影响结果且不回填", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		pages := cachemocks.NewMockCommentPageCache(ctrl)
		pages.EXPECT().Get(gomock.Any(), article.ID, 1, 10).Return(nil, int64(0), errors.New("redis down"))

		data, err := f.commentService(pages, nil).ListByArticle(f.ctx, article.ID, 1, 10)
		require.NoError(t, err)
		assert.Len(t, data.Comments, 1)
	})

	t.Run("回填写入失败不影响结果", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		pages := cachemocks.NewMockCommentPageCache(ctrl)
		pages.EXPECT().Get(gomock.Any(), article.ID, 1, 10).Return(nil, int64(0), cache.ErrKeyNotExist)
		pages.EXPECT().Set(gomock.Any(), article.ID, int64(0), 1, 10, gomock.Any()).Return(errors.New("redis down"))

		data, err := f.commentService(pages, nil).ListByArticle(f.ctx, article.ID, 1, 10)
		require.NoError(t, err)
		assert.Len(t, data.Comments, 1)
	})
}

// slowComments 在读完顶级评论之后执行 after，模拟读库与写评论交错
type slowComments struct {
	CommentStore
	after func()
}

func (s *slowComments) FindTopLevel(ctx context.Context, articleID int64, offset, limit int) ([]model.Comment, error) {
	comments, err := s.CommentStore.FindTopLevel(ctx, articleID, offset, limit)
	s.after()
	return comments, err
}

func TestCommentService_ListByArticle_CacheVersionPinned(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", model.RoleUser)
	article := f.article(alice.ID)
	f.comment(article.ID, alice.ID, nil, 0)

	ctrl := gomock.NewController(t)
	pages := cachemocks.NewMockCommentPageCache(ctrl)
	writer := f.commentService(pages, nil)

	var newComment int64
	reader := NewCommentService(
		&slowComments{
			CommentStore: f.store.Comments(),
			after: func() {
				info, err := writer.Create(f.ctx, alice, &dto.CommentCreateRequest{ArticleID: article.ID, Content: "late"})
				if assert.NoError(t, err) {
					newComment = info.ID
				}
			},
		},
		f.store.Articles(), f.store.Users(), f.flattener(0), pages, nil, 4,
	)

	gomock.InOrder(
		pages.EXPECT().Get(gomock.Any(), article.ID, 1, 10).Return(nil, int64(7), cache.ErrKeyNotExist),
		pages.EXPECT().Invalidate(gomock.Any(), article.ID).Return(nil),
		// 读库时拿到的是旧页面，只能写回旧版本 7
		pages.EXPECT().Set(gomock.Any(), article.ID, int64(7), 1, 10, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ int64, _, _ int, data *dto.CommentListData) error {
				for _, c := range data.Comments {
					assert.NotEqual(t, newComment, c.ID)
				}
				return nil
			}),
	)

	data, err := reader.ListByArticle(f.ctx, article.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, data.Comments, 1)
}

func TestCommentService_Create(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", model.RoleUser)
	article := f.article(alice.ID)
	other := f.article(alice.ID)
	parent := f.comment(article.ID, alice.ID, nil, 0)
	foreign := f.comment(other.ID, alice.ID, nil, 0)
	missing := int64(404)

	testCases := []struct {
		name    string
		noIdent bool
		req     dto.CommentCreateRequest
		wantErr error
	}{
		{
			name:    "未登录",
			noIdent: true,
			req:     dto.CommentCreateRequest{ArticleID: article.ID, Content: "hi"},
			wantErr: ErrLoginRequired,
		},
		{
			name:    "过滤后为空",
			req:     dto.CommentCreateRequest{ArticleID: article.ID, Content: "  <b></b>  "},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "文章不存在",
			req:     dto.CommentCreateRequest{ArticleID: 404, Content: "hi"},
			wantErr: ErrArticleNotFound,
		},
		{
			name:    "父评论不存在",
			req:     dto.CommentCreateRequest{ArticleID: article.ID, Content: "hi", ParentID: &missing},
			wantErr: ErrParentNotFound,
		},
		{
			name:    "父评论属于其他文章",
			req:     dto.CommentCreateRequest{ArticleID: article.ID, Content: "hi", ParentID: &foreign.ID},
			wantErr: ErrParentArticleMismatch,
		},
	}
	svc := f.commentService(nil, nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ident := alice
			if tc.noIdent {
				ident = nil
			}
			_, err := svc.Create(f.ctx, ident, &tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	ctrl := gomock.NewController(t)
	pages := cachemocks.NewMockCommentPageCache(ctrl)
	events := svcmocks.NewMockEventPublisher(ctrl)
	pages.EXPECT().Invalidate(gomock.Any(), article.ID).Return(nil)
	var published model.ThreadEvent
	events.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt model.ThreadEvent) error {
			published = evt
			return nil
		})

	before := f.articleByID(article.ID).CommentCount
	info, err := f.commentService(pages, events).Create(f.ctx, alice, &dto.CommentCreateRequest{
		ArticleID: article.ID,
		Content:   "<script>alert(1)</script><b>nice</b> post",
		ParentID:  &parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "nice post", info.Content)
	assert.Equal(t, "alice", info.Username)
	assert.Equal(t, &parent.ID, info.ParentID)
	assert.Nil(t, info.ReplyToUsername)
	assert.Equal(t, before+1, f.articleByID(article.ID).CommentCount)

	assert.Equal(t, model.EventCommentCreated, published.Type)
	assert.Equal(t, info.ID, published.CommentID)
	assert.False(t, published.OccurredAt.IsZero())
}

func TestCommentService_Create_KeepsTextAndReplyTo(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", model.RoleUser)
	bob := f.user("bob", model.RoleUser)
	ghost := f.user("ghost", model.RoleUser)
	article := f.article(alice.ID)
	svc := f.commentService(nil, nil)

	text := `if x < 5 && y > 3 then "Tom & Jerry"`
	top, err := svc.Create(f.ctx, alice, &dto.CommentCreateRequest{ArticleID: article.ID, Content: text})
	require.NoError(t, err)
	assert.Equal(t, text, top.Content)
	assert.Nil(t, top.ReplyToUsername)

	reply, err := svc.Create(f.ctx, bob, &dto.CommentCreateRequest{ArticleID: article.ID, Content: "a < b & c", ParentID: &top.ID})
	require.NoError(t, err)
	assert.Equal(t, "a < b & c", reply.Content)
	assert.Nil(t, reply.ReplyToUsername)

	nested, err := svc.Create(f.ctx, alice, &dto.CommentCreateRequest{ArticleID: article.ID, Content: "'quoted'", ParentID: &reply.ID})
	require.NoError(t, err)
	assert.Equal(t, "'quoted'", nested.Content)
	require.NotNil(t, nested.ReplyToUsername)
	assert.Equal(t, "bob", *nested.ReplyToUsername)

	// 被回复人已注销
	orphan, err := svc.Create(f.ctx, ghost, &dto.CommentCreateRequest{ArticleID: article.ID, Content: "gone", ParentID: &reply.ID})
	require.NoError(t, err)
	f.store.Users().Remove(ghost.ID)
	last, err := svc.Create(f.ctx, bob, &dto.CommentCreateRequest{ArticleID: article.ID, Content: "hello?", ParentID: &orphan.ID})
	require.NoError(t, err)
	require.NotNil(t, last.ReplyToUsername)
	assert.Equal(t, PlaceholderName, *last.ReplyToUsername)

	data, err := svc.ListByArticle(f.ctx, article.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, data.Comments, 1)
	assert.Equal(t, text, data.Comments[0].Content)
	replies := data.Comments[0].Replies
	require.NotEmpty(t, replies)
	assert.Equal(t, reply.ID, replies[0].ID)
	assert.Equal(t, "a < b & c", replies[0].Content)
}

func TestCommentService_Delete(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", model.RoleUser)
	mod := f.user("mod", model.RoleModerator)
	article := f.article(alice.ID)
	svc := f.commentService(nil, nil)

	root, err := svc.Create(f.ctx, alice, &dto.CommentCreateRequest{ArticleID: article.ID, Content: "root"})
	require.NoError(t, err)
	child, err := svc.Create(f.ctx, alice, &dto.CommentCreateRequest{ArticleID: article.ID, Content: "child", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.Create(f.ctx, alice, &dto.CommentCreateRequest{ArticleID: article.ID, Content: "grandchild", ParentID: &child.ID})
	require.NoError(t, err)
	_, err = svc.Create(f.ctx, alice, &dto.CommentCreateRequest{ArticleID: article.ID, Content: "other"})
	require.NoError(t, err)
	require.Equal(t, int64(4), f.articleByID(article.ID).CommentCount)

	_, err = svc.Delete(f.ctx, alice, root.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Delete(f.ctx, nil, root.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	ctrl := gomock.NewController(t)
	events := svcmocks.NewMockEventPublisher(ctrl)
	var published model.ThreadEvent
	events.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt model.ThreadEvent) error {
			published = evt
			return errors.New("kafka down")
		})

	res, err := f.commentService(nil, events).Delete(f.ctx, mod, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Removed)
	assert.Equal(t, article.ID, res.ArticleID)
	assert.Equal(t, int64(1), f.articleByID(article.ID).CommentCount)

	assert.Equal(t, model.EventCommentDeleted, published.Type)
	assert.Len(t, published.RemovedIDs, 3)
	assert.Equal(t, "u:2", published.Actor)

	_, err = svc.Delete(f.ctx, mod, root.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)

	data, err := svc.ListByArticle(f.ctx, article.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), data.Total)
}

func TestCommentService_Delete_ConcurrentlyRemoved(t *testing.T) {
	ctrl := gomock.NewController(t)
	comments := svcmocks.NewMockCommentStore(ctrl)
	articles := svcmocks.NewMockArticleStore(ctrl)
	users := svcmocks.NewMockUserStore(ctrl)

	comments.EXPECT().GetByID(gomock.Any(), int64(5)).Return(&model.Comment{ID: 5, ArticleID: 1}, nil)
	comments.EXPECT().DeleteTree(gomock.Any(), int64(5)).Return(nil, nil)
	articles.EXPECT().AdjustCounters(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	svc := NewCommentService(comments, articles, users, NewFlattener(comments, users, 0), nil, nil, 1)
	admin := newAdmin()
	_, err := svc.Delete(context.Background(), admin, 5)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
