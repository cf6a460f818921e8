package service

import (
	"errors"
	"testing"

	"discuss-go/internal/api/dto"
	"discuss-go/internal/model"
	svcmocks "discuss-go/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSearchService_SearchComments(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", model.RoleUser)
	article := f.article(alice.ID)
	first := f.comment(article.ID, alice.ID, nil, 0)
	second := f.comment(article.ID, alice.ID, nil, 1)
	require.NoError(t, f.store.Comments().Insert(f.ctx, &model.Comment{
		ArticleID: article.ID, UserID: alice.ID, Content: "I like Golang", CreatedAt: epoch,
	}))

	testCases := []struct {
		name  string
		index func(ctrl *gomock.Controller) CommentIndex
		req   dto.AdminCommentQuery

		wantErr   error
		wantTotal int64
		wantIDs   []int64
		wantHL    bool
	}{
		{
			name:      "无关键字列出全部",
			req:       dto.AdminCommentQuery{Page: 1, PageSize: 10},
			wantTotal: 3,
		},
		{
			name:      "未启用 ES 时查库",
			req:       dto.AdminCommentQuery{Q: "golang", Page: 1, PageSize: 10},
			wantTotal: 1,
		},
		{
			name: "ES 失败降级到库",
			index: func(ctrl *gomock.Controller) CommentIndex {
				idx := svcmocks.NewMockCommentIndex(ctrl)
				idx.EXPECT().SearchComments(gomock.Any(), "golang", 0, 10).
					Return(nil, int64(0), nil, errors.New("es down"))
				return idx
			},
			req:       dto.AdminCommentQuery{Q: " golang ", Page: 1, PageSize: 10},
			wantTotal: 1,
		},
		{
			name: "ES 命中按相关度排序并跳过已删除",
			index: func(ctrl *gomock.Controller) CommentIndex {
				idx := svcmocks.NewMockCommentIndex(ctrl)
				idx.EXPECT().SearchComments(gomock.Any(), "reply", 0, 10).
					Return([]int64{first.ID, 999, second.ID}, int64(3),
						map[int64]map[string][]string{first.ID: {"content": {"<em>reply</em>"}}}, nil)
				return idx
			},
			req:       dto.AdminCommentQuery{Q: "reply", Page: 1, PageSize: 10},
			wantTotal: 3,
			wantIDs:   []int64{first.ID, second.ID},
			wantHL:    true,
		},
		{
			name:    "分页非法",
			req:     dto.AdminCommentQuery{Page: 0, PageSize: 10},
			wantErr: ErrInvalidPagination,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			var index CommentIndex
			if tc.index != nil {
				index = tc.index(ctrl)
			}
			svc := NewSearchService(f.store.Comments(), index)

			data, err := svc.SearchComments(f.ctx, &tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantTotal, data.Total)
			if tc.wantIDs != nil {
				ids := make([]int64, 0, len(data.Comments))
				for _, c := range data.Comments {
					ids = append(ids, c.ID)
				}
				assert.Equal(t, tc.wantIDs, ids)
			}
			if tc.wantHL {
				assert.Equal(t, []string{"<em>reply</em>"}, data.Comments[0].Highlight["content"])
			}
			for _, c := range data.Comments {
				assert.Equal(t, "alice", c.Username)
				assert.Equal(t, "title", c.ArticleTitle)
			}
		})
	}
}
