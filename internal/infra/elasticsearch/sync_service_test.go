package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"discuss-go/internal/config"
	"discuss-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES 只实现测试用到的几个接口
type fakeES struct {
	mu       sync.Mutex
	indexed  map[string][]byte
	bulk     string
	search   map[string]any
	created  bool
	bulkResp string

	// existsStatus 非 0 时 HEAD /comments 固定返回该状态
	existsStatus int
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	body, _ := io.ReadAll(r.Body)

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead && r.URL.Path == "/comments":
		if f.existsStatus != 0 {
			w.WriteHeader(f.existsStatus)
			return
		}
		if f.created {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && r.URL.Path == "/comments":
		f.created = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/comments/_doc/"):
		f.indexed[strings.TrimPrefix(r.URL.Path, "/comments/_doc/")] = body
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case r.URL.Path == "/_bulk":
		f.bulk = string(body)
		_, _ = w.Write([]byte(f.bulkResp))
	case r.URL.Path == "/comments/_search":
		_ = json.Unmarshal(body, &f.search)
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":7},"hits":[
			{"_source":{"id":3},"highlight":{"content":["<em>go</em> rocks"]}},
			{"_source":{"id":1}}
		]}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{}`))
	}
}

func setupES(t *testing.T) *fakeES {
	fake := &fakeES{indexed: make(map[string][]byte)}
	server := httptest.NewServer(fake)
	t.Cleanup(func() {
		server.Close()
		_ = Close()
	})
	require.NoError(t, Init(&config.ElasticsearchConfig{Enabled: true, Hosts: []string{server.URL}}))
	return fake
}

func TestCommentIndex(t *testing.T) {
	fake := setupES(t)
	ctx := context.Background()
	idx := NewCommentIndex(IndexComments)

	require.NoError(t, EnsureIndex(ctx, IndexComments, CommentsIndexMapping()))
	assert.True(t, fake.created)
	// 已存在时不重复创建
	require.NoError(t, EnsureIndex(ctx, IndexComments, CommentsIndexMapping()))

	parent := int64(1)
	err := idx.IndexComment(ctx, &model.Comment{
		ID:        5,
		ArticleID: 2,
		UserID:    9,
		ParentID:  &parent,
		Content:   "hello",
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		User:      model.User{ID: 9, UserName: "alice"},
		Article:   model.Article{ID: 2, Title: "title"},
	})
	require.NoError(t, err)
	var doc CommentDoc
	require.NoError(t, json.Unmarshal(fake.indexed["5"], &doc))
	assert.Equal(t, CommentDoc{
		ID: 5, ArticleID: 2, ArticleTitle: "title", UserID: 9, Username: "alice",
		ParentID: &parent, Content: "hello", CreatedAt: "2024-05-01T00:00:00Z",
	}, doc)

	ids, total, highlights, err := idx.SearchComments(ctx, "go", 10, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids)
	assert.Equal(t, int64(7), total)
	assert.Equal(t, map[int64]map[string][]string{3: {"content": {"<em>go</em> rocks"}}}, highlights)
	assert.Equal(t, float64(10), fake.search["from"])
	assert.Equal(t, float64(5), fake.search["size"])
}

func TestCommentIndex_DeleteComments(t *testing.T) {
	fake := setupES(t)
	ctx := context.Background()
	idx := NewCommentIndex(IndexComments)

	require.NoError(t, idx.DeleteComments(ctx, nil))
	assert.Empty(t, fake.bulk)

	fake.bulkResp = `{"items":[{"delete":{"status":200}},{"delete":{"status":404}}]}`
	require.NoError(t, idx.DeleteComments(ctx, []int64{1, 2}))
	assert.Equal(t,
		`{"delete":{"_index":"comments","_id":"1"}}`+"\n"+`{"delete":{"_index":"comments","_id":"2"}}`+"\n",
		fake.bulk)

	fake.bulkResp = `{"items":[{"delete":{"status":200}},{"delete":{"status":500}}]}`
	assert.Error(t, idx.DeleteComments(ctx, []int64{1, 2}))
}

func TestEnsureIndex_ExistsCheckFails(t *testing.T) {
	fake := setupES(t)
	fake.existsStatus = http.StatusInternalServerError

	err := EnsureIndex(context.Background(), IndexComments, CommentsIndexMapping())
	assert.Error(t, err)
	assert.False(t, fake.created)
}

func TestNormalizeHosts(t *testing.T) {
	testCases := []struct {
		name  string
		hosts []string
		want  []string
	}{
		{name: "补协议", hosts: []string{"es:9200"}, want: []string{"http://es:9200"}},
		{name: "保留 https", hosts: []string{" https://es:9200 "}, want: []string{"https://es:9200"}},
		{name: "去掉空项", hosts: []string{"", "  ", "a:1"}, want: []string{"http://a:1"}},
		{name: "全空", hosts: nil, want: []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeHosts(tc.hosts))
		})
	}
	assert.Error(t, Init(&config.ElasticsearchConfig{Hosts: []string{" "}}))
}

func TestNotInitialized(t *testing.T) {
	_ = Close()
	assert.NoError(t, Ping(context.Background()))
	_, _, _, err := NewCommentIndex(IndexComments).SearchComments(context.Background(), "go", 0, 10)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, NewCommentIndex(IndexComments).DeleteComments(context.Background(), []int64{1}), ErrNotInitialized)
}
