// Package memstore 是仓储层的内存实现，供单元测试和 database.driver=memory 的本地开发使用。
// 行为与 gorm 仓储保持一致：不存在返回 repository.ErrNotFound，唯一约束冲突返回 repository.ErrDuplicate。
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"discuss-go/internal/identity"
	"discuss-go/internal/model"
	"discuss-go/internal/repository"
)

// Store 一份共享的内存数据，各个仓储视图都指向它
type Store struct {
	mu       sync.RWMutex
	seq      int64
	users    map[int64]model.User
	articles map[int64]model.Article
	comments map[int64]model.Comment
	likes    map[int64]model.Like
}

func New() *Store {
	return &Store{
		users:    make(map[int64]model.User),
		articles: make(map[int64]model.Article),
		comments: make(map[int64]model.Comment),
		likes:    make(map[int64]model.Like),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// stamp 没有显式时间时取当前时钟
func (s *Store) stamp(t time.Time) time.Time {
	if !t.IsZero() {
		return t
	}
	return time.Now()
}

func (s *Store) Users() *UserStore       { return &UserStore{s: s} }
func (s *Store) Articles() *ArticleStore { return &ArticleStore{s: s} }
func (s *Store) Comments() *CommentStore { return &CommentStore{s: s} }
func (s *Store) Likes() *LikeStore       { return &LikeStore{s: s} }

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ---------------------------------------------------------------- users

type UserStore struct{ s *Store }

func (u *UserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (u *UserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, user := range u.s.users {
		if user.UserName == username {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *UserStore) Create(_ context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.UserName == user.UserName {
			return repository.ErrDuplicate
		}
	}
	if user.ID == 0 {
		user.ID = u.s.nextID()
	}
	if user.UserRole == "" {
		user.UserRole = model.RoleUser
	}
	user.CreatedAt = u.s.stamp(user.CreatedAt)
	u.s.users[user.ID] = *user
	return nil
}

// Remove 删除用户，用于模拟已注销的作者
func (u *UserStore) Remove(id int64) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	delete(u.s.users, id)
}

func (u *UserStore) DisplayName(_ context.Context, id int64) (string, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return user.UserName, nil
}

func (u *UserStore) DisplayNames(_ context.Context, ids []int64) (map[int64]string, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	res := make(map[int64]string, len(ids))
	for _, id := range ids {
		if user, ok := u.s.users[id]; ok {
			res[id] = user.UserName
		}
	}
	return res, nil
}

// ---------------------------------------------------------------- articles

type ArticleStore struct{ s *Store }

func (a *ArticleStore) GetByID(_ context.Context, id int64) (*model.Article, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	article, ok := a.s.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &article, nil
}

func (a *ArticleStore) Create(_ context.Context, article *model.Article) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if article.ID == 0 {
		article.ID = a.s.nextID()
	}
	article.CreatedAt = a.s.stamp(article.CreatedAt)
	article.UpdatedAt = article.CreatedAt
	a.s.articles[article.ID] = *article
	return nil
}

func (a *ArticleStore) List(_ context.Context, offset, limit int) ([]model.Article, int64, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	all := make([]model.Article, 0, len(a.s.articles))
	for _, article := range a.s.articles {
		article.Author = a.s.users[article.AuthorID]
		all = append(all, article)
	}
	sort.Slice(all, func(i, j int) bool {
		return newerFirst(all[i].CreatedAt, all[i].ID, all[j].CreatedAt, all[j].ID)
	})
	return page(all, offset, limit), int64(len(all)), nil
}

func (a *ArticleStore) Delete(_ context.Context, id int64) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.articles[id]; !ok {
		return repository.ErrNotFound
	}
	for cid, c := range a.s.comments {
		if c.ArticleID == id {
			delete(a.s.comments, cid)
		}
	}
	for lid, l := range a.s.likes {
		if l.ArticleID == id {
			delete(a.s.likes, lid)
		}
	}
	delete(a.s.articles, id)
	return nil
}

func floorAdd(v, d int64) int64 {
	if v+d < 0 {
		return 0
	}
	return v + d
}

func (a *ArticleStore) AdjustCounters(_ context.Context, id int64, delta model.CounterDelta) (*model.Article, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	article, ok := a.s.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	article.LikeCount = floorAdd(article.LikeCount, delta.Likes)
	article.CommentCount = floorAdd(article.CommentCount, delta.Comments)
	article.ViewCount = floorAdd(article.ViewCount, delta.Views)
	a.s.articles[id] = article
	return &article, nil
}

func (a *ArticleStore) SetCounters(_ context.Context, id, likes, comments int64) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	article, ok := a.s.articles[id]
	if !ok {
		return nil
	}
	article.LikeCount, article.CommentCount = likes, comments
	a.s.articles[id] = article
	return nil
}

func (a *ArticleStore) ListIDs(_ context.Context, afterID int64, limit int) ([]int64, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	ids := make([]int64, 0)
	for id := range a.s.articles {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return page(ids, 0, limit), nil
}

// ---------------------------------------------------------------- comments

type CommentStore struct{ s *Store }

func newerFirst(ti time.Time, idi int64, tj time.Time, idj int64) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi > idj
}

func sortNewest(comments []model.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		return newerFirst(comments[i].CreatedAt, comments[i].ID, comments[j].CreatedAt, comments[j].ID)
	})
}

func (c *CommentStore) Insert(_ context.Context, comment *model.Comment) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if comment.ID == 0 {
		comment.ID = c.s.nextID()
	}
	comment.CreatedAt = c.s.stamp(comment.CreatedAt)
	stored := *comment
	stored.User, stored.Article = model.User{}, model.Article{}
	c.s.comments[comment.ID] = stored
	return nil
}

func (c *CommentStore) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	comment, ok := c.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &comment, nil
}

// withRelations 模拟 gorm Preload，调用方需持有读锁
func (c *CommentStore) withRelations(comment model.Comment) model.Comment {
	comment.User = c.s.users[comment.UserID]
	comment.Article = c.s.articles[comment.ArticleID]
	return comment
}

func (c *CommentStore) GetByIDs(_ context.Context, ids []int64) ([]model.Comment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	res := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		if comment, ok := c.s.comments[id]; ok {
			res = append(res, c.withRelations(comment))
		}
	}
	return res, nil
}

func (c *CommentStore) filter(match func(model.Comment) bool) []model.Comment {
	res := make([]model.Comment, 0)
	for _, comment := range c.s.comments {
		if match(comment) {
			res = append(res, comment)
		}
	}
	sortNewest(res)
	return res
}

func (c *CommentStore) FindChildren(_ context.Context, articleID, parentID int64) ([]model.Comment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return c.filter(func(m model.Comment) bool {
		return m.ArticleID == articleID && m.ParentID != nil && *m.ParentID == parentID
	}), nil
}

func (c *CommentStore) FindTopLevel(_ context.Context, articleID int64, offset, limit int) ([]model.Comment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	all := c.filter(func(m model.Comment) bool {
		return m.ArticleID == articleID && m.ParentID == nil
	})
	return page(all, offset, limit), nil
}

func (c *CommentStore) CountTopLevel(_ context.Context, articleID int64) (int64, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var n int64
	for _, m := range c.s.comments {
		if m.ArticleID == articleID && m.ParentID == nil {
			n++
		}
	}
	return n, nil
}

func (c *CommentStore) CountByArticle(_ context.Context, articleID int64) (int64, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var n int64
	for _, m := range c.s.comments {
		if m.ArticleID == articleID {
			n++
		}
	}
	return n, nil
}

func (c *CommentStore) DeleteTree(_ context.Context, id int64) ([]int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.comments[id]; !ok {
		return nil, nil
	}
	doomed := map[int64]struct{}{id: {}}
	removed := []int64{id}
	for i := 0; i < len(removed); i++ {
		cur := removed[i]
		for cid, m := range c.s.comments {
			if m.ParentID == nil || *m.ParentID != cur {
				continue
			}
			if _, seen := doomed[cid]; !seen {
				doomed[cid] = struct{}{}
				removed = append(removed, cid)
			}
		}
	}
	for _, cid := range removed {
		delete(c.s.comments, cid)
	}
	return removed, nil
}

func (c *CommentStore) ListAll(_ context.Context, offset, limit int) ([]model.Comment, int64, error) {
	return c.list(func(model.Comment) bool { return true }, offset, limit)
}

func (c *CommentStore) SearchContent(_ context.Context, keyword string, offset, limit int) ([]model.Comment, int64, error) {
	keyword = strings.ToLower(keyword)
	return c.list(func(m model.Comment) bool {
		return strings.Contains(strings.ToLower(m.Content), keyword)
	}, offset, limit)
}

func (c *CommentStore) list(match func(model.Comment) bool, offset, limit int) ([]model.Comment, int64, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	all := c.filter(match)
	res := page(all, offset, limit)
	for i := range res {
		res[i] = c.withRelations(res[i])
	}
	return res, int64(len(all)), nil
}

// ---------------------------------------------------------------- likes

type LikeStore struct{ s *Store }

func sameActor(l model.Like, key identity.ActorKey) bool {
	if uid, ok := key.AccountID(); ok {
		return l.UserID != nil && *l.UserID == uid
	}
	addr, ok := key.Address()
	return ok && l.UserID == nil && l.IPAddress != nil && *l.IPAddress == addr
}

func (l *LikeStore) Find(_ context.Context, articleID int64, key identity.ActorKey) (*model.Like, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	for _, like := range l.s.likes {
		if like.ArticleID == articleID && sameActor(like, key) {
			return &like, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (l *LikeStore) Insert(_ context.Context, like *model.Like) error {
	key, err := identity.FromLike(like)
	if err != nil {
		return err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	for _, existing := range l.s.likes {
		if existing.ArticleID == like.ArticleID && sameActor(existing, key) {
			return repository.ErrDuplicate
		}
	}
	if like.ID == 0 {
		like.ID = l.s.nextID()
	}
	like.CreatedAt = l.s.stamp(like.CreatedAt)
	stored := *like
	stored.Article = model.Article{}
	l.s.likes[like.ID] = stored
	return nil
}

func (l *LikeStore) Delete(_ context.Context, like *model.Like) (bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if _, ok := l.s.likes[like.ID]; !ok {
		return false, nil
	}
	delete(l.s.likes, like.ID)
	return true, nil
}

func (l *LikeStore) CountByArticle(_ context.Context, articleID int64) (int64, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	var n int64
	for _, like := range l.s.likes {
		if like.ArticleID == articleID {
			n++
		}
	}
	return n, nil
}
