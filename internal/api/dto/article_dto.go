package dto

import "time"

// ArticleCreateRequest 创建文章请求
type ArticleCreateRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"required,min=1"`
}

// AuthorBrief 文章中嵌套的作者简要信息
type AuthorBrief struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ArticleInfo 文章详情
type ArticleInfo struct {
	ID           int64        `json:"id"`
	AuthorID     int64        `json:"author_id"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	ViewCount    int64        `json:"view_count"`
	LikeCount    int64        `json:"like_count"`
	CommentCount int64        `json:"comment_count"`
	Liked        bool         `json:"liked"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Author       *AuthorBrief `json:"author,omitempty"`
}

// ArticleListData 文章列表响应数据
type ArticleListData struct {
	Articles   []ArticleInfo `json:"articles"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int64         `json:"total_pages"`
}
