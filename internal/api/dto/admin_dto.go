package dto

import "time"

// AdminCommentQuery 管理后台评论查询参数
type AdminCommentQuery struct {
	Q        string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// AdminCommentInfo 管理后台评论条目
type AdminCommentInfo struct {
	ID           int64               `json:"id"`
	ArticleID    int64               `json:"article_id"`
	ArticleTitle string              `json:"article_title"`
	UserID       int64               `json:"user_id"`
	Username     string              `json:"username"`
	Content      string              `json:"content"`
	ParentID     *int64              `json:"parent_id"`
	CreatedAt    time.Time           `json:"created_at"`
	Highlight    map[string][]string `json:"highlight,omitempty"`
}

// AdminCommentListData 管理后台评论列表
type AdminCommentListData struct {
	Comments   []AdminCommentInfo `json:"comments"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int64              `json:"total_pages"`
}
