package dto

import "time"

// CommentCreateRequest 发表评论请求
type CommentCreateRequest struct {
	ArticleID int64  `json:"article_id" binding:"required,min=1"`
	Content   string `json:"content" binding:"required,min=1,max=2000"`
	ParentID  *int64 `json:"parent_id" binding:"omitempty,min=1"`
}

// CommentListQuery 评论分页查询参数
type CommentListQuery struct {
	ArticleID int64 `form:"article_id" binding:"required,min=1"`
	Page      int   `form:"page"`
	PageSize  int   `form:"page_size"`
}

// ReplyInfo 拍平后的一条回复。ReplyToUsername 仅在回复的是另一条回复时有值
type ReplyInfo struct {
	ID              int64     `json:"id"`
	ArticleID       int64     `json:"article_id"`
	UserID          int64     `json:"user_id"`
	Username        string    `json:"username"`
	Content         string    `json:"content"`
	ParentID        int64     `json:"parent_id"`
	ReplyToUsername *string   `json:"reply_to_username,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CommentInfo 顶级评论，附带整棵拍平的回复列表
type CommentInfo struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`

	// 仅发表回复时返回，规则同 ReplyInfo
	ReplyToUsername  *string     `json:"reply_to_username,omitempty"`
	Replies          []ReplyInfo `json:"replies"`
	RepliesCount     int         `json:"replies_count"`
	RepliesTruncated bool        `json:"replies_truncated,omitempty"`
}

// CommentListData 评论列表数据
type CommentListData struct {
	Comments   []CommentInfo `json:"comments"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int64         `json:"total_pages"`
}

// CommentDeleteData 删除评论结果
type CommentDeleteData struct {
	ID        int64 `json:"id"`
	ArticleID int64 `json:"article_id"`
	Removed   int64 `json:"removed"`
}
