package model

import "time"

// 评论区领域事件类型
const (
	EventCommentCreated = "comment_created"
	EventCommentDeleted = "comment_deleted"
	EventArticleLiked   = "article_liked"
	EventArticleUnliked = "article_unliked"
)

// ThreadEvent 评论区事件消息体，worker 据此同步搜索索引并对账计数器
type ThreadEvent struct {
	Type       string    `json:"type"`
	ArticleID  int64     `json:"article_id"`
	CommentID  int64     `json:"comment_id,omitempty"`
	RemovedIDs []int64   `json:"removed_ids,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
