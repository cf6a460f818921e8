package model

import "time"

// Comment 评论节点。ParentID 为空表示顶级评论，否则指向同一文章下的另一条评论
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:评论ID" json:"id"`
	ArticleID int64     `gorm:"not null;index:idx_comments_article_parent_created,priority:1;comment:所属文章ID" json:"article_id"`
	UserID    int64     `gorm:"not null;index:idx_comments_user_id;comment:评论用户ID" json:"user_id"`
	Content   string    `gorm:"type:text;not null;comment:评论内容" json:"content"`
	ParentID  *int64    `gorm:"index:idx_comments_article_parent_created,priority:2;index:idx_comments_parent_id;comment:父评论ID" json:"parent_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_comments_article_parent_created,priority:3;comment:评论时间" json:"created_at"`

	// Preload 时填充，作者被删除时为零值
	User    User    `gorm:"foreignKey:UserID;constraint:-" json:"-"`
	Article Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsTopLevel 是否为顶级评论
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
