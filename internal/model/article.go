package model

import "time"

// Article 文章模型，评论和点赞都挂在文章上
type Article struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;comment:文章标识" json:"id"`
	AuthorID     int64     `gorm:"not null;index:idx_articles_author_id;comment:作者ID" json:"author_id"`
	Title        string    `gorm:"size:200;not null;comment:标题" json:"title"`
	Content      string    `gorm:"type:text;not null;comment:正文" json:"content"`
	ViewCount    int64     `gorm:"not null;default:0;comment:浏览数" json:"view_count"`
	LikeCount    int64     `gorm:"not null;default:0;comment:点赞数" json:"like_count"`
	CommentCount int64     `gorm:"not null;default:0;comment:评论数" json:"comment_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_articles_created_at;comment:创建时间" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Article) TableName() string {
	return "articles"
}

// CounterDelta 计数器增量，三个字段均可为负
type CounterDelta struct {
	Likes    int64
	Comments int64
	Views    int64
}

// IsZero 增量是否全为 0
func (d CounterDelta) IsZero() bool {
	return d.Likes == 0 && d.Comments == 0 && d.Views == 0
}
