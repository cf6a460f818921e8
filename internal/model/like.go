package model

import "time"

// Like 点赞记录。登录用户按 UserID 去重，匿名访客按 IPAddress 去重，两者有且仅有一个
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:点赞记录ID" json:"id"`
	ArticleID int64     `gorm:"not null;uniqueIndex:uq_likes_article_user,priority:1;uniqueIndex:uq_likes_article_ip,priority:1;index:idx_likes_article_id;comment:被点赞文章ID" json:"article_id"`
	UserID    *int64    `gorm:"uniqueIndex:uq_likes_article_user,priority:2;comment:点赞用户ID" json:"user_id"`
	IPAddress *string   `gorm:"size:64;uniqueIndex:uq_likes_article_ip,priority:2;check:chk_likes_actor,(user_id IS NULL) <> (ip_address IS NULL);comment:匿名点赞IP" json:"ip_address"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:点赞时间" json:"created_at"`

	Article Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}
