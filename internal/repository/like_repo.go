package repository

import (
	"context"

	"discuss-go/internal/identity"
	"discuss-go/internal/model"

	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) scope(ctx context.Context, articleID int64, key identity.ActorKey) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Like{}).Where("article_id = ?", articleID)
	if uid, ok := key.AccountID(); ok {
		return q.Where("user_id = ?", uid)
	}
	addr, _ := key.Address()
	return q.Where("ip_address = ? AND user_id IS NULL", addr)
}

// Find 按身份键查询点赞记录，不存在返回 ErrNotFound
func (r *LikeRepository) Find(ctx context.Context, articleID int64, key identity.ActorKey) (*model.Like, error) {
	var like model.Like
	if err := r.scope(ctx, articleID, key).First(&like).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

// Insert 新增点赞记录，唯一约束冲突返回 ErrDuplicate
func (r *LikeRepository) Insert(ctx context.Context, like *model.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Delete 删除点赞记录，返回是否真的删除了一行
func (r *LikeRepository) Delete(ctx context.Context, like *model.Like) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", like.ID).Delete(&model.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountByArticle 统计文章的点赞记录数
func (r *LikeRepository) CountByArticle(ctx context.Context, articleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("article_id = ?", articleID).Count(&count).Error
	return count, err
}
