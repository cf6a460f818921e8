package repository

import (
	"context"

	"discuss-go/internal/model"

	"gorm.io/gorm"
)

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// GetByID 根据 ID 获取文章
func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	var article model.Article
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// Create 创建文章
func (r *ArticleRepository) Create(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

// List 文章列表（按创建时间倒序）
func (r *ArticleRepository) List(ctx context.Context, offset, limit int) ([]model.Article, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Article{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []model.Article
	err := query.Preload("Author").Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// Delete 删除文章及其评论、点赞
func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Article{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AdjustCounters 按增量调整计数器，结果不会小于 0，返回调整后的文章
func (r *ArticleRepository) AdjustCounters(ctx context.Context, id int64, delta model.CounterDelta) (*model.Article, error) {
	if !delta.IsZero() {
		updates := map[string]interface{}{}
		if delta.Likes != 0 {
			updates["like_count"] = gorm.Expr("GREATEST(like_count + ?, 0)", delta.Likes)
		}
		if delta.Comments != 0 {
			updates["comment_count"] = gorm.Expr("GREATEST(comment_count + ?, 0)", delta.Comments)
		}
		if delta.Views != 0 {
			updates["view_count"] = gorm.Expr("GREATEST(view_count + ?, 0)", delta.Views)
		}
		res := r.db.WithContext(ctx).Model(&model.Article{}).Where("id = ?", id).UpdateColumns(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// SetCounters 用重新统计的结果覆盖点赞数和评论数（对账用）
func (r *ArticleRepository) SetCounters(ctx context.Context, id, likes, comments int64) error {
	return r.db.WithContext(ctx).Model(&model.Article{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"like_count":    likes,
			"comment_count": comments,
		}).Error
}

// ListIDs 按 ID 升序分批取文章 ID，用于全量对账
func (r *ArticleRepository) ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Article{}).
		Where("id > ?", afterID).Order("id ASC").Limit(limit).Pluck("id", &ids).Error
	return ids, err
}
