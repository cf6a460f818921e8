package repository

import (
	"context"
	"strings"

	"discuss-go/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Insert(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByIDs 批量获取评论，带作者和文章，顺序不保证
func (r *CommentRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var comments []model.Comment
	err := r.db.WithContext(ctx).Preload("User").Preload("Article").
		Where("id IN ?", ids).Find(&comments).Error
	return comments, err
}

// FindChildren 获取某条评论的直接回复，最新的在前
func (r *CommentRepository) FindChildren(ctx context.Context, articleID, parentID int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("article_id = ? AND parent_id = ?", articleID, parentID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// FindTopLevel 分页获取文章的顶级评论，最新的在前
func (r *CommentRepository) FindTopLevel(ctx context.Context, articleID int64, offset, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("article_id = ? AND parent_id IS NULL", articleID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	return comments, err
}

// CountTopLevel 统计文章的顶级评论数
func (r *CommentRepository) CountTopLevel(ctx context.Context, articleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("article_id = ? AND parent_id IS NULL", articleID).
		Count(&count).Error
	return count, err
}

// CountByArticle 统计文章下所有评论（含回复）
func (r *CommentRepository) CountByArticle(ctx context.Context, articleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("article_id = ?", articleID).Count(&count).Error
	return count, err
}

// 递归取出以 ? 为根的整棵子树。UNION 去重，脏数据成环时也能终止
const deleteSubtreeSQL = `
WITH RECURSIVE subtree AS (
	SELECT id FROM comments WHERE id = ?
	UNION
	SELECT c.id FROM comments c JOIN subtree s ON c.parent_id = s.id
)
DELETE FROM comments WHERE id IN (SELECT id FROM subtree)
RETURNING id`

// DeleteTree 删除评论及其全部回复，返回被删除的评论 ID
func (r *CommentRepository) DeleteTree(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Raw(deleteSubtreeSQL, id).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListAll 管理后台：全站评论，最新的在前
func (r *CommentRepository) ListAll(ctx context.Context, offset, limit int) ([]model.Comment, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&model.Comment{}), offset, limit)
}

// SearchContent 管理后台：按内容模糊搜索（ES 不可用时的兜底）
func (r *CommentRepository) SearchContent(ctx context.Context, keyword string, offset, limit int) ([]model.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where(`content ILIKE ? ESCAPE '\'`, containsPattern(keyword))
	return r.list(query, offset, limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern 关键字按字面匹配，% 和 _ 不作通配符
func containsPattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}

func (r *CommentRepository) list(query *gorm.DB, offset, limit int) ([]model.Comment, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	err := query.Preload("User").Preload("Article").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}
