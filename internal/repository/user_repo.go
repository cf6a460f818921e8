package repository

import (
	"context"

	"discuss-go/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID 根据 ID 查询用户
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名查询用户
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("user_name = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建用户，用户名重复返回 ErrDuplicate
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DisplayName 查询用户名，用户不存在返回 ErrNotFound
func (r *UserRepository) DisplayName(ctx context.Context, id int64) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).Limit(1).Pluck("user_name", &names).Error
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNotFound
	}
	return names[0], nil
}

// DisplayNames 批量查询用户名，不存在的 ID 不出现在结果中
func (r *UserRepository) DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	res := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var users []model.User
	err := r.db.WithContext(ctx).Select("id", "user_name").
		Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		res[u.ID] = u.UserName
	}
	return res, nil
}
