package service

import (
	"context"
	"errors"

	"discuss-go/internal/api/dto"
	"discuss-go/internal/config"
	"discuss-go/internal/identity"
	"discuss-go/internal/model"
	"discuss-go/internal/repository"
	"discuss-go/pkg/utils"
)

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register 用户注册，新用户一律为普通角色
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, storeFailure(err)
	}

	user := &model.User{
		UserName: req.Username,
		Password: hashedPassword,
		UserRole: model.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, storeFailure(err)
	}

	return toUserInfo(user), nil
}

// Login 用户登录，返回 token 数据
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenData, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, storeFailure(err)
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredential
	}

	token, err := utils.GenerateToken(user.ID, user.UserName)
	if err != nil {
		return nil, storeFailure(err)
	}

	return &dto.TokenData{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: config.GetJWT().ExpireHours * 3600,
		User:      *toUserInfo(user),
	}, nil
}

// GetCurrentUser 根据用户 ID 获取用户信息
func (s *AuthService) GetCurrentUser(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeFailure(err)
	}
	return toUserInfo(user), nil
}

// Identify 把 token 中的用户 ID 解析成带角色的身份，角色以库里为准
func (s *AuthService) Identify(ctx context.Context, userID int64) (*identity.Identity, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeFailure(err)
	}
	return &identity.Identity{ID: user.ID, Username: user.UserName, Role: user.UserRole}, nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:       user.ID,
		Username: user.UserName,
		UserRole: user.UserRole,
	}
}
