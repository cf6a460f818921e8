package middleware

import (
	"context"
	"strings"

	"discuss-go/internal/api/response"
	"discuss-go/internal/identity"
	"discuss-go/internal/model"
	"discuss-go/pkg/logger"
	"discuss-go/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextKeyUserID   = "currentUserID"
	ContextKeyIdentity = "currentIdentity"
)

// IdentityResolver 根据 token 中的用户 ID 查出带角色的身份
type IdentityResolver func(ctx context.Context, userID int64) (*identity.Identity, error)

// AuthRequired JWT 认证中间件，要求请求必须携带有效 Token
func AuthRequired(resolve IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "缺少认证令牌")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, "无效或过期的认证令牌")
			c.Abort()
			return
		}

		ident, err := resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.FromContext(c.Request.Context()).Info("Resolve identity failed",
				zap.Int64("user_id", claims.UserID), zap.Error(err))
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}

		setIdentity(c, ident)
		c.Next()
	}
}

// OptionalAuth 有合法 Token 时解析身份，没有或无效时按匿名访客继续
func OptionalAuth(resolve IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.Next()
			return
		}

		ident, err := resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.FromContext(c.Request.Context()).Debug("Optional identity ignored",
				zap.Int64("user_id", claims.UserID), zap.Error(err))
			c.Next()
			return
		}

		setIdentity(c, ident)
		c.Next()
	}
}

// ElevatedRequired 版主或管理员（必须在 AuthRequired 之后使用）
func ElevatedRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).Elevated() {
			response.Forbidden(c, "需要版主或管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired 管理员权限中间件（必须在 AuthRequired 之后使用）
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := CurrentIdentity(c)
		if ident == nil || ident.Role != model.RoleAdmin {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, ident *identity.Identity) {
	c.Set(ContextKeyUserID, ident.ID)
	c.Set(ContextKeyIdentity, ident)

	ctx := logger.WithContext(c.Request.Context(),
		logger.FromContext(c.Request.Context()).With(zap.Int64("user_id", ident.ID)))
	c.Request = c.Request.WithContext(ctx)
}

// CurrentIdentity 当前请求的登录身份，匿名访客返回 nil
func CurrentIdentity(c *gin.Context) *identity.Identity {
	val, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil
	}
	ident, _ := val.(*identity.Identity)
	return ident
}

// GetCurrentUserID 从 Gin Context 中获取当前登录用户 ID
func GetCurrentUserID(c *gin.Context) (int64, bool) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}

// extractToken 从 Authorization 头中提取 Bearer Token
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
