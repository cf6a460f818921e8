package router

import (
	"discuss-go/internal/api/handler"
	"discuss-go/internal/api/middleware"
	"discuss-go/internal/api/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 路由需要的全部 handler
type Handlers struct {
	Auth    *handler.AuthHandler
	Article *handler.ArticleHandler
	Comment *handler.CommentHandler
	Like    *handler.LikeHandler
	Admin   *handler.AdminHandler
	Health  *handler.HealthHandler
}

// Setup 注册基础路由和所有业务路由
func Setup(r *gin.Engine, h Handlers, resolve middleware.IdentityResolver) {
	authRequired := middleware.AuthRequired(resolve)
	optionalAuth := middleware.OptionalAuth(resolve)

	r.GET("/", h.Health.Root)
	r.GET("/healthz", h.Health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "接口不存在")
	})

	v1 := r.Group("/api/v1")

	// --- 认证模块 ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", authRequired, h.Auth.Me)
	}

	// --- 文章模块 ---
	articles := v1.Group("/articles")
	{
		articles.GET("", h.Article.List)
		articles.GET("/:id", optionalAuth, h.Article.GetDetail)
		articles.POST("", authRequired, h.Article.Create)
		articles.DELETE("/:id", authRequired, middleware.AdminRequired(), h.Article.Delete)
	}

	// --- 评论模块 ---
	comments := v1.Group("/comments")
	{
		comments.GET("", h.Comment.List)
		comments.POST("", authRequired, h.Comment.Create)
		comments.DELETE("/:id", authRequired, middleware.ElevatedRequired(), h.Comment.Delete)
	}

	// --- 点赞模块（匿名访客按 IP 计） ---
	likes := v1.Group("/likes", optionalAuth)
	{
		likes.POST("/:article_id", h.Like.Like)
		likes.DELETE("/:article_id", h.Like.Unlike)
	}

	// --- 管理后台 ---
	admin := v1.Group("/admin", authRequired, middleware.AdminRequired())
	{
		admin.GET("/comments", h.Admin.ListComments)
	}
}
