package handler

import (
	"discuss-go/internal/api/middleware"
	"discuss-go/internal/api/response"
	"discuss-go/internal/identity"
	"discuss-go/internal/service"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// Like 点赞
// @Summary 点赞文章
// @Description 登录用户按账号、匿名访客按 IP 去重，每篇文章只能点一次
// @Tags 点赞
// @Produce json
// @Param article_id path int true "文章ID"
// @Success 200 {object} response.Response{data=dto.LikeResult} "点赞成功"
// @Failure 404 {object} response.ErrorResponse "文章不存在"
// @Failure 409 {object} response.ErrorResponse "已经点过赞"
// @Router /likes/{article_id} [post]
func (h *LikeHandler) Like(c *gin.Context) {
	articleID, ok := parseIDParam(c, "article_id")
	if !ok {
		response.BadRequest(c, "无效的文章ID")
		return
	}

	key, ok := actorKey(c)
	if !ok {
		return
	}

	res, err := h.likeService.Like(c.Request.Context(), articleID, key)
	if err != nil {
		handleServiceError(c, "Like", err)
		return
	}

	response.OK(c, "点赞成功", res)
}

// Unlike 取消点赞
// @Summary 取消点赞
// @Tags 点赞
// @Produce json
// @Param article_id path int true "文章ID"
// @Success 200 {object} response.Response{data=dto.LikeResult} "取消成功"
// @Failure 404 {object} response.ErrorResponse "文章不存在"
// @Failure 409 {object} response.ErrorResponse "还没有点赞"
// @Router /likes/{article_id} [delete]
func (h *LikeHandler) Unlike(c *gin.Context) {
	articleID, ok := parseIDParam(c, "article_id")
	if !ok {
		response.BadRequest(c, "无效的文章ID")
		return
	}

	key, ok := actorKey(c)
	if !ok {
		return
	}

	res, err := h.likeService.Unlike(c.Request.Context(), articleID, key)
	if err != nil {
		handleServiceError(c, "Unlike", err)
		return
	}

	response.OK(c, "取消点赞成功", res)
}

// actorKey 登录身份优先，否则用客户端 IP
func actorKey(c *gin.Context) (identity.ActorKey, bool) {
	key, err := identity.Resolve(middleware.CurrentIdentity(c), c.ClientIP())
	if err != nil {
		handleServiceError(c, "Resolve actor", service.ErrActorRequired)
		return identity.ActorKey{}, false
	}
	return key, true
}
