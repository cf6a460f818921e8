package handler

import (
	"discuss-go/internal/api/dto"
	"discuss-go/internal/api/middleware"
	"discuss-go/internal/api/response"
	"discuss-go/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List 文章评论分页
// @Summary 获取文章评论
// @Description 按顶级评论分页（最新在前），每条顶级评论附带拍平后的全部回复
// @Tags 评论
// @Produce json
// @Param article_id query int true "文章ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=dto.CommentListData} "获取成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 404 {object} response.ErrorResponse "文章不存在"
// @Router /comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	var q dto.CommentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	page, pageSize := normalizePage(q.Page, q.PageSize)

	data, err := h.commentService.ListByArticle(c.Request.Context(), q.ArticleID, page, pageSize)
	if err != nil {
		handleServiceError(c, "List comments", err)
		return
	}

	response.OK(c, "获取评论列表成功", data)
}

// Create 发表评论或回复
// @Summary 发表评论
// @Description 发表顶级评论，或通过 parent_id 回复同一文章下的任意评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CommentCreateRequest true "评论内容"
// @Success 201 {object} response.Response{data=dto.CommentInfo} "发表成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效或父评论不属于该文章"
// @Failure 401 {object} response.ErrorResponse "未登录"
// @Failure 404 {object} response.ErrorResponse "文章或父评论不存在"
// @Router /comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.commentService.Create(c.Request.Context(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		handleServiceError(c, "Create comment", err)
		return
	}

	response.Created(c, "发表评论成功", info)
}

// Delete 删除评论
// @Summary 删除评论
// @Description 删除评论及其全部回复（版主/管理员）
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=dto.CommentDeleteData} "删除成功"
// @Failure 403 {object} response.ErrorResponse "没有权限"
// @Failure 404 {object} response.ErrorResponse "评论不存在"
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	data, err := h.commentService.Delete(c.Request.Context(), middleware.CurrentIdentity(c), commentID)
	if err != nil {
		handleServiceError(c, "Delete comment", err)
		return
	}

	response.OK(c, "删除评论成功", data)
}
