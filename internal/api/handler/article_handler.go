package handler

import (
	"discuss-go/internal/api/dto"
	"discuss-go/internal/api/middleware"
	"discuss-go/internal/api/response"
	"discuss-go/internal/service"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleService *service.ArticleService
}

func NewArticleHandler(articleService *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// GetDetail 文章详情
// @Summary 获取文章详情
// @Description 返回文章及当前访客是否已点赞，同时累计浏览数
// @Tags 文章
// @Produce json
// @Param id path int true "文章ID"
// @Success 200 {object} response.Response{data=dto.ArticleInfo} "获取成功"
// @Failure 404 {object} response.ErrorResponse "文章不存在"
// @Router /articles/{id} [get]
func (h *ArticleHandler) GetDetail(c *gin.Context) {
	articleID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的文章ID")
		return
	}

	info, err := h.articleService.Get(c.Request.Context(), articleID, middleware.CurrentIdentity(c), c.ClientIP())
	if err != nil {
		handleServiceError(c, "Get article", err)
		return
	}

	response.OK(c, "获取文章详情成功", info)
}

// List 文章列表
// @Summary 文章列表
// @Tags 文章
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=dto.ArticleListData} "获取成功"
// @Router /articles [get]
func (h *ArticleHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	data, err := h.articleService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		handleServiceError(c, "List articles", err)
		return
	}

	response.OK(c, "获取文章列表成功", data)
}

// Create 发表文章
// @Summary 发表文章
// @Tags 文章
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ArticleCreateRequest true "文章内容"
// @Success 201 {object} response.Response{data=dto.ArticleInfo} "发表成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 401 {object} response.ErrorResponse "未登录"
// @Router /articles [post]
func (h *ArticleHandler) Create(c *gin.Context) {
	var req dto.ArticleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.articleService.Create(c.Request.Context(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		handleServiceError(c, "Create article", err)
		return
	}

	response.Created(c, "发表文章成功", info)
}

// Delete 删除文章
// @Summary 删除文章
// @Description 删除文章及其全部评论和点赞（管理员）
// @Tags 文章
// @Produce json
// @Security BearerAuth
// @Param id path int true "文章ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 403 {object} response.ErrorResponse "需要管理员权限"
// @Failure 404 {object} response.ErrorResponse "文章不存在"
// @Router /articles/{id} [delete]
func (h *ArticleHandler) Delete(c *gin.Context) {
	articleID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的文章ID")
		return
	}

	if err := h.articleService.Delete(c.Request.Context(), middleware.CurrentIdentity(c), articleID); err != nil {
		handleServiceError(c, "Delete article", err)
		return
	}

	response.OK(c, "删除文章成功", nil)
}
