package handler

import (
	"discuss-go/internal/api/dto"
	"discuss-go/internal/api/response"
	"discuss-go/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	searchService *service.SearchService
}

func NewAdminHandler(searchService *service.SearchService) *AdminHandler {
	return &AdminHandler{searchService: searchService}
}

// ListComments 管理后台评论列表
// @Summary 全站评论列表/检索
// @Description 不带 q 时按时间倒序列出全站评论；带 q 时全文检索（ES 不可用时降级到数据库）
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param q query string false "关键字"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=dto.AdminCommentListData} "获取成功"
// @Failure 403 {object} response.ErrorResponse "需要管理员权限"
// @Router /admin/comments [get]
func (h *AdminHandler) ListComments(c *gin.Context) {
	var req dto.AdminCommentQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	req.Page, req.PageSize = normalizePage(req.Page, req.PageSize)

	data, err := h.searchService.SearchComments(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, "Search comments", err)
		return
	}

	response.OK(c, "获取评论列表成功", data)
}
