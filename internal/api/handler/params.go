package handler

import (
	"strconv"

	"discuss-go/internal/config"

	"github.com/gin-gonic/gin"
)

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// normalizePage 缺省或非法的页码取 1，每页数量取配置的默认值并受上限约束
func normalizePage(page, pageSize int) (int, int) {
	thread := config.GetThread()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = thread.DefaultPageSize
	}
	if pageSize > thread.MaxPageSize {
		pageSize = thread.MaxPageSize
	}
	return page, pageSize
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return normalizePage(page, pageSize)
}
