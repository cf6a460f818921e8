package handler

import (
	"net/http"

	"discuss-go/internal/api/response"
	"discuss-go/internal/service"
	"discuss-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusOf 业务错误分类到 HTTP 状态码
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindConflict:
		return http.StatusConflict
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError 统一输出业务错误；存储失败只返回通用提示，原因写日志
func handleServiceError(c *gin.Context, op string, err error) {
	e := service.AsError(err)
	if e.Kind == service.KindStoreFailure {
		logger.FromContext(c.Request.Context()).Error(op+" failed", zap.Error(err))
	}
	response.Fail(c, statusOf(e.Kind), e.Code, e.Message)
}
