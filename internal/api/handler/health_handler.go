package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"discuss-go/internal/config"

	"github.com/gin-gonic/gin"
)

// HealthCheck 单项依赖检查，未启用的依赖直接返回 nil
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Healthz 健康检查接口，任一依赖不可用时返回 503
func (h *HealthHandler) Healthz(c *gin.Context) {
	cfg := config.Get()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := make(gin.H, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status":       status,
		"timestamp":    time.Now().Format(time.RFC3339),
		"service":      cfg.App.Name,
		"version":      cfg.App.Version,
		"mode":         cfg.App.Mode,
		"dependencies": deps,
	})
}

// Root 根路径
func (h *HealthHandler) Root(c *gin.Context) {
	cfg := config.Get()
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s API", cfg.App.Name),
		"project": cfg.App.Name,
		"version": cfg.App.Version,
		"docs":    "/swagger/index.html",
	})
}
