package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker 依赖探活，key 为组件名
type HealthChecker interface {
	Check(ctx context.Context) map[string]error
}

// Health 健康检查
// @Summary 健康检查（数据库与缓存）
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	if h.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := gin.H{}
	for name, err := range h.health.Check(ctx) {
		if err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}
