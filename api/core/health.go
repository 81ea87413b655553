package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/shelf-scanner/storage"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler 根路径健康检查，报告可访问的存储桶数量
type HealthHandler struct {
	provider storage.Provider
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(provider storage.Provider) *HealthHandler {
	return &HealthHandler{provider: provider}
}

// Handle GET /
func (h *HealthHandler) Handle(c *gin.Context) {
	if h.provider == nil {
		c.String(http.StatusServiceUnavailable, "Shelf Scanner API is running, but storage is unreachable: no storage provider configured")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	buckets, err := h.provider.ListBuckets(ctx)
	if err != nil {
		utils.Logger().Warn("Storage health check failed", zap.String("storage", h.provider.Name()), zap.Error(err))
		c.String(http.StatusServiceUnavailable, "Shelf Scanner API is running, but storage is unreachable: %s", err.Error())
		return
	}

	c.String(http.StatusOK, "Shelf Scanner API is running! %d bucket(s) accessible", len(buckets))
}
