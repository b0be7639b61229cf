// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/internal/dto"
	pkgapp "github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/code"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// Check 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态，包括数据库连接
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.HealthResponse}
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	cfg := h.App.Config()
	response := dto.HealthResponse{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.App.StartTime).Seconds(),
		Database: "connected",
		Storage:  cfg.Storage.Type,
		Limiter:  cfg.Limiter.Driver,
	}

	sqlDB, err := h.App.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		response.Status = "unhealthy"
		response.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.ErrorDBQuery.Clone().WithData(response))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.Clone().WithData(response))
}
