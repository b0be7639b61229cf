// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/internal/middleware"
	"github.com/haierkeys/fast-asset-delivery/internal/service"
	"github.com/haierkeys/fast-asset-delivery/pkg/code"
	apperrors "github.com/haierkeys/fast-asset-delivery/pkg/errors"
	pkglogger "github.com/haierkeys/fast-asset-delivery/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// codeOf maps a service error onto its response code. Unknown errors are internal.
// codeOf 将服务层错误映射为响应码
func codeOf(err error) *code.Code {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return code.ErrorDownloadRateLimited
	case errors.Is(err, domain.ErrTokenExpiredOrInvalid):
		return code.ErrorDownloadInvalidToken
	case errors.Is(err, domain.ErrUnauthenticated):
		return code.ErrorDownloadUnauthenticated
	case errors.Is(err, domain.ErrForbidden):
		return code.ErrorDownloadForbidden
	case errors.Is(err, domain.ErrResourceNotFound):
		return code.ErrorDownloadNotFound
	case errors.Is(err, domain.ErrStorageUnavailable):
		return code.ErrorStorageUnavailable
	case errors.Is(err, domain.ErrProductNotFound):
		return code.ErrorProductNotFound
	case errors.Is(err, domain.ErrNotProductOwner):
		return code.ErrorProductNotOwner
	case errors.Is(err, domain.ErrUnsafeFileName):
		return code.ErrorFileNameInvalid
	case errors.Is(err, domain.ErrFileTooLarge):
		return code.ErrorFileTooLarge
	default:
		return code.ErrorServerInternal
	}
}

// errorResponse writes err as an AppError with the trace id of the request.
// Only the class message reaches the client; the cause stays in the logs.
// errorResponse 输出错误响应，仅返回错误类别信息
func (h *Handler) errorResponse(c *gin.Context, err error) {
	codeObj := codeOf(err)

	var rl *service.RateLimitedError
	if errors.As(err, &rl) {
		secs := int64((rl.Decision.ResetAfter + time.Second - 1) / time.Second)
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.FormatInt(secs, 10))
	}

	appErr := apperrors.NewAppError(codeObj, err).WithTraceID(middleware.GetTraceIDFromGin(c))
	c.AbortWithStatusJSON(appErr.StatusCode(), appErr)
}

func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String(pkglogger.FieldTraceID, middleware.GetTraceID(ctx)),
	)
}

// isInternal reports whether err is not one of the expected refusal classes
func isInternal(err error) bool {
	return codeOf(err) == code.ErrorServerInternal
}
