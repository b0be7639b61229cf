package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/code"
	pkglogger "github.com/haierkeys/fast-asset-delivery/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件
func RecoveryWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			fields := []zap.Field{
				zap.String(pkglogger.FieldPath, c.Request.URL.Path),
				zap.String(pkglogger.FieldMethod, c.Request.Method),
				zap.String(pkglogger.FieldClientIP, c.ClientIP()),
				zap.String(pkglogger.FieldTraceID, GetTraceIDFromGin(c)),
				zap.String("stack", string(debug.Stack())),
			}
			if err, ok := rec.(error); ok {
				logger.Error("Recovered from panic", append(fields, zap.Error(err))...)
			} else {
				logger.Error("Recovered from unknown panic", append(fields, zap.String("panic_value", fmt.Sprintf("%v", rec)))...)
			}

			// 响应已经开始输出时无法再写 JSON
			if c.Writer.Written() {
				c.Abort()
				return
			}
			app.NewResponse(c).ToAbortResponse(code.ErrorServerInternal)
		}()

		c.Next()
	}
}
