package middleware

import (
	"time"

	pkglogger "github.com/haierkeys/fast-asset-delivery/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLogWithLogger logs one line per request. The query string is left out
// because link tokens and credentials travel in it.
// AccessLogWithLogger 访问日志，查询参数含令牌，不记录
func AccessLogWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		startTime := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.String(pkglogger.FieldMethod, c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration(pkglogger.FieldDuration, time.Since(startTime)),
			zap.String(pkglogger.FieldClientIP, c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
		}
		if traceID := GetTraceIDFromGin(c); traceID != "" {
			fields = append(fields, zap.String(pkglogger.FieldTraceID, traceID))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		logger.Info(path, fields...)
	}
}
