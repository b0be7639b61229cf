package middleware

import (
	"github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/code"
	"github.com/haierkeys/fast-asset-delivery/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter applies the route token buckets
// RateLimiter 按路由令牌桶限流
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.Key(c)
		if bucket, ok := l.GetBucket(key); ok {
			if bucket.TakeAvailable(1) == 0 {
				c.Header("Retry-After", "1")
				app.NewResponse(c).ToAbortResponse(code.ErrorTooManyRequests)
				return
			}
		}

		c.Next()
	}
}
