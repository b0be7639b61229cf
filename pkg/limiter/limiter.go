// Package limiter provides request throttling: token buckets per route and fixed-window counters per caller
// Package limiter 提供请求限流：按路由的令牌桶与按调用者的固定窗口计数
package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face token bucket limiter interface
// Face 令牌桶限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// Limiter holds the buckets by key
// Limiter 按 key 保存令牌桶
type Limiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}

// BucketRule token bucket rule
// BucketRule 令牌桶规则
type BucketRule struct {
	Key          string        // Bucket key // 键
	FillInterval time.Duration // Interval between refills // 填充间隔
	Capacity     int64         // Bucket capacity // 容量
	Quantum      int64         // Tokens added per interval // 每次填充数量
}
