package limiter

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// MethodLimiter limits by route path prefix
// MethodLimiter 按路由路径限流
type MethodLimiter struct {
	*Limiter
}

// NewMethodLimiter creates a route limiter
// NewMethodLimiter 创建路由限流器
func NewMethodLimiter() Face {
	l := &Limiter{limiterBuckets: make(map[string]*ratelimit.Bucket)}
	return MethodLimiter{
		Limiter: l,
	}
}

// Key returns the request path without query string
// Key 返回去掉查询参数的请求路径
func (l MethodLimiter) Key(c *gin.Context) string {
	uri := c.Request.RequestURI
	index := strings.Index(uri, "?")
	if index == -1 {
		return uri
	}
	return uri[:index]
}

// GetBucket returns the bucket whose key prefixes the request key
// GetBucket 返回与请求 key 前缀匹配的令牌桶
func (l MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	if bucket, ok := l.limiterBuckets[key]; ok {
		return bucket, true
	}
	for prefix, bucket := range l.limiterBuckets {
		if strings.HasPrefix(key, prefix) {
			return bucket, true
		}
	}
	return nil, false
}

// AddBuckets registers bucket rules; existing keys are kept
// AddBuckets 注册令牌桶规则，已存在的 key 不会被覆盖
func (l MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	for _, rule := range rules {
		if _, ok := l.limiterBuckets[rule.Key]; !ok {
			bucket := ratelimit.NewBucketWithQuantum(
				rule.FillInterval,
				rule.Capacity,
				rule.Quantum,
			)
			l.limiterBuckets[rule.Key] = bucket
		}
	}
	return l
}
