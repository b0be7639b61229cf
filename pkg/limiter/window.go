package limiter

import (
	"context"
	"time"
)

// Default fixed window settings
// 默认固定窗口参数
const (
	DefaultWindowMax       = 10
	DefaultWindowSize      = 60 * time.Second
	DefaultWindowRetention = 5
)

// WindowConfig fixed window counter configuration
// WindowConfig 固定窗口计数配置
type WindowConfig struct {
	Max       int           // Max requests per window // 每个窗口最大请求数
	Window    time.Duration // Window length // 窗口长度
	Retention int           // Windows kept before purge // 清理前保留的窗口数
}

func (c WindowConfig) withDefaults() WindowConfig {
	if c.Max <= 0 {
		c.Max = DefaultWindowMax
	}
	if c.Window <= 0 {
		c.Window = DefaultWindowSize
	}
	if c.Retention <= 0 {
		c.Retention = DefaultWindowRetention
	}
	return c
}

// Decision is the outcome of one counted request
// Decision 单次计数的结果
type Decision struct {
	Allowed    bool
	Count      int64
	Limit      int
	ResetAfter time.Duration
}

// Window counts requests per key inside fixed windows of time.
// Implementations must make the increment-and-compare atomic per key.
// Window 按 key 在固定时间窗口内计数，实现必须保证单 key 的自增比较是原子的
type Window interface {
	// Allow counts one request for key at now
	// Allow 在 now 时刻为 key 计数一次
	Allow(ctx context.Context, key string, now time.Time) (Decision, error)
	// Sweep drops counters older than the retention horizon and returns how many were removed
	// Sweep 清理超过保留期的计数器，返回清理数量
	Sweep(ctx context.Context, now time.Time) (int, error)
	// Config returns the effective configuration
	Config() WindowConfig
	Close() error
}

// bucketOf returns floor(now / window)
func bucketOf(now time.Time, window time.Duration) int64 {
	return now.UnixNano() / int64(window)
}

func resetAfter(now time.Time, window time.Duration, bucket int64) time.Duration {
	return time.Duration((bucket+1)*int64(window) - now.UnixNano())
}
