package limiter

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix key prefix of window counters in redis
// DefaultRedisKeyPrefix redis 中窗口计数器的键前缀
const DefaultRedisKeyPrefix = "fad-rate:"

// incrWindowScript increments the window key and sets its expiry on first use.
// KEYS[1] window key, ARGV[1] expiry in milliseconds.
var incrWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisWindow is a fixed window counter shared by every process using the same redis.
// Expired windows are dropped by redis itself.
// RedisWindow 基于 redis 的固定窗口计数器，多进程共享
type RedisWindow struct {
	cfg       WindowConfig
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisWindow creates a redis backed window counter
// NewRedisWindow 创建 redis 窗口计数器
func NewRedisWindow(client redis.UniversalClient, keyPrefix string, cfg WindowConfig) *RedisWindow {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &RedisWindow{
		cfg:       cfg.withDefaults(),
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (w *RedisWindow) Config() WindowConfig {
	return w.cfg
}

func (w *RedisWindow) key(key string, bucket int64) string {
	return w.keyPrefix + key + ":" + strconv.FormatInt(bucket, 10)
}

// Allow increments (key, floor(now/window)) atomically through a lua script
// Allow 通过 lua 脚本原子自增
func (w *RedisWindow) Allow(ctx context.Context, key string, now time.Time) (Decision, error) {
	bucket := bucketOf(now, w.cfg.Window)
	ttl := w.cfg.Window * time.Duration(w.cfg.Retention)

	n, err := incrWindowScript.Run(ctx, w.client, []string{w.key(key, bucket)}, ttl.Milliseconds()).Int64()
	if err != nil {
		return Decision{}, errors.Wrap(err, "redis window")
	}

	return Decision{
		Allowed:    n <= int64(w.cfg.Max),
		Count:      n,
		Limit:      w.cfg.Max,
		ResetAfter: resetAfter(now, w.cfg.Window, bucket),
	}, nil
}

// Sweep is a no-op: window keys carry their own expiry
// Sweep 无需执行，键自带过期时间
func (w *RedisWindow) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (w *RedisWindow) Close() error {
	return w.client.Close()
}

var _ Window = (*RedisWindow)(nil)
