package limiter

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type windowEntry struct {
	bucket int64
	count  atomic.Int64
}

// MemoryWindow is a single-process fixed window counter.
// Counters live in a sync.Map; each key is incremented atomically and the map is
// never locked as a whole, so sweeping does not block concurrent increments.
// MemoryWindow 单进程固定窗口计数器
type MemoryWindow struct {
	cfg        WindowConfig
	entries    sync.Map // map[string]*windowEntry
	lastPurged atomic.Int64
}

// NewMemoryWindow creates an in-memory window counter
// NewMemoryWindow 创建内存窗口计数器
func NewMemoryWindow(cfg WindowConfig) *MemoryWindow {
	w := &MemoryWindow{cfg: cfg.withDefaults()}
	w.lastPurged.Store(-1)
	return w
}

func (w *MemoryWindow) Config() WindowConfig {
	return w.cfg
}

// Allow increments the counter of (key, floor(now/window)) and allows while count <= max
// Allow 对 (key, floor(now/window)) 自增，计数不超过上限时放行
func (w *MemoryWindow) Allow(_ context.Context, key string, now time.Time) (Decision, error) {
	bucket := bucketOf(now, w.cfg.Window)
	w.purgeOnce(bucket)

	entryKey := key + ":" + strconv.FormatInt(bucket, 10)
	v, ok := w.entries.Load(entryKey)
	if !ok {
		v, _ = w.entries.LoadOrStore(entryKey, &windowEntry{bucket: bucket})
	}
	n := v.(*windowEntry).count.Add(1)

	return Decision{
		Allowed:    n <= int64(w.cfg.Max),
		Count:      n,
		Limit:      w.cfg.Max,
		ResetAfter: resetAfter(now, w.cfg.Window, bucket),
	}, nil
}

// Sweep removes entries older than the retention horizon
// Sweep 清理超过保留期的计数
func (w *MemoryWindow) Sweep(_ context.Context, now time.Time) (int, error) {
	return w.purge(bucketOf(now, w.cfg.Window)), nil
}

// Len returns the number of live counters
// Len 返回当前计数器数量
func (w *MemoryWindow) Len() int {
	n := 0
	w.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (w *MemoryWindow) Close() error {
	return nil
}

// purgeOnce purges at most once per window so increments stay O(1) amortized
func (w *MemoryWindow) purgeOnce(bucket int64) {
	last := w.lastPurged.Load()
	if last >= bucket || !w.lastPurged.CompareAndSwap(last, bucket) {
		return
	}
	w.purge(bucket)
}

func (w *MemoryWindow) purge(bucket int64) int {
	horizon := bucket - int64(w.cfg.Retention)
	removed := 0
	w.entries.Range(func(k, v any) bool {
		if v.(*windowEntry).bucket < horizon {
			w.entries.Delete(k)
			removed++
		}
		return true
	})
	return removed
}

var _ Window = (*MemoryWindow)(nil)
