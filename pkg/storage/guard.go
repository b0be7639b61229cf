package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "storage_operation_duration_seconds",
	Help:    "Duration of storage backend calls.",
	Buckets: prometheus.DefBuckets,
}, []string{"backend", "op", "result"})

// Error a backend failure other than a missing object.
// errors.Is(err, ErrUnavailable) holds for every *Error.
// Error 存储后端故障（对象不存在除外），总是匹配 ErrUnavailable
type Error struct {
	Backend string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrUnavailable }

type guardedLocator struct {
	name    string
	inner   Locator
	timeout time.Duration
	logger  *zap.Logger
}

type guardedStreamer struct {
	*guardedLocator
	streamer Streamer
}

// Guard wraps a locator so that every call is bounded by timeout and
// all failures except ErrNotFound surface as *Error.
// Guard 为存储附加超时，并将除 ErrNotFound 外的错误统一为 *Error
func Guard(name string, inner Locator, timeout time.Duration, logger *zap.Logger) Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &guardedLocator{name: name, inner: inner, timeout: timeout, logger: logger}
	if s, ok := inner.(Streamer); ok {
		return &guardedStreamer{guardedLocator: g, streamer: s}
	}
	return g
}

// Store is bounded by an idle timeout: the deadline moves forward while content is being read,
// so large uploads survive but a stalled backend or client does not.
// Store 使用空闲超时，读取内容时顺延截止时间
func (g *guardedLocator) Store(ctx context.Context, content io.Reader, suggestedName string) (string, error) {
	ctx, wd := newWatchdog(ctx, g.timeout)
	defer wd.cancel()

	start := time.Now()
	id, err := g.inner.Store(ctx, &progressReader{r: content, wd: wd}, suggestedName)
	if wd.stop() && err != nil {
		err = wd.err("store")
	}
	return id, g.finish("store", start, err)
}

func (g *guardedLocator) RetrieveURL(ctx context.Context, resourceID string, ttl time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	u, err := g.inner.RetrieveURL(ctx, resourceID, ttl)
	return u, g.finish("retrieve_url", start, err)
}

// Open bounds the lookup with the timeout. Once the object is open the body
// follows the caller's context until it is closed.
// Open 仅对打开操作限时，之后读取跟随调用方的 context
func (g *guardedStreamer) Open(ctx context.Context, resourceID string) (*blob.Object, error) {
	openCtx, wd := newWatchdog(ctx, g.timeout)

	start := time.Now()
	obj, err := g.streamer.Open(openCtx, resourceID)
	if wd.stop() {
		if err == nil {
			_ = obj.Body.Close()
		}
		err = wd.err("open")
	}
	if err = g.finish("open", start, err); err != nil {
		wd.cancel()
		return nil, err
	}
	obj.Body = blob.NewContextReadCloser(ctx, &cancelOnClose{ReadCloser: obj.Body, cancel: wd.cancel})
	return obj, nil
}

// watchdog cancels its context when the timer fires before stop
type watchdog struct {
	timeout time.Duration
	cancel  context.CancelFunc
	timer   *time.Timer
	fired   atomic.Bool
}

func newWatchdog(parent context.Context, timeout time.Duration) (context.Context, *watchdog) {
	ctx, cancel := context.WithCancel(parent)
	wd := &watchdog{timeout: timeout, cancel: cancel}
	wd.timer = time.AfterFunc(timeout, func() {
		wd.fired.Store(true)
		cancel()
	})
	return ctx, wd
}

// touch pushes the deadline back by a full timeout
func (wd *watchdog) touch() {
	if !wd.fired.Load() {
		wd.timer.Reset(wd.timeout)
	}
}

// stop disarms the timer and reports whether it had already fired
func (wd *watchdog) stop() bool {
	wd.timer.Stop()
	return wd.fired.Load()
}

func (wd *watchdog) err(op string) error {
	return fmt.Errorf("%s: no progress within %s: %w", op, wd.timeout, context.DeadlineExceeded)
}

type progressReader struct {
	r  io.Reader
	wd *watchdog
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.wd.touch()
	}
	return n, err
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func (g *guardedLocator) finish(op string, start time.Time, err error) error {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	default:
		result = "error"
		g.logger.Warn("storage backend failure",
			zap.String("backend", g.name),
			zap.String("op", op),
			zap.Error(err))
		err = &Error{Backend: g.name, Op: op, Err: err}
	}
	operationDuration.WithLabelValues(g.name, op, result).Observe(time.Since(start).Seconds())
	return err
}
