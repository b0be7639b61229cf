package blob

import (
	"context"
	"errors"
	"io"
)

var errNotSeekable = errors.New("blob: reader is not seekable")

// ContextReader stops reading once ctx is done.
// Seek is forwarded when the underlying reader supports it.
// ContextReader 在 ctx 结束后停止读取
type ContextReader struct {
	ctx context.Context
	r   io.Reader
}

// NewContextReader wraps r so reads abort when ctx is cancelled
// NewContextReader 包装 r，ctx 取消后读取中止
func NewContextReader(ctx context.Context, r io.Reader) *ContextReader {
	return &ContextReader{ctx: ctx, r: r}
}

func (c *ContextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Seek implements io.Seeker when the wrapped reader does
func (c *ContextReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := c.r.(io.Seeker)
	if !ok {
		return 0, errNotSeekable
	}
	return s.Seek(offset, whence)
}

// Seekable reports whether Seek can be used
func (c *ContextReader) Seekable() bool {
	_, ok := c.r.(io.Seeker)
	return ok
}

// ContextReadCloser is a ContextReader that closes the wrapped body
type ContextReadCloser struct {
	*ContextReader
	closer io.Closer
}

// NewContextReadCloser wraps rc like NewContextReader and keeps its Close
func NewContextReadCloser(ctx context.Context, rc io.ReadCloser) *ContextReadCloser {
	return &ContextReadCloser{ContextReader: NewContextReader(ctx, rc), closer: rc}
}

func (c *ContextReadCloser) Close() error {
	return c.closer.Close()
}
