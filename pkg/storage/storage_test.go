package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/linktoken"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLinks(t *testing.T) blob.LinkSigner {
	t.Helper()
	codec, err := linktoken.NewCodec("storage-secret")
	require.NoError(t, err)
	return blob.NewTokenLinks(codec, "http://localhost:9000")
}

func TestNewClient_LocalIsStreamer(t *testing.T) {
	client, err := storage.NewClient(&storage.Config{
		Type:     storage.LOCAL,
		SavePath: t.TempDir(),
	}, storage.WithLinkSigner(testLinks(t)))
	require.NoError(t, err)

	streamer, ok := client.(storage.Streamer)
	require.True(t, ok, "local storage must stream")

	id, err := client.Store(context.Background(), strings.NewReader("abc"), "x.zip")
	require.NoError(t, err)

	obj, err := streamer.Open(context.Background(), id)
	require.NoError(t, err)
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestNewClient_RemoteIsNotStreamer(t *testing.T) {
	client, err := storage.NewClient(&storage.Config{
		Type:            storage.MinIO,
		Endpoint:        "http://127.0.0.1:9",
		BucketName:      "assets",
		AccessKeyID:     "minio",
		AccessKeySecret: "minio-secret",
	})
	require.NoError(t, err)

	_, ok := client.(storage.Streamer)
	assert.False(t, ok)
}

func TestNewClient_Invalid(t *testing.T) {
	_, err := storage.NewClient(&storage.Config{Type: "invalid"})
	assert.Error(t, err)

	_, err = storage.NewClient(nil)
	assert.Error(t, err)

	// 自托管后端必须提供签名器
	_, err = storage.NewClient(&storage.Config{Type: storage.LOCAL, SavePath: t.TempDir()})
	assert.Error(t, err)
}

type fakeLocator struct {
	err   error
	block bool
}

func (f *fakeLocator) Store(ctx context.Context, content io.Reader, suggestedName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", err
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.zip", nil
}

func (f *fakeLocator) RetrieveURL(ctx context.Context, resourceID string, ttl time.Duration) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "", f.err
}

func TestGuard_ErrorMapping(t *testing.T) {
	ctx := context.Background()

	g := storage.Guard("fake", &fakeLocator{err: blob.ErrNotFound}, time.Second, nil)
	_, err := g.RetrieveURL(ctx, "id", time.Minute)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, errors.Is(err, storage.ErrUnavailable))

	cause := errors.New("connection refused")
	g = storage.Guard("fake", &fakeLocator{err: cause}, time.Second, nil)
	_, err = g.Store(ctx, strings.NewReader(""), "a.zip")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.ErrorIs(t, err, cause)

	var se *storage.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "fake", se.Backend)
	assert.Equal(t, "store", se.Op)
}

func TestGuard_Timeout(t *testing.T) {
	g := storage.Guard("slow", &fakeLocator{block: true}, 20*time.Millisecond, nil)

	start := time.Now()
	_, err := g.RetrieveURL(context.Background(), "id", time.Minute)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	_, ok := g.(storage.Streamer)
	assert.False(t, ok)
}

// slowReader yields one chunk per delay
type slowReader struct {
	chunks int
	delay  time.Duration
}

func (r *slowReader) Read(p []byte) (int, error) {
	if r.chunks == 0 {
		return 0, io.EOF
	}
	time.Sleep(r.delay)
	r.chunks--
	p[0] = 'x'
	return 1, nil
}

func TestGuard_StoreIdleTimeout(t *testing.T) {
	ctx := context.Background()

	// 总耗时超过超时时间，但持续有数据读取
	g := storage.Guard("slow", &fakeLocator{}, 80*time.Millisecond, nil)
	id, err := g.Store(ctx, &slowReader{chunks: 6, delay: 30 * time.Millisecond}, "a.zip")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	g = storage.Guard("stalled", &fakeLocator{block: true}, 20*time.Millisecond, nil)
	start := time.Now()
	_, err = g.Store(ctx, strings.NewReader("abc"), "a.zip")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

type fakeStreamer struct {
	fakeLocator
	openCtx context.Context
}

func (f *fakeStreamer) Open(ctx context.Context, resourceID string) (*blob.Object, error) {
	f.openCtx = ctx
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &blob.Object{Body: io.NopCloser(strings.NewReader("payload")), Name: resourceID}, nil
}

func TestGuard_OpenLookupTimeout(t *testing.T) {
	g := storage.Guard("slow", &fakeStreamer{fakeLocator: fakeLocator{block: true}}, 20*time.Millisecond, nil)
	streamer, ok := g.(storage.Streamer)
	require.True(t, ok)

	start := time.Now()
	_, err := streamer.Open(context.Background(), "id")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGuard_OpenBodyOutlivesTimeout(t *testing.T) {
	inner := &fakeStreamer{}
	g := storage.Guard("fake", inner, 20*time.Millisecond, nil)
	streamer := g.(storage.Streamer)

	obj, err := streamer.Open(context.Background(), "id")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, inner.openCtx.Err())
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	// 关闭后释放打开时的 context
	require.NoError(t, obj.Body.Close())
	assert.Error(t, inner.openCtx.Err())
}
