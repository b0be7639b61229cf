package blob

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/linktoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResourceID(t *testing.T) {
	tests := []struct {
		suggested string
		wantExt   string
	}{
		{"report.PDF", ".pdf"},
		{"bundle.tar.gz", ".gz"},
		{"../../etc/passwd", ""},
		{"no-extension", ""},
		{"weird.e x e", ""},
		{"", ""},
	}

	for _, tt := range tests {
		id := NewResourceID(tt.suggested)
		assert.True(t, ValidResourceID(id), "id %q from %q", id, tt.suggested)
		assert.True(t, strings.HasSuffix(id, tt.wantExt), "id %q from %q", id, tt.suggested)
		assert.NotContains(t, id, "/")
	}

	assert.NotEqual(t, NewResourceID("a.zip"), NewResourceID("a.zip"))
}

func TestValidResourceID_RejectsForeignShapes(t *testing.T) {
	for _, id := range []string{
		"",
		"../secret",
		"0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b/../../x",
		"0B7E5C1A-1C2D-4E3F-9A8B-7C6D5E4F3A2B",
		"file.pdf",
	} {
		assert.False(t, ValidResourceID(id), id)
	}
	assert.True(t, ValidResourceID("0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.zip"))
}

func TestContextReader_StopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewContextReader(ctx, strings.NewReader("0123456789"))

	buf := make([]byte, 4)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	cancel()
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, context.Canceled)

	assert.True(t, r.Seekable())
	pos, err := r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}

func TestTokenLinks_SignLink(t *testing.T) {
	codec, err := linktoken.NewCodec("link-secret")
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	links := NewTokenLinks(codec, "https://cdn.example.com/").WithClock(func() time.Time { return now })
	raw, tok, err := links.SignLink("0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.zip", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1772366460), tok.ExpiresAt)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "cdn.example.com", u.Host)
	assert.Equal(t, "/download/0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.zip", u.Path)
	assert.Equal(t, "1772366460", u.Query().Get("expires"))
	assert.True(t, codec.VerifyRaw("0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.zip", u.Query().Get("token"), u.Query().Get("expires"), now))
}
