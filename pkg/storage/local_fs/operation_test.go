package local_fs

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/linktoken"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"
)

func newTestClient(t *testing.T) (*LocalFS, *linktoken.Codec, string) {
	t.Helper()
	tempDir := t.TempDir()

	codec, err := linktoken.NewCodec("local-secret")
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	client, err := NewClient(&Config{SavePath: tempDir}, WithLinkSigner(blob.NewTokenLinks(codec, "http://localhost:9000")))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client, codec, tempDir
}

func TestLocalFS_StoreAndOpen(t *testing.T) {
	client, _, tempDir := newTestClient(t)
	ctx := context.Background()

	resourceID, err := client.Store(ctx, strings.NewReader("hello world"), "../../evil name.PDF")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if !blob.ValidResourceID(resourceID) || !strings.HasSuffix(resourceID, ".pdf") {
		t.Fatalf("unexpected resource id %q", resourceID)
	}

	// 文件必须落在根目录下
	if _, err := os.Stat(filepath.Join(tempDir, resourceID)); err != nil {
		t.Fatalf("File not found under root: %v", err)
	}

	obj, err := client.Open(ctx, resourceID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer obj.Body.Close()

	data, _ := io.ReadAll(obj.Body)
	if string(data) != "hello world" {
		t.Errorf("Content mismatch: got %q", string(data))
	}
	if obj.Size != int64(len("hello world")) {
		t.Errorf("Size mismatch: got %d", obj.Size)
	}
	if obj.ContentType != "application/pdf" {
		t.Errorf("ContentType mismatch: got %q", obj.ContentType)
	}

	// 不残留临时文件
	entries, _ := os.ReadDir(tempDir)
	if len(entries) != 1 {
		t.Errorf("expected exactly one file in root, got %d", len(entries))
	}
}

func TestLocalFS_RetrieveURL(t *testing.T) {
	client, codec, _ := newTestClient(t)
	ctx := context.Background()

	resourceID, err := client.Store(ctx, strings.NewReader("payload"), "book.epub")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	raw, err := client.RetrieveURL(ctx, resourceID, time.Minute)
	if err != nil {
		t.Fatalf("RetrieveURL failed: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	if u.Path != "/download/"+resourceID {
		t.Errorf("unexpected path %q", u.Path)
	}
	if !codec.VerifyRaw(resourceID, u.Query().Get("token"), u.Query().Get("expires"), time.Now()) {
		t.Errorf("token in %q does not verify", raw)
	}
}

func TestLocalFS_UnknownResource(t *testing.T) {
	client, _, _ := newTestClient(t)
	ctx := context.Background()

	for _, id := range []string{"../etc/passwd", "0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.zip"} {
		if _, err := client.Open(ctx, id); !errors.Is(err, blob.ErrNotFound) {
			t.Errorf("Open(%q): expected ErrNotFound, got %v", id, err)
		}
		if _, err := client.RetrieveURL(ctx, id, time.Minute); !errors.Is(err, blob.ErrNotFound) {
			t.Errorf("RetrieveURL(%q): expected ErrNotFound, got %v", id, err)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestLocalFS_FailedStoreLeavesNothing(t *testing.T) {
	client, _, tempDir := newTestClient(t)

	if _, err := client.Store(context.Background(), failingReader{}, "a.zip"); err == nil {
		t.Fatal("expected error from failing reader")
	}

	entries, _ := os.ReadDir(tempDir)
	if len(entries) != 0 {
		t.Errorf("expected empty root after failed store, got %d entries", len(entries))
	}
}
