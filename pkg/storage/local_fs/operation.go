package local_fs

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (l *LocalFS) root() string {
	return filepath.Join(l.Config.SavePath, l.Config.CustomPath)
}

// path resolves a resource id inside the root; ids of a foreign shape do not exist
func (l *LocalFS) path(resourceID string) (string, error) {
	if !blob.ValidResourceID(resourceID) {
		return "", blob.ErrNotFound
	}
	return filepath.Join(l.root(), resourceID), nil
}

// Store writes content under a generated name. The file only appears once fully written.
// Store 以生成的文件名写入内容，写入完成后才可见
func (l *LocalFS) Store(ctx context.Context, content io.Reader, suggestedName string) (string, error) {
	if err := os.MkdirAll(l.root(), 0754); err != nil {
		return "", errors.Wrap(err, "localfs")
	}

	resourceID := blob.NewResourceID(suggestedName)
	dst := filepath.Join(l.root(), resourceID)

	tmp, err := os.CreateTemp(l.root(), ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "localfs")
	}
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, blob.NewContextReader(ctx, content)); err != nil {
		return "", errors.Wrap(err, "localfs")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "localfs")
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", errors.Wrap(err, "localfs")
	}
	tmp = nil

	l.logger.Debug("localfs stored", zap.String("resource", resourceID))
	return resourceID, nil
}

// RetrieveURL returns a signed link to the download endpoint; no bytes are moved
// RetrieveURL 返回下载接口的签名链接
func (l *LocalFS) RetrieveURL(ctx context.Context, resourceID string, ttl time.Duration) (string, error) {
	p, err := l.path(resourceID)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", blob.ErrNotFound
		}
		return "", errors.Wrap(err, "localfs")
	}
	if l.links == nil {
		return "", errors.New("localfs: link signer not configured")
	}
	u, _, err := l.links.SignLink(resourceID, ttl)
	return u, err
}

// Open opens the stored file for streaming
// Open 打开文件用于流式下载
func (l *LocalFS) Open(ctx context.Context, resourceID string) (*blob.Object, error) {
	p, err := l.path(resourceID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, blob.ErrNotFound
		}
		return nil, errors.Wrap(err, "localfs")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "localfs")
	}
	return &blob.Object{
		Body:        f,
		Name:        resourceID,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: mime.TypeByExtension(filepath.Ext(resourceID)),
	}, nil
}
