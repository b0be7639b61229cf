package webdav

import (
	"context"
	"io"
	"mime"
	"os"
	"path"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
	"go.uber.org/zap"
)

func (w *WebDAV) dir() string {
	return path.Join("/", w.Config.Path, w.Config.CustomPath)
}

func (w *WebDAV) remotePath(resourceID string) (string, error) {
	if !blob.ValidResourceID(resourceID) {
		return "", blob.ErrNotFound
	}
	return path.Join(w.dir(), resourceID), nil
}

func (w *WebDAV) wrap(err error) error {
	if gowebdav.IsErrNotFound(err) {
		return blob.ErrNotFound
	}
	return errors.Wrap(err, "webdav")
}

// Store uploads content under a generated name
// Store 以生成的文件名上传
func (w *WebDAV) Store(ctx context.Context, content io.Reader, suggestedName string) (string, error) {
	if err := w.Client.MkdirAll(w.dir(), 0755); err != nil {
		return "", errors.Wrap(err, "webdav")
	}

	resourceID := blob.NewResourceID(suggestedName)
	p := path.Join(w.dir(), resourceID)

	if err := w.Client.WriteStream(p, blob.NewContextReader(ctx, content), 0644); err != nil {
		_ = w.Client.Remove(p)
		return "", errors.Wrap(err, "webdav")
	}

	w.logger.Debug("webdav stored", zap.String("resource", resourceID))
	return resourceID, nil
}

// RetrieveURL returns a signed link to the download endpoint, which proxies the share
// RetrieveURL 返回由本服务代理的签名下载链接
func (w *WebDAV) RetrieveURL(ctx context.Context, resourceID string, ttl time.Duration) (string, error) {
	p, err := w.remotePath(resourceID)
	if err != nil {
		return "", err
	}
	if _, err := w.Client.Stat(p); err != nil {
		return "", w.wrap(err)
	}
	if w.links == nil {
		return "", errors.New("webdav: link signer not configured")
	}
	u, _, err := w.links.SignLink(resourceID, ttl)
	return u, err
}

// Open streams the remote file
// Open 以流方式读取远程文件
func (w *WebDAV) Open(ctx context.Context, resourceID string) (*blob.Object, error) {
	p, err := w.remotePath(resourceID)
	if err != nil {
		return nil, err
	}

	var info os.FileInfo
	if info, err = w.Client.Stat(p); err != nil {
		return nil, w.wrap(err)
	}

	body, err := w.Client.ReadStream(p)
	if err != nil {
		return nil, w.wrap(err)
	}

	return &blob.Object{
		Body:        body,
		Name:        resourceID,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: mime.TypeByExtension(path.Ext(resourceID)),
	}, nil
}
