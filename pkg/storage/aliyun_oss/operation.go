package aliyun_oss

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (p *OSS) objectKey(name string) string {
	prefix := strings.Trim(p.Config.CustomPath, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Store uploads content under a generated key and returns the key as resource id
// Store 以生成的 key 上传内容并返回 key 作为资源 ID
func (p *OSS) Store(ctx context.Context, content io.Reader, suggestedName string) (string, error) {
	name := blob.NewResourceID(suggestedName)
	key := p.objectKey(name)

	options := []oss.Option{oss.WithContext(ctx)}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		options = append(options, oss.ContentType(ct))
	}

	if err := p.Bucket.PutObject(key, content, options...); err != nil {
		return "", errors.Wrap(err, "oss")
	}

	p.logger.Debug("object stored", zap.String("backend", "oss"), zap.String("bucket", p.Config.BucketName), zap.String("resource", key))
	return key, nil
}

// RetrieveURL signs a GET URL valid for ttl (at least one second)
// RetrieveURL 签发有效期为 ttl 的 GET 地址（最少一秒）
func (p *OSS) RetrieveURL(ctx context.Context, resourceID string, ttl time.Duration) (string, error) {
	if resourceID == "" || strings.Contains(resourceID, "..") {
		return "", blob.ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sec := int64(ttl / time.Second)
	if sec < 1 {
		sec = 1
	}

	signed, err := p.Bucket.SignURL(resourceID, oss.HTTPGet, sec)
	if err != nil {
		return "", errors.Wrap(err, "oss")
	}
	return signed, nil
}
