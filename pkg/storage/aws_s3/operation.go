package aws_s3

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// objectKey joins the custom path prefix and a generated name
func (p *S3) objectKey(name string) string {
	prefix := strings.Trim(p.Config.CustomPath, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Store uploads content to the bucket under a generated key; the key is the resource id
// Store 以生成的 key 上传到存储桶，key 即资源 ID
func (p *S3) Store(ctx context.Context, content io.Reader, suggestedName string) (string, error) {
	name := blob.NewResourceID(suggestedName)
	key := p.objectKey(name)

	input := &transfermanager.UploadObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(key),
		Body:   content,
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := p.TransferManager.UploadObject(ctx, input); err != nil {
		return "", errors.Wrap(err, p.name)
	}

	p.logger.Debug("object stored", zap.String("backend", p.name), zap.String("bucket", p.Config.BucketName), zap.String("resource", key))
	return key, nil
}

// RetrieveURL presigns a GET for the object; the bucket enforces the expiry itself
// RetrieveURL 生成对象的预签名 GET 地址，过期由存储服务自行校验
func (p *S3) RetrieveURL(ctx context.Context, resourceID string, ttl time.Duration) (string, error) {
	if resourceID == "" || strings.Contains(resourceID, "..") {
		return "", blob.ErrNotFound
	}

	req, err := p.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(resourceID),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", errors.Wrap(err, p.name)
	}
	return req.URL, nil
}
