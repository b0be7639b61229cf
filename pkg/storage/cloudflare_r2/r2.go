package cloudflare_r2

import (
	"fmt"

	"github.com/haierkeys/fast-asset-delivery/pkg/storage/aws_s3"
)

type Config struct {
	AccountID       string `yaml:"account-id"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

// NewClient creates an R2 storage instance through the S3 compatible API
// NewClient 通过 S3 兼容接口创建 R2 存储实例
func NewClient(conf *Config, opts ...aws_s3.Option) (*aws_s3.S3, error) {
	opts = append([]aws_s3.Option{aws_s3.WithName("r2")}, opts...)
	return aws_s3.NewClient(&aws_s3.Config{
		Endpoint:        fmt.Sprintf("https://%s.r2.cloudflarestorage.com", conf.AccountID),
		Region:          "auto",
		BucketName:      conf.BucketName,
		AccessKeyID:     conf.AccessKeyID,
		AccessKeySecret: conf.AccessKeySecret,
		CustomPath:      conf.CustomPath,
	}, opts...)
}
