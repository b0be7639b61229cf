package minio

import (
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/aws_s3"
)

// Config MinIO connection settings
// Config MinIO 连接配置
type Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

// NewClient creates a MinIO backend: an S3 client with path-style addressing against the MinIO endpoint
// NewClient 创建 MinIO 存储实例（路径风格寻址的 S3 客户端）
func NewClient(conf *Config, opts ...aws_s3.Option) (*aws_s3.S3, error) {
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	opts = append([]aws_s3.Option{aws_s3.WithName("minio")}, opts...)
	return aws_s3.NewClient(&aws_s3.Config{
		Endpoint:        conf.Endpoint,
		Region:          region,
		BucketName:      conf.BucketName,
		AccessKeyID:     conf.AccessKeyID,
		AccessKeySecret: conf.AccessKeySecret,
		CustomPath:      conf.CustomPath,
		UsePathStyle:    true,
	}, opts...)
}
