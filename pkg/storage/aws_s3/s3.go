package aws_s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config S3 compatible bucket settings
// Config S3 兼容存储桶配置
type Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
	UsePathStyle    bool   `yaml:"use-path-style"`
}

// S3 stores objects in an S3 compatible bucket and hands out presigned URLs
// S3 将对象存入 S3 兼容存储桶并签发预签名地址
type S3 struct {
	S3Client        *s3.Client
	Presigner       *s3.PresignClient
	TransferManager *transfermanager.Client
	Config          *Config
	name            string
	logger          *zap.Logger
}

// Option configuration option function type
// Option 配置选项函数类型
type Option func(*S3)

// WithLogger sets the logger
// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3) {
		s.logger = logger
	}
}

// WithName sets the backend name used in errors and logs
// WithName 设置错误与日志中的后端名称
func WithName(name string) Option {
	return func(s *S3) {
		s.name = name
	}
}

// NewClient creates an S3 storage instance.
// Static credentials are used when configured, otherwise the default AWS chain.
// NewClient 创建 S3 存储实例，未配置密钥时使用默认凭证链
func NewClient(conf *Config, opts ...Option) (*S3, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(conf.Region),
	}
	if conf.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "s3")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.UsePathStyle = conf.UsePathStyle
	})

	s := &S3{
		S3Client:        client,
		Presigner:       s3.NewPresignClient(client),
		TransferManager: transfermanager.New(client),
		Config:          conf,
		name:            "s3",
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}
