package aliyun_oss

import (
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config Aliyun OSS settings
// Config 阿里云 OSS 配置
type Config struct {
	Endpoint        string        `yaml:"endpoint"`
	BucketName      string        `yaml:"bucket-name"`
	AccessKeyID     string        `yaml:"access-key-id"`
	AccessKeySecret string        `yaml:"access-key-secret"`
	CustomPath      string        `yaml:"custom-path"`
	Timeout         time.Duration `yaml:"-"`
}

type OSS struct {
	Client *oss.Client
	Bucket *oss.Bucket
	Config *Config
	logger *zap.Logger
}

// Option configuration option function type
// Option 配置选项函数类型
type Option func(*OSS)

// WithLogger sets the logger
// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(p *OSS) {
		p.logger = logger
	}
}

// NewClient creates an OSS storage instance bound to the configured bucket
// NewClient 创建绑定到配置存储桶的 OSS 实例
func NewClient(conf *Config, opts ...Option) (*OSS, error) {
	var clientOpts []oss.ClientOption
	if conf.Timeout > 0 {
		sec := int64(conf.Timeout / time.Second)
		if sec < 1 {
			sec = 1
		}
		clientOpts = append(clientOpts, oss.Timeout(sec, sec))
	}

	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "oss")
	}

	bucket, err := client.Bucket(conf.BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "oss")
	}

	p := &OSS{
		Client: client,
		Bucket: bucket,
		Config: conf,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}
