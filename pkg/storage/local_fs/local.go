package local_fs

import (
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"go.uber.org/zap"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/uploads"`
	CustomPath string `yaml:"custom-path"`
}

// LocalFS stores files on the local disk and serves them through signed links
// LocalFS 本地磁盘存储，通过签名链接提供下载
type LocalFS struct {
	Config *Config
	links  blob.LinkSigner
	logger *zap.Logger
}

// Option configuration option function type
// Option 配置选项函数类型
type Option func(*LocalFS)

// WithLogger sets the logger
// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(l *LocalFS) {
		l.logger = logger
	}
}

// WithLinkSigner sets the signer used by RetrieveURL
// WithLinkSigner 设置 RetrieveURL 使用的链接签名器
func WithLinkSigner(links blob.LinkSigner) Option {
	return func(l *LocalFS) {
		l.links = links
	}
}

func NewClient(conf *Config, opts ...Option) (*LocalFS, error) {
	l := &LocalFS{
		Config: conf,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}
