package webdav

import (
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/studio-b12/gowebdav"
	"go.uber.org/zap"
)

// Config WebDAV connection settings
// Config WebDAV 连接信息
type Config struct {
	Endpoint   string        `yaml:"endpoint"`
	Path       string        `yaml:"path"`
	User       string        `yaml:"user"`
	Password   string        `yaml:"password"`
	CustomPath string        `yaml:"custom-path"`
	Timeout    time.Duration `yaml:"-"`
}

// WebDAV keeps files on a WebDAV share and streams them through this service
// WebDAV 文件保存在 WebDAV 服务器，由本服务代理下载
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
	links  blob.LinkSigner
	logger *zap.Logger
}

// Option configuration option function type
// Option 配置选项函数类型
type Option func(*WebDAV)

// WithLogger sets the logger
// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(w *WebDAV) {
		w.logger = logger
	}
}

// WithLinkSigner sets the signer used by RetrieveURL
// WithLinkSigner 设置 RetrieveURL 使用的链接签名器
func WithLinkSigner(links blob.LinkSigner) Option {
	return func(w *WebDAV) {
		w.links = links
	}
}

// NewClient creates a WebDAV backend
// NewClient 创建 WebDAV 存储实例
func NewClient(conf *Config, opts ...Option) (*WebDAV, error) {
	c := gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password)
	if conf.Timeout > 0 {
		c.SetTimeout(conf.Timeout)
	}

	w := &WebDAV{
		Client: c,
		Config: conf,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}
