package storage

import (
	"context"
	"io"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/code"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/aliyun_oss"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/aws_s3"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/cloudflare_r2"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/local_fs"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/minio"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/webdav"

	"go.uber.org/zap"
)

type Type = string

const OSS Type = "oss"
const R2 Type = "r2"
const S3 Type = "s3"
const LOCAL Type = "localfs"
const MinIO Type = "minio"
const WebDAV Type = "webdav"

var StorageTypeMap = map[Type]bool{
	OSS:    true,
	R2:     true,
	S3:     true,
	LOCAL:  true,
	MinIO:  true,
	WebDAV: true,
}

// SelfHostedTypeMap backends whose files are streamed by this service
// SelfHostedTypeMap 由本服务直接输出文件内容的后端
var SelfHostedTypeMap = map[Type]bool{
	LOCAL:  true,
	WebDAV: true,
}

// DefaultTimeout bound on a single backend call
const DefaultTimeout = 15 * time.Second

var (
	ErrNotFound    = blob.ErrNotFound
	ErrUnavailable = blob.ErrUnavailable
)

// Config Unified storage configuration
// Config 统一存储配置
type Config struct {
	Type       Type          `yaml:"type" default:"localfs"`
	CustomPath string        `yaml:"custom-path"`
	Timeout    time.Duration `yaml:"timeout" default:"15s"`

	// Cloud Storage (S3/OSS/MinIO/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/uploads"`
}

// Locator maps an opaque resource id to stored bytes
// Locator 将不透明的资源 ID 映射到存储内容
type Locator interface {
	// Store persists content and returns the new resource id
	Store(ctx context.Context, content io.Reader, suggestedName string) (string, error)
	// RetrieveURL returns a URL that yields the content until ttl elapses
	RetrieveURL(ctx context.Context, resourceID string, ttl time.Duration) (string, error)
}

// Streamer is implemented by locators whose bytes this service serves itself
// Streamer 由本服务直接输出内容的存储实现
type Streamer interface {
	Open(ctx context.Context, resourceID string) (*blob.Object, error)
}

type options struct {
	logger  *zap.Logger
	links   blob.LinkSigner
	timeout time.Duration
}

// Option configuration option function type
// Option 配置选项函数类型
type Option func(*options)

// WithLogger sets the logger
// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLinkSigner sets the link signer for self hosted backends
// WithLinkSigner 设置自托管后端的链接签名器
func WithLinkSigner(links blob.LinkSigner) Option {
	return func(o *options) {
		o.links = links
	}
}

// WithTimeout overrides Config.Timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// NewClient builds the configured backend wrapped with call timeouts and error mapping.
// The result also implements Streamer when the backend is self hosted.
// NewClient 创建配置的存储后端，并附加超时与错误归类；自托管后端同时实现 Streamer
func NewClient(config *Config, opts ...Option) (Locator, error) {
	if config == nil {
		return nil, code.ErrorInvalidStorageType
	}

	o := &options{logger: zap.NewNop(), timeout: config.Timeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}

	if SelfHostedTypeMap[config.Type] && o.links == nil {
		return nil, code.ErrorInvalidStorageType.Clone().WithDetails("self hosted storage requires a link signer")
	}

	var inner Locator
	var err error

	switch config.Type {
	case LOCAL:
		inner, err = local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		}, local_fs.WithLogger(o.logger), local_fs.WithLinkSigner(o.links))
	case WebDAV:
		inner, err = webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			Path:       config.Path,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
			Timeout:    o.timeout,
		}, webdav.WithLogger(o.logger), webdav.WithLinkSigner(o.links))
	case OSS:
		inner, err = aliyun_oss.NewClient(&aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			Timeout:         o.timeout,
		}, aliyun_oss.WithLogger(o.logger))
	case R2:
		inner, err = cloudflare_r2.NewClient(&cloudflare_r2.Config{
			AccountID:       config.AccountID,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}, aws_s3.WithLogger(o.logger))
	case S3:
		inner, err = aws_s3.NewClient(&aws_s3.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}, aws_s3.WithLogger(o.logger))
	case MinIO:
		inner, err = minio.NewClient(&minio.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}, aws_s3.WithLogger(o.logger))
	default:
		return nil, code.ErrorInvalidStorageType
	}
	if err != nil {
		return nil, err
	}

	return Guard(config.Type, inner, o.timeout, o.logger), nil
}
