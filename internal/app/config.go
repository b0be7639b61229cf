// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/dao"
	"github.com/haierkeys/fast-asset-delivery/internal/service"
	"github.com/haierkeys/fast-asset-delivery/pkg/limiter"
	"github.com/haierkeys/fast-asset-delivery/pkg/logger"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage"
	"github.com/haierkeys/fast-asset-delivery/pkg/util"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string             `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig       `yaml:"server"`
	Log      LogConfig          `yaml:"log"`
	Database dao.DatabaseConfig `yaml:"database"`
	App      AppSettings        `yaml:"app"`
	Security SecurityConfig     `yaml:"security"`
	Storage  storage.Config     `yaml:"storage"`
	Delivery DeliveryConfig     `yaml:"delivery"`
	Limiter  LimiterConfig      `yaml:"limiter"`
	Tracer   TracerConfig       `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到控制台
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式 debug/release
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 监听地址
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒），需覆盖最大文件的下载时间
	WriteTimeout int `yaml:"write-timeout" default:"600"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics / pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
	// PublicURL 对外访问地址，用于拼接下载链接
	PublicURL string `yaml:"public-url" default:"http://localhost:9000"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	// AuthTokenKey 用户凭证签名密钥
	AuthTokenKey string `yaml:"auth-token-key" default:"fast-asset-delivery-auth-token"`
	// TokenExpiry 用户凭证有效期，支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenExpiry string `yaml:"token-expiry" default:"7d"`
	// LinkTokenKey 下载链接签名密钥，必须与 AuthTokenKey 不同
	LinkTokenKey string `yaml:"link-token-key" default:"fast-asset-delivery-link-token"`
}

// AppSettings 应用设置
type AppSettings struct {
	// Lang 响应消息语言 en/zh_cn
	Lang string `yaml:"lang" default:"en"`
	// DefaultContextTimeout 接口上下文超时（秒），不作用于下载
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// UploadMaxSize 上传文件大小上限（字节），默认 500MB
	UploadMaxSize int64 `yaml:"upload-max-size" default:"524288000"`
	// UploadDeniedExts 禁止上传的扩展名，为空时使用内置列表
	UploadDeniedExts []string `yaml:"upload-denied-exts"`
	// ApiRateLimit /api 每秒令牌数，0 表示不限制
	ApiRateLimit int64 `yaml:"api-rate-limit" default:"100"`
}

// DeliveryConfig 下载配置
type DeliveryConfig struct {
	// DefaultTTL 下载链接默认有效期
	DefaultTTL string `yaml:"default-ttl" default:"60s"`
	// MaxTTL 下载链接最长有效期
	MaxTTL string `yaml:"max-ttl" default:"1h"`
	// AccessTTL 重定向到远程存储时签发地址的有效期
	AccessTTL string `yaml:"access-ttl" default:"10s"`
	// DBTimeout 单次数据库调用超时
	DBTimeout string `yaml:"db-timeout" default:"5s"`
	// StatsFlushInterval 下载统计写库间隔
	StatsFlushInterval string `yaml:"stats-flush-interval" default:"30s"`
}

// LimiterConfig 下载限流配置
type LimiterConfig struct {
	// Driver memory/redis
	Driver string `yaml:"driver" default:"memory"`
	// Max 每个窗口内的最大请求数
	Max int `yaml:"max" default:"10"`
	// Window 窗口长度
	Window string `yaml:"window" default:"60s"`
	// Retention 过期计数保留的窗口数
	Retention int         `yaml:"retention" default:"5"`
	Redis     RedisConfig `yaml:"redis"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr      string `yaml:"addr" default:"127.0.0.1:6379"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key-prefix" default:"fad:rl"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
	// JaegerAgent jaeger agent 地址 host:port，为空时不上报
	JaegerAgent string `yaml:"jaeger-agent"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	if err := c.Validate(); err != nil {
		return nil, realpath, err
	}

	return c, realpath, nil
}

// Validate rejects configurations the server cannot run safely with
// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Security.AuthTokenKey == "" || c.Security.LinkTokenKey == "" {
		return errors.New("security.auth-token-key and security.link-token-key are required")
	}
	if c.Security.AuthTokenKey == c.Security.LinkTokenKey {
		return errors.New("security.link-token-key must differ from security.auth-token-key")
	}
	if _, ok := storage.StorageTypeMap[c.Storage.Type]; !ok {
		return errors.Errorf("unsupported storage.type %q", c.Storage.Type)
	}
	switch c.Limiter.Driver {
	case "memory", "redis":
	default:
		return errors.Errorf("unsupported limiter.driver %q", c.Limiter.Driver)
	}
	return nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	if err := os.WriteFile(c.File, data, 0o600); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// LoggerConfig 日志器配置
func (c *AppConfig) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Log.Level, File: c.Log.File, Production: c.Log.Production}
}

// GetTokenExpiry 获取用户凭证有效期
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return util.MustParseDuration(c.Security.TokenExpiry, 7*24*time.Hour)
}

// GetStatsFlushInterval 下载统计写库间隔
func (c *AppConfig) GetStatsFlushInterval() time.Duration {
	return util.MustParseDuration(c.Delivery.StatsFlushInterval, 30*time.Second)
}

// GetServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) GetServiceConfig() *service.ServiceConfig {
	return &service.ServiceConfig{
		Delivery: service.DeliveryServiceConfig{
			DefaultTTL: util.MustParseDuration(c.Delivery.DefaultTTL, 60*time.Second),
			MaxTTL:     util.MustParseDuration(c.Delivery.MaxTTL, time.Hour),
			AccessTTL:  util.MustParseDuration(c.Delivery.AccessTTL, 10*time.Second),
			DBTimeout:  util.MustParseDuration(c.Delivery.DBTimeout, 5*time.Second),
		},
		Upload: service.UploadServiceConfig{
			MaxSize:    c.App.UploadMaxSize,
			DeniedExts: c.App.UploadDeniedExts,
		},
	}
}

// GetWindowConfig 获取限流窗口配置
func (c *AppConfig) GetWindowConfig() limiter.WindowConfig {
	return limiter.WindowConfig{
		Max:       c.Limiter.Max,
		Window:    util.MustParseDuration(c.Limiter.Window, limiter.DefaultWindowSize),
		Retention: c.Limiter.Retention,
	}
}
