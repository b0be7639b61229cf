// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/dao"
	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/internal/service"
	pkgapp "github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/limiter"
	"github.com/haierkeys/fast-asset-delivery/pkg/linktoken"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	StartTime time.Time

	// Repository 层
	UserRepo     domain.UserRepository
	ProductRepo  domain.ProductRepository
	PurchaseRepo domain.PurchaseRepository

	// Service 层
	UserService     service.UserService
	AccessPolicy    service.AccessPolicy
	DeliveryService service.DeliveryService
	ProductService  service.ProductService
	DownloadStats   *service.DownloadStats

	// 基础设施组件
	TokenManager pkgapp.TokenManager
	LinkCodec    *linktoken.Codec
	Links        *blob.TokenLinks
	Locator      storage.Locator
	Window       limiter.Window

	// 关闭控制
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// Option 容器可选项，主要用于替换外部依赖
type Option func(*App)

// WithLocator 使用指定的存储后端
func WithLocator(l storage.Locator) Option {
	return func(a *App) { a.Locator = l }
}

// WithWindow 使用指定的限流计数器
func WithWindow(w limiter.Window) Option {
	return func(a *App) { a.Window = w }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Dao = dao.New(db, logger)

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Expiry:    cfg.GetTokenExpiry(),
	})

	codec, err := linktoken.NewCodec(cfg.Security.LinkTokenKey)
	if err != nil {
		return nil, err
	}
	a.LinkCodec = codec
	a.Links = blob.NewTokenLinks(codec, cfg.Server.PublicURL)

	if a.Locator == nil {
		a.Locator, err = storage.NewClient(&cfg.Storage,
			storage.WithLogger(logger),
			storage.WithLinkSigner(a.Links),
		)
		if err != nil {
			return nil, fmt.Errorf("storage %s: %w", cfg.Storage.Type, err)
		}
	}

	if a.Window == nil {
		a.Window = newWindow(cfg, logger)
	}

	// 初始化 Repository 层
	a.UserRepo = dao.NewUserRepository(a.Dao)
	a.ProductRepo = dao.NewProductRepository(a.Dao)
	a.PurchaseRepo = dao.NewPurchaseRepository(a.Dao)

	svcConfig := cfg.GetServiceConfig()

	// 初始化 Service 层（依赖注入）
	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, logger, svcConfig)
	a.AccessPolicy = service.NewAccessPolicy(a.PurchaseRepo, svcConfig)
	a.DownloadStats = service.NewDownloadStats(a.PurchaseRepo, logger)
	a.ProductService = service.NewProductService(a.ProductRepo, a.Locator, logger, svcConfig)
	a.DeliveryService = service.NewDeliveryService(service.DeliveryDeps{
		UserService: a.UserService,
		ProductRepo: a.ProductRepo,
		Policy:      a.AccessPolicy,
		Locator:     a.Locator,
		Window:      a.Window,
		Codec:       a.LinkCodec,
		Links:       a.Links,
		Stats:       a.DownloadStats,
	}, logger, svcConfig)

	logger.Info("App container initialized successfully",
		zap.String("storage", cfg.Storage.Type),
		zap.String("limiter", cfg.Limiter.Driver))

	return a, nil
}

// newWindow builds the per-caller delivery counter. A redis that is down at
// startup is only logged: the delivery path lets requests through while the
// limiter errors.
func newWindow(cfg *AppConfig, logger *zap.Logger) limiter.Window {
	wc := cfg.GetWindowConfig()
	if cfg.Limiter.Driver != "redis" {
		return limiter.NewMemoryWindow(wc)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Limiter.Redis.Addr,
		Password: cfg.Limiter.Redis.Password,
		DB:       cfg.Limiter.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis limiter unreachable at startup", zap.String("addr", cfg.Limiter.Redis.Addr), zap.Error(err))
	}
	return limiter.NewRedisWindow(client, cfg.Limiter.Redis.KeyPrefix, wc)
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Name:      Name,
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// Close 释放数据库连接
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：下载统计 -> 限流计数器 -> 数据库
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	a.shutdownOnce.Do(func() {
		a.logger.Info("App container shutting down...")
		close(a.shutdownCh)

		if ctx == nil {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
			defer cancel()
		}

		// 1. 写入最后的下载统计
		if a.DownloadStats != nil {
			if n, err := a.DownloadStats.Flush(ctx); err != nil {
				a.logger.Warn("Download stats flush error", zap.Error(err))
				errs = append(errs, fmt.Errorf("download stats flush: %w", err))
			} else if n > 0 {
				a.logger.Info("Download stats flushed", zap.Int("count", n))
			}
		}

		// 2. 关闭限流计数器
		if a.Window != nil {
			if err := a.Window.Close(); err != nil {
				errs = append(errs, fmt.Errorf("limiter close: %w", err))
			}
		}

		// 3. 关闭数据库连接
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	})

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors", zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}
