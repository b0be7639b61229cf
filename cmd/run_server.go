package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	internalApp "github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/internal/dao"
	"github.com/haierkeys/fast-asset-delivery/internal/routers"
	"github.com/haierkeys/fast-asset-delivery/internal/task"
	"github.com/haierkeys/fast-asset-delivery/internal/upgrade"
	"github.com/haierkeys/fast-asset-delivery/pkg/code"
	"github.com/haierkeys/fast-asset-delivery/pkg/logger"
	"github.com/haierkeys/fast-asset-delivery/pkg/safe_close"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	validatorV10 "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultSecretKeys defines the list of default secret keys to be detected
// defaultSecretKeys 定义需要检测的默认密钥列表
var defaultSecretKeys = []string{
	placeholderAuthTokenKey,
	placeholderLinkTokenKey,
	"",
}

// DefaultShutdownTimeout default shutdown timeout duration
// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

type Server struct {
	logger            *zap.Logger             // Logger // 日志对象
	config            *internalApp.AppConfig  // App configuration (injected dependency) // 应用配置（注入的依赖）
	db                *gorm.DB                // Database connection // 数据库连接
	ut                *ut.UniversalTranslator // Translator // 翻译器
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App // App Container
}

// checkSecurityConfigWithConfig warns when a signing key still holds a shipped default
// checkSecurityConfigWithConfig 检查安全配置，如果使用默认密钥则输出警告
func checkSecurityConfigWithConfig(cfg *internalApp.AppConfig, lg *zap.Logger) {
	for name, value := range map[string]string{
		"security.auth-token-key": cfg.Security.AuthTokenKey,
		"security.link-token-key": cfg.Security.LinkTokenKey,
	} {
		isDefault := false
		for _, key := range defaultSecretKeys {
			if value == key {
				isDefault = true
				break
			}
		}
		if !isDefault {
			continue
		}

		fmt.Println()
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println("⚠️  SECURITY WARNING: Using default secret key!")
		fmt.Println()
		fmt.Printf("Please modify '%s' in config.yaml\n", name)
		fmt.Println("Generate a secure key with:")
		fmt.Println("  openssl rand -base64 32")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println()

		lg.Warn("Using default secret key, please change it in config.yaml", zap.String("key", name))
	}
}

func NewServer(runEnv *runFlags) (*Server, error) {
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 命令行参数优先于配置文件
	if len(runEnv.port) > 0 {
		if strings.Contains(runEnv.port, ":") {
			appConfig.Server.HttpPort = runEnv.port
		} else {
			appConfig.Server.HttpPort = ":" + runEnv.port
		}
	}
	if len(runEnv.runMode) > 0 {
		appConfig.Server.RunMode = runEnv.runMode
	}

	if len(appConfig.Server.RunMode) > 0 {
		gin.SetMode(appConfig.Server.RunMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	lg, err := logger.NewLogger(appConfig.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}
	s.logger = lg

	// 响应消息语言在启动时确定，请求级别不再修改全局状态
	if err := code.SetGlobalDefaultLang(appConfig.App.Lang); err != nil {
		s.logger.Warn("app.lang", zap.String("lang", appConfig.App.Lang), zap.Error(err))
	}

	checkSecurityConfigWithConfig(appConfig, s.logger)

	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	closer, err := initTracerWithConfig(appConfig, s.logger)
	if err != nil {
		return nil, fmt.Errorf("initTracer: %w", err)
	}

	db, err := initDatabaseWithConfig(appConfig)
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	s.db = db

	app, err := internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app

	// 自动执行数据升级
	if appConfig.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		_, err := upgrade.Execute(ctx, db, s.logger)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("upgrade.Execute: %w", err)
		}
	}

	uni, err := initValidator()
	if err != nil {
		return nil, fmt.Errorf("initValidator: %w", err)
	}
	s.ut = uni

	initScheduler(s)

	banner := `
    ______           __     ___                   __     ____       ___
   / ____/___ ______/ /_   /   |  ______________ / /_   / __ \___  / (_)   _____  _______  __
  / /_  / __ '/ ___/ __/  / /| | / ___/ ___/ _ \/ __/  / / / / _ \/ / / | / / _ \/ ___/ / / /
 / __/ / /_/ (__  ) /_   / ___ |(__  |__  )  __/ /_   / /_/ /  __/ / /| |/ /  __/ /  / /_/ /
/_/    \__,_/____/\__/  /_/  |_/____/____/\___/\__/  /_____/\___/_/_/ |___/\___/_/   \__, /
                                                                                    /____/ `
	s.logger.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))

	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", httpAddr))
		s.httpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewRouter(s.app, s.ut),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.attachHTTPServer("api service", s.httpServer)
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", httpAddr))
		s.privateHttpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewPrivateRouterWithLogger(appConfig.Server.RunMode, s.logger),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.attachHTTPServer("private api service", s.privateHttpServer)
	}

	// Register App Container graceful shutdown (using Shutdown method)
	// 注册 App Container 的优雅关闭（使用 Shutdown 方法）
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal

		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
		} else {
			s.logger.Info("App container shutdown gracefully")
		}

		if closer != nil {
			if err := closer.Close(); err != nil {
				s.logger.Warn("tracer close", zap.Error(err))
			}
		}
		_ = s.logger.Sync()
	})

	return s, nil
}

// attachHTTPServer serves srv until the close signal, then drains it
func (s *Server) attachHTTPServer(name string, srv *http.Server) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			s.logger.Error(name+" err", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// 停止 HTTP 服务器
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}

func initScheduler(s *Server) {
	manager := task.NewManager(s.app, s.sc)

	if err := manager.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
		return
	}

	manager.Start()
}

// jaegerLogger routes jaeger reporter messages into zap
type jaegerLogger struct {
	logger *zap.Logger
}

func (l jaegerLogger) Error(msg string) {
	l.logger.Error("jaeger: " + msg)
}

func (l jaegerLogger) Infof(msg string, args ...interface{}) {
	l.logger.Debug("jaeger: " + fmt.Sprintf(msg, args...))
}

// initTracerWithConfig installs a jaeger tracer as the global opentracing tracer when an agent is configured
// initTracerWithConfig 配置了 jaeger agent 时初始化全局 tracer
func initTracerWithConfig(cfg *internalApp.AppConfig, lg *zap.Logger) (io.Closer, error) {
	if !cfg.Tracer.Enabled || cfg.Tracer.JaegerAgent == "" {
		opentracing.SetGlobalTracer(opentracing.NoopTracer{})
		return nil, nil
	}

	jc := jaegercfg.Configuration{
		ServiceName: "fast-asset-delivery",
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort:  cfg.Tracer.JaegerAgent,
			BufferFlushInterval: time.Second,
		},
	}

	tracer, closer, err := jc.NewTracer(jaegercfg.Logger(jaegerLogger{logger: lg}))
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	lg.Info("jaeger tracer enabled", zap.String("agent", cfg.Tracer.JaegerAgent))
	return closer, nil
}

// initValidator registers en/zh messages on gin's validator and names fields after their form or json tag
// initValidator 初始化验证器，返回 UniversalTranslator
func initValidator() (*ut.UniversalTranslator, error) {
	uni := ut.New(en.New(), en.New(), zh.New())

	validate, ok := binding.Validator.Engine().(*validatorV10.Validate)
	if !ok {
		return uni, nil
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}
	return uni, nil
}

// initDatabaseWithConfig initializes database (using injected config)
// initDatabaseWithConfig 初始化数据库（使用注入的配置）
func initDatabaseWithConfig(cfg *internalApp.AppConfig) (*gorm.DB, error) {
	dbConfig := cfg.Database
	dbConfig.Debug = cfg.Server.RunMode == gin.DebugMode
	return dao.NewDBEngineWithConfig(dbConfig)
}

// initStorageWithConfig creates the directories the configuration points at
// initStorageWithConfig 初始化存储目录（使用注入的配置）
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	dirs := []string{filepath.Dir(cfg.Log.File)}
	if cfg.Database.Type == "sqlite" {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}
	if cfg.Storage.Type == storage.LOCAL {
		dirs = append(dirs, cfg.Storage.SavePath)
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetApp gets App Container
// GetApp 获取 App Container
func (s *Server) GetApp() *internalApp.App {
	return s.app
}

// GetConfig gets app configuration
// GetConfig 获取应用配置
func (s *Server) GetConfig() *internalApp.AppConfig {
	return s.config
}
