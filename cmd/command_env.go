package cmd

import (
	"context"
	"time"

	internalApp "github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// commandEnv is the runtime of a one shot admin command
// commandEnv 管理命令的运行环境
type commandEnv struct {
	config *internalApp.AppConfig
	logger *zap.Logger
	app    *internalApp.App
}

// openCommandEnv loads the config named by the -c flag and builds the app container without serving
// openCommandEnv 加载配置并创建应用容器，不启动 HTTP 服务
func openCommandEnv(cmd *cobra.Command) (*commandEnv, error) {
	configPath, _ := cmd.Flags().GetString("config")
	configPath, err := resolveConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg, realpath, err := internalApp.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	// 管理命令只输出到控制台
	lg, err := logger.NewLogger(logger.Config{Level: cfg.Log.Level})
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	lg.Debug("config loaded", zap.String("path", realpath))

	if err := initStorageWithConfig(cfg); err != nil {
		return nil, err
	}

	db, err := initDatabaseWithConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	a, err := internalApp.NewApp(cfg, lg, db)
	if err != nil {
		return nil, err
	}
	return &commandEnv{config: cfg, logger: lg, app: a}, nil
}

func (e *commandEnv) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.app.Shutdown(ctx); err != nil {
		e.logger.Warn("shutdown", zap.Error(err))
	}
	_ = e.logger.Sync()
}
