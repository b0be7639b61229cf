package cmd

import (
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/fileurl"
	"github.com/haierkeys/fast-asset-delivery/pkg/util"

	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// 默认配置中的占位密钥，首次生成配置文件时替换为随机值
const (
	placeholderAuthTokenKey = "fast-asset-delivery-auth-token"
	placeholderLinkTokenKey = "fast-asset-delivery-link-token"
)

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			path, err := resolveConfig(runEnv.config)
			if err != nil {
				bootstrapLogger.Error("config file auto create error", zap.Error(err))
				return
			}
			runEnv.config = path

			first, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}
			current := &serverHolder{s: first}

			go watchConfig(runEnv, current)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			s := current.get()
			s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			s.sc.SendCloseSignal(nil)

			// Wait for all shutdown handlers to complete (including App Container graceful shutdown)
			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}

// resolveConfig picks the first existing config file, or writes the embedded
// default with freshly generated signing keys
// resolveConfig 查找配置文件，不存在时生成默认配置
func resolveConfig(path string) (string, error) {
	if len(path) > 0 {
		return path, nil
	}
	for _, candidate := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if fileurl.IsExist(candidate) {
			return candidate, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config")
	path = "config/config.yaml"

	content := strings.Replace(configDefault, placeholderAuthTokenKey, util.GetRandomString(32), 1)
	content = strings.Replace(content, placeholderLinkTokenKey, util.GetRandomString(32), 1)

	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "create config dir")
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", errors.Wrap(err, "write default config")
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", path))
	return path, nil
}

// serverHolder guards the server swapped by config reloads
type serverHolder struct {
	mu sync.Mutex
	s  *Server
}

func (h *serverHolder) get() *Server {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.s
}

func (h *serverHolder) set(s *Server) {
	h.mu.Lock()
	h.s = s
	h.mu.Unlock()
}

// watchConfig rebuilds the server whenever the config file is written
// watchConfig 配置文件变更时重建服务
func watchConfig(runEnv *runFlags, current *serverHolder) {
	w := watcher.New()

	// 每个监听周期至多接收 1 个事件
	w.SetMaxEvents(1)
	// 只通知写入事件
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				s := current.get()
				s.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				s.sc.SendCloseSignal(nil)
				if err := s.sc.WaitClosed(); err != nil {
					s.logger.Error("shutdown before reload", zap.Error(err))
				}

				// 重新初始化 server
				next, err := NewServer(runEnv)
				if err != nil {
					bootstrapLogger.Error("service restart err, keeping previous config", zap.Error(err))
					continue
				}
				current.set(next)

			case err := <-w.Error:
				bootstrapLogger.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				bootstrapLogger.Info("config watcher closed")
				return
			}
		}
	}()

	if err := w.Add(runEnv.config); err != nil {
		bootstrapLogger.Error("config watcher file error", zap.Error(err))
		return
	}

	if err := w.Start(5 * time.Second); err != nil {
		bootstrapLogger.Error("config watcher start error", zap.Error(err))
	}
}
