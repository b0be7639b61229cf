package task

import (
	"context"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/internal/service"

	"go.uber.org/zap"
)

// DownloadStatsFlushTask 定时写入下载统计
type DownloadStatsFlushTask struct {
	stats    *service.DownloadStats
	interval time.Duration
	logger   *zap.Logger
}

func (t *DownloadStatsFlushTask) Name() string {
	return "DownloadStatsFlush"
}

func (t *DownloadStatsFlushTask) Schedule() string {
	return "@every " + t.interval.String()
}

func (t *DownloadStatsFlushTask) Timeout() time.Duration {
	return t.interval
}

func (t *DownloadStatsFlushTask) IsStartupRun() bool {
	return false
}

// Run 执行写入
func (t *DownloadStatsFlushTask) Run(ctx context.Context) error {
	n, err := t.stats.Flush(ctx)
	if n > 0 {
		t.logger.Info("task log",
			zap.String("task", t.Name()),
			zap.Int("flushed", n))
	}
	return err
}

// NewDownloadStatsFlushTask 创建下载统计写入任务
func NewDownloadStatsFlushTask(a *app.App) (Task, error) {
	if a.DownloadStats == nil {
		return nil, nil
	}
	return &DownloadStatsFlushTask{
		stats:    a.DownloadStats,
		interval: a.Config().GetStatsFlushInterval(),
		logger:   a.Logger(),
	}, nil
}

func init() {
	Register(NewDownloadStatsFlushTask)
}
