package task

import (
	"context"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/limiter"

	"go.uber.org/zap"
)

// RateWindowSweepTask drops expired in-memory rate counters once per window.
// Redis counters expire on their own, so the task is only created for the memory driver.
// RateWindowSweepTask 清理过期的内存限流计数
type RateWindowSweepTask struct {
	window limiter.Window
	logger *zap.Logger
}

func (t *RateWindowSweepTask) Name() string {
	return "RateWindowSweep"
}

func (t *RateWindowSweepTask) Schedule() string {
	return "@every " + t.window.Config().Window.String()
}

func (t *RateWindowSweepTask) Timeout() time.Duration {
	return t.window.Config().Window
}

func (t *RateWindowSweepTask) IsStartupRun() bool {
	return false
}

// Run 执行清理
func (t *RateWindowSweepTask) Run(ctx context.Context) error {
	removed, err := t.window.Sweep(ctx, time.Now())
	if err != nil {
		return err
	}
	if removed > 0 {
		t.logger.Debug("task log",
			zap.String("task", t.Name()),
			zap.Int("removed", removed))
	}
	return nil
}

// NewRateWindowSweepTask 创建限流计数清理任务
func NewRateWindowSweepTask(a *app.App) (Task, error) {
	if a.Config().Limiter.Driver == "redis" || a.Window == nil {
		return nil, nil
	}
	return &RateWindowSweepTask{window: a.Window, logger: a.Logger()}, nil
}

func init() {
	Register(NewRateWindowSweepTask)
}
