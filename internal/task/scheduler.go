package task

import (
	"context"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	Schedule() string              // cron 表达式，如 "@every 30s"
	Timeout() time.Duration        // 单次执行超时
	IsStartupRun() bool            // 是否立即执行一次
}

// cronLogger routes cron's own messages into zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	tasks  []Task
	sc     *safe_close.SafeClose
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	cl := cronLogger{l: logger.Sugar()}
	return &Scheduler{
		logger: logger,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sc: sc,
	}
}

// AddTask 添加任务，表达式无法解析时返回错误
func (s *Scheduler) AddTask(task Task) error {
	if _, err := s.cron.AddFunc(task.Schedule(), func() { s.run(task, "loopRun") }); err != nil {
		return err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Start 启动所有任务，收到关闭信号后等待正在执行的任务结束
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		if task.IsStartupRun() {
			go s.run(task, "startupRun")
		}
	}

	s.cron.Start()

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		<-s.cron.Stop().Done()
		s.logger.Info("tasks stopped", zap.Int("count", len(s.tasks)))
	})
}

func (s *Scheduler) run(task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), task.Timeout())
	defer cancel()

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
		return
	}
	s.logger.Debug("task done",
		zap.String("name", task.Name()),
		zap.String("mode", mode),
		zap.Duration("duration", time.Since(start)))
}
