package task

import (
	"github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	app       *app.App
	scheduler *Scheduler
	logger    *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(appContainer *app.App, sc *safe_close.SafeClose) *Manager {
	return &Manager{
		app:       appContainer,
		scheduler: NewScheduler(appContainer.Logger(), sc),
		logger:    appContainer.Logger(),
	}
}

// RegisterTasks 创建并注册所有已登记的任务
func (m *Manager) RegisterTasks() error {
	for _, factory := range GetFactories() {
		t, err := factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t == nil {
			continue
		}
		if err := m.scheduler.AddTask(t); err != nil {
			m.logger.Warn("failed to schedule task", zap.String("name", t.Name()), zap.Error(err))
			return err
		}
		m.logger.Info("task registered", zap.String("name", t.Name()), zap.String("schedule", t.Schedule()))
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
