package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/limiter"
	"github.com/haierkeys/fast-asset-delivery/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingTask struct {
	schedule string
	runs     atomic.Int32
	started  chan struct{}
	fail     bool
}

func (t *countingTask) Name() string           { return "Counting" }
func (t *countingTask) Schedule() string       { return t.schedule }
func (t *countingTask) Timeout() time.Duration { return time.Second }
func (t *countingTask) IsStartupRun() bool     { return true }

func (t *countingTask) Run(context.Context) error {
	if t.runs.Add(1) == 1 {
		close(t.started)
	}
	if t.fail {
		return errors.New("task failed")
	}
	return nil
}

func TestScheduler_StartupRunAndShutdown(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	task := &countingTask{schedule: "@every 1h", started: make(chan struct{}), fail: true}
	require.NoError(t, s.AddTask(task))
	s.Start()

	select {
	case <-task.started:
	case <-time.After(2 * time.Second):
		t.Fatal("startup run did not happen")
	}

	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
	assert.Equal(t, int32(1), task.runs.Load())
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose())
	err := s.AddTask(&countingTask{schedule: "every now and then", started: make(chan struct{})})
	assert.Error(t, err)
}

func TestRateWindowSweepTask(t *testing.T) {
	w := limiter.NewMemoryWindow(limiter.WindowConfig{Max: 10, Window: time.Minute, Retention: 1})
	ctx := context.Background()
	past := time.Now().Add(-10 * time.Minute)
	for _, key := range []string{"uid:1", "uid:2"} {
		_, err := w.Allow(ctx, key, past)
		require.NoError(t, err)
	}

	task := &RateWindowSweepTask{window: w, logger: zap.NewNop()}
	assert.Equal(t, "@every 1m0s", task.Schedule())
	require.NoError(t, task.Run(ctx))
	assert.Equal(t, 0, w.Len())
}
