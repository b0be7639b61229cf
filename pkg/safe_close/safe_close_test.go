package safe_close

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeClose_WaitsForWorkers(t *testing.T) {
	sc := NewSafeClose()
	var stopped atomic.Int32

	for i := 0; i < 3; i++ {
		sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			stopped.Add(1)
		})
	}

	first := errors.New("listener failed")
	sc.SendCloseSignal(first)
	sc.SendCloseSignal(errors.New("second"))

	assert.ErrorIs(t, sc.WaitClosed(), first)
	assert.Equal(t, int32(3), stopped.Load())
}

func TestSafeClose_DoneIsIdempotent(t *testing.T) {
	sc := NewSafeClose()
	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		done()
		done()
	})
	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
}
