// Package safe_close coordinates graceful shutdown of long running workers
// Package safe_close 协调后台任务的优雅退出
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to attached workers and waits for them
// SafeClose 向所有挂载的任务广播关闭信号并等待其结束
type SafeClose struct {
	closeSignal chan struct{}
	once        sync.Once
	wg          sync.WaitGroup

	mu  sync.Mutex
	err error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeSignal: make(chan struct{})}
}

// Attach runs fn in a goroutine. fn must call done when it has finished.
// Attach 在协程中运行 fn，fn 结束时必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() { once.Do(s.wg.Done) }
	go fn(done, s.closeSignal)
}

// SendCloseSignal closes the signal channel; the first non nil err is kept
// SendCloseSignal 发送关闭信号，保留第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	if err != nil {
		s.mu.Lock()
		if s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
	}
	s.once.Do(func() { close(s.closeSignal) })
}

// CloseSignal returns the channel closed by SendCloseSignal
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed blocks until every attached worker called done
// WaitClosed 阻塞直到所有任务调用 done
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
