package dispatch

import (
	"sync"
)

// Dispatcher runs callbacks in the context the caller wants to observe
// them in.
type Dispatcher interface {
	Dispatch(fn func())
}

type immediate struct{}

func (immediate) Dispatch(fn func()) {
	if fn != nil {
		fn()
	}
}

// Immediate runs every callback on the calling goroutine.
var Immediate Dispatcher = immediate{}

// Serial runs callbacks one at a time, in submission order, on a single
// goroutine. It plays the role of a UI main loop.
type Serial struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closed  bool
	stopped chan struct{}
}

func NewSerial() *Serial {
	s := &Serial{stopped: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()
	return s
}

// Dispatch enqueues fn. Callbacks submitted after Close are dropped.
func (s *Serial) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, fn)
	s.cond.Signal()
}

// Close stops accepting work and waits until queued callbacks have run.
func (s *Serial) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cond.Signal()
	}
	s.mu.Unlock()
	<-s.stopped
}

func (s *Serial) loop() {
	defer close(s.stopped)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
	}
}
