package fetcher

import (
	"context"
	"sync"

	"karolbroda.com/ticktock/internal/lyrics"
	"karolbroda.com/ticktock/internal/track"
)

// Observer receives the lifecycle of one FetchAsync call: OnStart first,
// then exactly one of OnNext or OnError, unless the task is cancelled.
type Observer interface {
	OnStart()
	OnNext(lines []lyrics.Line)
	OnError(err error)
}

// Callbacks adapts plain functions to Observer. Nil fields are skipped.
type Callbacks struct {
	Start func()
	Next  func(lines []lyrics.Line)
	Error func(err error)
}

func (c Callbacks) OnStart() {
	if c.Start != nil {
		c.Start()
	}
}

func (c Callbacks) OnNext(lines []lyrics.Line) {
	if c.Next != nil {
		c.Next(lines)
	}
}

func (c Callbacks) OnError(err error) {
	if c.Error != nil {
		c.Error(err)
	}
}

// State is where a Task is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateStarted
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarted:
		return "started"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether no further notification can follow.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Task is a handle on one asynchronous fetch.
type Task struct {
	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once
}

func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done is closed once the task is cancelled or its terminal notification
// has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel stops delivery of further notifications. A file write that is
// already under way is not rolled back.
func (t *Task) Cancel() {
	t.finish(StateCancelled)
	t.markDone()
}

func (t *Task) markDone() {
	t.doneOnce.Do(func() { close(t.done) })
}

// finish moves a started task to a terminal state and reports whether
// this call made the transition.
func (t *Task) finish(to State) bool {
	t.mu.Lock()
	moved := !t.state.Terminal()
	if moved {
		t.state = to
	}
	t.mu.Unlock()

	if moved {
		t.cancel()
	}
	return moved
}

// FetchAsync runs Fetch in the background. OnStart is called on the
// calling goroutine before any work begins; the terminal notification is
// delivered through the fetcher's dispatcher.
func (f *Fetcher) FetchAsync(ctx context.Context, song *track.Song, obs Observer) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		state:  StateStarted,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	obs.OnStart()

	go func() {
		lines, err := f.Fetch(ctx, song)
		f.dispatcher.Dispatch(func() {
			defer t.markDone()
			if ctx.Err() != nil {
				t.finish(StateCancelled)
				return
			}
			if err != nil {
				if t.finish(StateFailed) {
					obs.OnError(err)
				}
				return
			}
			if t.finish(StateSucceeded) {
				obs.OnNext(lines)
			}
		})
	}()

	return t
}
