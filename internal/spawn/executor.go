// Package spawn runs asynchronous work on behalf of a window and carries
// results back to the window's thread.
//
// An Executor is the window's single mutation queue: every closure posted
// to it runs on the goroutine that drives the executor, one at a time. A
// Scheduler runs cooperative tasks, such as overlay lifecycles, that post
// their effects back through an Executor.
package spawn

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Executor serializes closures onto one goroutine. Posting never blocks,
// so closures may post further closures.
type Executor struct {
	logger *log.Logger

	mu      sync.Mutex
	pending []func()
	closed  bool
	notify  chan struct{}

	executed atomic.Uint64
	panicked atomic.Uint64
}

// NewExecutor creates an executor.
func NewExecutor(logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{
		logger: logger.With("component", "executor"),
		notify: make(chan struct{}, 1),
	}
}

// Post queues fn to run on the executor goroutine.
func (e *Executor) Post(fn func()) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrExecutorClosed
	}
	e.pending = append(e.pending, fn)
	e.mu.Unlock()

	select {
	case e.notify <- struct{}{}:
	default:
	}
	return nil
}

// Ready is signalled whenever closures are waiting. Event loops that
// multiplex several sources select on it and then call RunPending.
func (e *Executor) Ready() <-chan struct{} {
	return e.notify
}

// RunPending runs every queued closure, including ones posted while
// draining, and returns how many ran.
func (e *Executor) RunPending() int {
	n := 0
	for {
		e.mu.Lock()
		batch := e.pending
		e.pending = nil
		e.mu.Unlock()

		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			e.run(fn)
			n++
		}
	}
}

// Run drives the executor until ctx is done or the executor is closed.
func (e *Executor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.notify:
			e.RunPending()
			if e.isClosed() {
				return nil
			}
		}
	}
}

// Close rejects further posts. Closures already queued still run.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	select {
	case e.notify <- struct{}{}:
	default:
	}
}

// Executed returns the number of closures run so far.
func (e *Executor) Executed() uint64 {
	return e.executed.Load()
}

func (e *Executor) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed && len(e.pending) == 0
}

func (e *Executor) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.panicked.Add(1)
			e.logger.Error("closure panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	fn()
	e.executed.Add(1)
}
