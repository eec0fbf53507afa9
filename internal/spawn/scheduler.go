package spawn

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of asynchronous work.
type Task func(ctx context.Context) error

// Scheduler runs tasks concurrently. A failing task is logged and counted;
// it does not disturb the other tasks.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	logger *log.Logger

	mu     sync.Mutex
	active map[uuid.UUID]string
	closed bool

	failed atomic.Uint64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLimit caps the number of tasks running at once. Spawn blocks while
// the limit is reached.
func WithLimit(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.group.SetLimit(n)
		}
	}
}

// NewScheduler creates a scheduler whose tasks are cancelled when ctx is.
func NewScheduler(ctx context.Context, logger *log.Logger, opts ...SchedulerOption) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With("component", "scheduler"),
		active: make(map[uuid.UUID]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spawn starts task under name and returns its id.
func (s *Scheduler) Spawn(name string, task Task) (uuid.UUID, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return uuid.Nil, ErrSchedulerClosed
	}
	id := uuid.New()
	s.active[id] = name
	s.mu.Unlock()

	s.group.Go(func() error {
		defer s.finish(id)
		if err := s.runTask(task); err != nil {
			s.failed.Add(1)
			s.logger.Error("task failed", "task", name, "id", id, "err", err)
		}
		return nil
	})
	return id, nil
}

func (s *Scheduler) runTask(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return task(s.ctx)
}

func (s *Scheduler) finish(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, id)
}

// Active returns the names of running tasks keyed by id.
func (s *Scheduler) Active() map[uuid.UUID]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]string, len(s.active))
	for id, name := range s.active {
		out[id] = name
	}
	return out
}

// Failed returns the number of tasks that returned an error or panicked.
func (s *Scheduler) Failed() uint64 {
	return s.failed.Load()
}

// Wait blocks until every spawned task has returned.
func (s *Scheduler) Wait() {
	_ = s.group.Wait()
}

// Shutdown cancels running tasks, rejects new ones and waits.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.Wait()
}
