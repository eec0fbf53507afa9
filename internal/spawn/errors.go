package spawn

import "errors"

// Errors returned by the scheduler and executor.
var (
	// ErrExecutorClosed indicates a closure was posted after Close.
	ErrExecutorClosed = errors.New("executor closed")

	// ErrSchedulerClosed indicates a task was spawned after Shutdown.
	ErrSchedulerClosed = errors.New("scheduler closed")
)
