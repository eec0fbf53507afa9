package scripting

import (
	"errors"
	"fmt"
)

// Errors for scripting operations.
var (
	// ErrStateClosed is returned when operating on a closed engine.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrHookTimeout is returned when a handler runs past its deadline.
	ErrHookTimeout = errors.New("event handler timed out")
)

// HookError wraps a failure raised by an event handler.
type HookError struct {
	// Event is the name of the event being emitted.
	Event string
	// Err is the underlying Lua error.
	Err error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	return fmt.Sprintf("event %q: %v", e.Event, e.Err)
}

// Unwrap returns the underlying error.
func (e *HookError) Unwrap() error {
	return e.Err
}
