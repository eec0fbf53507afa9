package termwindow

import (
	"errors"
	"fmt"
)

// Window errors.
var (
	// ErrNoSuchWindow indicates the multiplexer no longer knows the window.
	ErrNoSuchWindow = errors.New("no such window")

	// ErrNoMoreTabs indicates the window has no tabs left.
	ErrNoMoreTabs = errors.New("no more tabs")

	// ErrTabOutOfRange indicates a tab index outside the window's tabs.
	ErrTabOutOfRange = errors.New("tab index out of range")

	// ErrNoRenderState indicates a render surface could not be built.
	ErrNoRenderState = errors.New("no render state")

	// ErrNoConnection indicates the window has no window system connection.
	ErrNoConnection = errors.New("no window system connection")

	// ErrUnknownAction indicates a key assignment names no known action.
	ErrUnknownAction = errors.New("unknown action")
)

// OperationError wraps an error with the window operation that failed.
type OperationError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Err: err}
}
