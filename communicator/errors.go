package communicator

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned by ReceiveOutput when no output arrived within the timeout and the
	// application had not failed.
	ErrTimeout = errors.New("timed out waiting for output from application")

	// ErrClosed is returned by operations attempted after Close.
	ErrClosed = errors.New("communicator is closed")

	// ErrCancelIgnored means the application was cancelled but did not return within the
	// cancellation grace period. Its goroutine is abandoned.
	ErrCancelIgnored = errors.New("application did not exit after being cancelled")

	// ErrExternallyCancelled wraps the error of an application that stopped because the parent
	// context given to New was cancelled, as opposed to being cancelled by the Communicator.
	ErrExternallyCancelled = errors.New("application was cancelled by its parent context")

	// errCancelledByCommunicator is the cancellation cause used for every cancellation the
	// Communicator performs itself, so that it can tell them apart from anything else.
	errCancelledByCommunicator = errors.New("application cancelled by communicator")

	// errExitedWithoutReturning is the fault for an application goroutine that ended through
	// runtime.Goexit, as happens when a test calls t.FailNow from inside the application.
	errExitedWithoutReturning = errors.New("application goroutine exited without returning")
)

// PanicError is the fault stored when the application panics.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("application panicked: %v", e.Value)
}

// Unwrap returns the panic value if it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
