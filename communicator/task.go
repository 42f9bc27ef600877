package communicator

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// TaskState is the lifecycle state of the goroutine running the application. Every state other
// than TaskRunning is terminal.
type TaskState int

const (
	TaskRunning TaskState = iota
	TaskCompleted
	TaskFaulted
	TaskCancelled
)

func (s TaskState) String() string {
	switch s {
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFaulted:
		return "faulted"
	case TaskCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// task tracks the single application run owned by a Communicator. state and fault are written
// once, before done is closed, and are only read after done is closed.
type task struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	done   chan struct{}
	state  TaskState
	fault  error

	lock            sync.Mutex
	faultReported   bool
	cancelRequested bool
}

func newTask(parent context.Context) *task {
	ctx, cancel := context.WithCancelCause(parent)
	return &task{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// finish records the outcome and releases the task context.
func (t *task) finish(state TaskState, fault error) {
	t.state, t.fault = state, fault
	t.cancel(errCancelledByCommunicator)
	close(t.done)
}

func (t *task) isDone() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *task) currentState() TaskState {
	if !t.isDone() {
		return TaskRunning
	}
	return t.state
}

// requestCancel returns true if this was the first cancellation request.
func (t *task) requestCancel() bool {
	t.lock.Lock()
	first := !t.cancelRequested
	t.cancelRequested = true
	t.lock.Unlock()
	t.cancel(errCancelledByCommunicator)
	return first
}

// takeFault returns the application's fault the first time it is called after the task faulted,
// and nil at every other time.
func (t *task) takeFault() error {
	if !t.isDone() || t.state != TaskFaulted {
		return nil
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.faultReported {
		return nil
	}
	t.faultReported = true
	return t.fault
}

// peekFault returns the fault, if any and not yet reported, without consuming it.
func (t *task) peekFault() error {
	if !t.isDone() || t.state != TaskFaulted {
		return nil
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.faultReported {
		return nil
	}
	return t.fault
}

// classify decides the terminal state for an application that returned err.
//
// The cancellation cause is what distinguishes our own cancellation from the parent context
// going away: only the former is swallowed.
func (t *task) classify(err error) (TaskState, error) {
	cause := context.Cause(t.ctx)
	ownCancel := errors.Is(cause, errCancelledByCommunicator)
	switch {
	case ownCancel && (err == nil || errors.Is(err, errCancelledByCommunicator) || errors.Is(err, context.Canceled)):
		return TaskCancelled, nil
	case err == nil:
		return TaskCompleted, nil
	case cause != nil && !ownCancel && (errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, cause)):
		return TaskFaulted, fmt.Errorf("%w: %w", ErrExternallyCancelled, err)
	default:
		return TaskFaulted, err
	}
}
