package communicator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/launchdarkly/app-communicator/framework"
	"github.com/launchdarkly/app-communicator/framework/helpers"
)

// Communicator drives a single application instance for a single scope. It is not reusable:
// once the application has finished, a new Communicator is needed to run it again.
//
// The methods are meant to be called from one goroutine (the test), while the application runs
// on its own goroutine. Close must be called when the test is done with it, normally with defer
// or a test cleanup function.
type Communicator[S, M any] struct {
	scope  S
	input  *queue[M]
	output *queue[M]
	task   *task
	config config
	closed atomic.Bool
}

// New creates an application instance for scope and starts running it. It does not wait for
// the application to do anything.
//
// If factory fails, its error is returned and nothing is started. ctx is the parent of the
// context passed to the application; if it is cancelled, the application's exit is reported as
// a fault wrapping ErrExternallyCancelled.
func New[S, M any](
	ctx context.Context,
	factory Factory[S, M],
	scope S,
	options ...Option,
) (*Communicator[S, M], error) {
	c := &Communicator[S, M]{
		scope:  scope,
		input:  newQueue[M](),
		output: newQueue[M](),
		config: config{cancelGracePeriod: DefaultCancelGracePeriod},
	}
	if err := helpers.ApplyOptions(&c.config, options...); err != nil {
		return nil, err
	}
	if c.config.logger == nil {
		c.config.logger = framework.NullLogger()
	}

	app, err := factory(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	if app == nil {
		return nil, errors.New("application factory returned no application")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	c.task = newTask(ctx)
	c.config.logger.Println("Starting application")
	go c.run(app)
	return c, nil
}

func (c *Communicator[S, M]) run(app Application[M]) {
	state, fault := TaskFaulted, errExitedWithoutReturning
	defer func() {
		if r := recover(); r != nil {
			state, fault = TaskFaulted, &PanicError{Value: r, Stack: debug.Stack()}
		}
		switch state {
		case TaskFaulted:
			c.config.logger.Printf("Application failed: %s", fault)
		default:
			c.config.logger.Printf("Application %s", state)
		}
		c.task.finish(state, fault)
	}()
	err := app(c.task.ctx, inputSource[M]{c.input}, outputSink[M]{c.output})
	state, fault = c.task.classify(err)
}

// Scope returns the scope the application was created with.
func (c *Communicator[S, M]) Scope() S {
	return c.scope
}

// State returns the current state of the application's goroutine.
func (c *Communicator[S, M]) State() TaskState {
	return c.task.currentState()
}

// Done returns a channel that is closed once the application has reached a terminal state.
func (c *Communicator[S, M]) Done() <-chan struct{} {
	return c.task.done
}

// PendingOutput returns the number of output messages that have not been received yet.
func (c *Communicator[S, M]) PendingOutput() int {
	return c.output.Len()
}

// SendInput makes message available to the application's next Receive. It never blocks.
func (c *Communicator[S, M]) SendInput(message M) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.input.Put(message)
	return nil
}

// ReceiveOutput returns the next message the application sent, waiting for up to timeout
// (DefaultTimeout if timeout is not positive).
//
// If the application has failed, its error is returned instead, as soon as it is known. If the
// timeout expires while the application is still running, the application is cancelled and
// ReceiveOutput waits for it to exit before returning ErrTimeout.
func (c *Communicator[S, M]) ReceiveOutput(timeout time.Duration) (M, error) {
	var empty M
	if c.closed.Load() {
		return empty, ErrClosed
	}
	if err := c.task.takeFault(); err != nil {
		return empty, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	done := c.task.done
	for {
		if message := c.output.TryGet(); message.IsDefined() {
			return message.Value(), nil
		}
		select {
		case <-c.output.ready():
		case <-done:
			// Output sent before the application exited still comes first.
			done = nil
			if message := c.output.TryGet(); message.IsDefined() {
				return message.Value(), nil
			}
			if err := c.task.takeFault(); err != nil {
				return empty, err
			}
		case <-deadline.C:
			return empty, c.receiveTimedOut(timeout)
		}
	}
}

func (c *Communicator[S, M]) receiveTimedOut(timeout time.Duration) error {
	if err := c.task.takeFault(); err != nil {
		return err
	}
	if !c.task.isDone() {
		c.config.logger.Printf("No output within %s, cancelling application", timeout)
		if err := c.cancelAndWait(); err != nil {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		// The application may have failed on its way out instead of acknowledging cancellation.
		if err := c.task.takeFault(); err != nil {
			return err
		}
	}
	return ErrTimeout
}

// ReceiveNothing checks that the application sends no output for the duration of timeout
// (DefaultNothingTimeout if timeout is not positive). With a positive interval, it checks every
// interval and returns false as soon as output is seen; otherwise it sleeps for the whole timeout
// and checks once. It never consumes output.
func (c *Communicator[S, M]) ReceiveNothing(timeout, interval time.Duration) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	if timeout <= 0 {
		timeout = DefaultNothingTimeout
	}
	if interval > 0 {
		for i := int64(0); i < int64(timeout/interval); i++ {
			if c.output.Len() > 0 {
				return false, nil
			}
			time.Sleep(interval)
		}
		time.Sleep(timeout % interval)
	} else {
		time.Sleep(timeout)
	}
	return c.output.Len() == 0, nil
}

// Wait waits for up to timeout (DefaultTimeout if timeout is not positive) for the application
// to finish, and returns its error if it failed. If the timeout expires, the application is
// cancelled and Wait waits for it to exit; that is not an error.
func (c *Communicator[S, M]) Wait(timeout time.Duration) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case <-c.task.done:
	case <-deadline.C:
		c.config.logger.Printf("Application still running after %s, cancelling it", timeout)
		if err := c.cancelAndWait(); err != nil {
			return err
		}
	}
	return c.task.takeFault()
}

// Stop cancels the application if it is still running, without waiting for it to exit. If it
// has already finished and reportFaults is true, its error is returned if that has not been
// reported yet; with reportFaults false, the error is left for a later call.
func (c *Communicator[S, M]) Stop(reportFaults bool) error {
	if !c.task.isDone() {
		if c.task.requestCancel() {
			c.config.logger.Println("Cancelling application")
		}
		return nil
	}
	if reportFaults {
		return c.task.takeFault()
	}
	return nil
}

// Close stops the application, without waiting for it or reporting its errors, and makes all
// further operations fail with ErrClosed. It is safe to call more than once, and whether or not
// the application or its parent context is still alive.
func (c *Communicator[S, M]) Close() {
	if c.closed.Swap(true) {
		return
	}
	_ = c.Stop(false)
	if err := c.task.peekFault(); err != nil {
		c.config.logger.Printf("Closing with unreported application error: %s", err)
	}
}

func (c *Communicator[S, M]) cancelAndWait() error {
	c.task.requestCancel()
	grace := time.NewTimer(c.config.cancelGracePeriod)
	defer grace.Stop()
	select {
	case <-c.task.done:
		return nil
	case <-grace.C:
		c.config.logger.Printf("Application did not exit within %s of being cancelled", c.config.cancelGracePeriod)
		return ErrCancelIgnored
	}
}
