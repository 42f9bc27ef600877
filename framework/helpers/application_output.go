package helpers

import (
	"time"
)

// OutputReceiver is anything that can return the next output message of an application under
// test, such as *communicator.Communicator.
type OutputReceiver[M any] interface {
	ReceiveOutput(timeout time.Duration) (M, error)
}

// SilenceChecker can verify that an application produces no output for a while.
type SilenceChecker interface {
	ReceiveNothing(timeout, interval time.Duration) (bool, error)
}

// Waiter can wait for an application to finish and report its error.
type Waiter interface {
	Wait(timeout time.Duration) error
}

// Disposable is something that must be closed at the end of a test, and that reports when its
// background work has really ended.
type Disposable interface {
	Close()
	Done() <-chan struct{}
}

// RequireOutput returns the next output message, or fails the test and terminates it
// immediately if there was an error or a timeout.
func RequireOutput[M any](t TestContext, r OutputReceiver[M], timeout time.Duration) M {
	t.Helper()
	message, err := r.ReceiveOutput(timeout)
	if err != nil {
		t.Errorf("expected output from application, got error: %s", err)
		t.FailNow()
	}
	return message
}

// RequireNoOutput fails the test and terminates it immediately if the application produces any
// output within the timeout, polling at the given interval.
func RequireNoOutput(t TestContext, c SilenceChecker, timeout, interval time.Duration) {
	t.Helper()
	empty, err := c.ReceiveNothing(timeout, interval)
	if err != nil {
		t.Errorf("unexpected error while checking for no output: %s", err)
		t.FailNow()
	}
	if !empty {
		t.Errorf("application produced output within %s when none was expected", timeout)
		t.FailNow()
	}
}

// RequireCompletion fails the test and terminates it immediately if waiting for the application
// reports an error.
func RequireCompletion(t TestContext, w Waiter, timeout time.Duration) {
	t.Helper()
	if err := w.Wait(timeout); err != nil {
		t.Errorf("application failed: %s", err)
		t.FailNow()
	}
}

// RequireFault waits for the application and returns its error, failing the test and
// terminating it immediately if there was none.
func RequireFault(t TestContext, w Waiter, timeout time.Duration) error {
	t.Helper()
	err := w.Wait(timeout)
	if err == nil {
		t.Errorf("expected application to fail, but it did not")
		t.FailNow()
	}
	return err
}

// CloseOnCleanup arranges for d to be closed when the test ends, however it ends, and then
// checks that its background work stops within grace.
func CloseOnCleanup(t interface {
	TestContext
	CleanupContext
}, d Disposable, grace time.Duration) {
	t.Cleanup(func() {
		d.Close()
		if !IsClosedWithin(d.Done(), grace) {
			t.Errorf("application was still running %s after being closed", grace)
		}
	})
}
