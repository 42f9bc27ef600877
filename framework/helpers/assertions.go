package helpers

import (
	"time"
)

// PollForSpecificResultValue calls testFn repeatedly at intervals until the expected value is seen or the timeout
// elapses. Returns true if the value was matched, false if timed out.
func PollForSpecificResultValue[V comparable](
	testFn func() V,
	timeout time.Duration,
	interval time.Duration,
	expectedValue V,
) bool {
	if testFn() == expectedValue {
		return true
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case <-deadline.C:
			return false
		case <-ticker.C:
			if testFn() == expectedValue {
				return true
			}
		}
	}
}

// AssertEventually is equivalent to assert.Eventually from stretchr/testify/assert, except that it does not use a
// separate goroutine, so it can be used from an ldtest scope. It calls testFn repeatedly at intervals until it gets
// a true value; if the timeout elapses, the test fails.
func AssertEventually(
	t TestContext,
	testFn func() bool,
	timeout time.Duration,
	interval time.Duration,
	failureMsgFormat string,
	failureMsgArgs ...interface{},
) bool {
	t.Helper()
	if PollForSpecificResultValue(testFn, timeout, interval, true) {
		return true
	}
	t.Errorf(failureMsgFormat, failureMsgArgs...)
	return false
}

// RequireEventually is the same as AssertEventually, but the test exits immediately on failure.
func RequireEventually(
	t TestContext,
	testFn func() bool,
	timeout time.Duration,
	interval time.Duration,
	failureMsgFormat string,
	failureMsgArgs ...interface{},
) {
	t.Helper()
	if !AssertEventually(t, testFn, timeout, interval, failureMsgFormat, failureMsgArgs...) {
		t.FailNow()
	}
}
