package helpers

import (
	"time"

	"github.com/launchdarkly/app-communicator/framework/opt"
)

// TryReceive does a receive with timeout. It returns a Maybe that has a value if one was
// available, or no value if it timed out.
func TryReceive[V any](ch <-chan V, timeout time.Duration) opt.Maybe[V] {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case value, ok := <-ch:
		if !ok {
			return opt.None[V]()
		}
		return opt.Some(value)
	case <-deadline.C:
		return opt.None[V]()
	}
}

// IsClosedWithin returns true if ch is closed before the timeout elapses. Values received from
// ch in the meantime are discarded.
func IsClosedWithin[V any](ch <-chan V, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
		case <-deadline.C:
			return false
		}
	}
}

// RequireValue tries to receive a value and returns it if successful, or causes the test
// to fail and terminate immediately if it timed out.
func RequireValue[V any](t TestContext, ch <-chan V, timeout time.Duration) V {
	t.Helper()
	var empty V
	return RequireValueWithMessage(t, ch, timeout, "timed out waiting for value of type %T", empty)
}

// RequireValueWithMessage is the same as RequireValue, but allows customization of the failure message.
func RequireValueWithMessage[V any](
	t TestContext,
	ch <-chan V,
	timeout time.Duration,
	msgFormat string,
	msgArgs ...interface{},
) V {
	t.Helper()
	maybeValue := TryReceive(ch, timeout)
	if !maybeValue.IsDefined() {
		t.Errorf(msgFormat, msgArgs...)
		t.FailNow()
	}
	return maybeValue.Value()
}

// RequireNoMoreValues tries to receive a value within the given timeout, and causes the test
// to fail and terminate immediately if a value was received.
func RequireNoMoreValues[V any](t TestContext, ch <-chan V, timeout time.Duration) {
	t.Helper()
	maybeValue := TryReceive(ch, timeout)
	if maybeValue.IsDefined() {
		t.Errorf("received unexpected extra value: %s", maybeValue)
		t.FailNow()
	}
}
