package helpers

import (
	"errors"
	"fmt"
	"strings"
)

// TestContext is a minimal interface for types like *testing.T and *ldtest.T representing a
// test that can fail. Functions can use this to avoid specific dependencies on those packages.
type TestContext interface {
	Errorf(msgFormat string, msgArgs ...interface{})
	FailNow()
	Helper()
}

// CleanupContext is a test that can schedule work for when it ends, like *testing.T and
// *ldtest.T.
type CleanupContext interface {
	Cleanup(fn func())
}

// TestRecorder is a TestContext that just records what happened, for testing helpers.
type TestRecorder struct {
	Errors     []string
	Terminated bool
	Cleanups   []func()

	// PanicOnTerminate makes FailNow panic with the recorder itself, so that a helper under
	// test really stops executing.
	PanicOnTerminate bool
}

func (t *TestRecorder) Errorf(msgFormat string, msgArgs ...interface{}) {
	t.Errors = append(t.Errors, fmt.Sprintf(msgFormat, msgArgs...))
}

func (t *TestRecorder) FailNow() {
	t.Terminated = true
	if t.PanicOnTerminate {
		panic(t)
	}
}

func (t *TestRecorder) Helper() {}

func (t *TestRecorder) Cleanup(fn func()) {
	t.Cleanups = append(t.Cleanups, fn)
}

// RunCleanups runs the scheduled cleanups in reverse order, as testing.T does.
func (t *TestRecorder) RunCleanups() {
	for i := len(t.Cleanups) - 1; i >= 0; i-- {
		t.Cleanups[i]()
	}
	t.Cleanups = nil
}

// Err returns all recorded errors as one error, or nil.
func (t *TestRecorder) Err() error {
	if len(t.Errors) == 0 {
		return nil
	}
	return errors.New(strings.Join(t.Errors, ", "))
}
