package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeApp struct {
	outputs  []string
	err      error
	silent   bool
	closed   bool
	done     chan struct{}
	closeApp bool
}

func (f *fakeApp) ReceiveOutput(time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(f.outputs) == 0 {
		return "", errors.New("timed out")
	}
	out := f.outputs[0]
	f.outputs = f.outputs[1:]
	return out, nil
}

func (f *fakeApp) ReceiveNothing(time.Duration, time.Duration) (bool, error) {
	return f.silent, f.err
}

func (f *fakeApp) Wait(time.Duration) error { return f.err }

func (f *fakeApp) Close() {
	f.closed = true
	if f.closeApp {
		close(f.done)
	}
}

func (f *fakeApp) Done() <-chan struct{} { return f.done }

func TestRequireOutput(t *testing.T) {
	tr1 := TestRecorder{PanicOnTerminate: true}
	app := &fakeApp{outputs: []string{"a", "b"}}
	assert.Equal(t, "a", RequireOutput[string](&tr1, app, time.Second))
	assert.Equal(t, "b", RequireOutput[string](&tr1, app, time.Second))
	assert.NoError(t, tr1.Err())

	tr2 := TestRecorder{PanicOnTerminate: true}
	assert.Panics(t, func() { RequireOutput[string](&tr2, app, time.Second) })
	if assert.Error(t, tr2.Err()) {
		assert.Contains(t, tr2.Err().Error(), "timed out")
	}
}

func TestRequireNoOutput(t *testing.T) {
	tr1 := TestRecorder{PanicOnTerminate: true}
	RequireNoOutput(&tr1, &fakeApp{silent: true}, time.Second, time.Millisecond)
	assert.NoError(t, tr1.Err())

	tr2 := TestRecorder{PanicOnTerminate: true}
	assert.Panics(t, func() { RequireNoOutput(&tr2, &fakeApp{}, time.Second, time.Millisecond) })
	if assert.Error(t, tr2.Err()) {
		assert.Contains(t, tr2.Err().Error(), "when none was expected")
	}

	tr3 := TestRecorder{PanicOnTerminate: true}
	assert.Panics(t, func() {
		RequireNoOutput(&tr3, &fakeApp{err: errors.New("closed")}, time.Second, time.Millisecond)
	})
	assert.True(t, tr3.Terminated)
}

func TestRequireCompletionAndFault(t *testing.T) {
	fault := errors.New("boom")

	tr1 := TestRecorder{PanicOnTerminate: true}
	RequireCompletion(&tr1, &fakeApp{}, time.Second)
	assert.NoError(t, tr1.Err())

	tr2 := TestRecorder{PanicOnTerminate: true}
	assert.Panics(t, func() { RequireCompletion(&tr2, &fakeApp{err: fault}, time.Second) })
	assert.Equal(t, "application failed: boom", tr2.Err().Error())

	tr3 := TestRecorder{PanicOnTerminate: true}
	assert.Equal(t, fault, RequireFault(&tr3, &fakeApp{err: fault}, time.Second))
	assert.NoError(t, tr3.Err())

	tr4 := TestRecorder{PanicOnTerminate: true}
	assert.Panics(t, func() { RequireFault(&tr4, &fakeApp{}, time.Second) })
}

func TestCloseOnCleanup(t *testing.T) {
	var tr1 TestRecorder
	app1 := &fakeApp{done: make(chan struct{}), closeApp: true}
	CloseOnCleanup(&tr1, app1, time.Second)
	assert.False(t, app1.closed)
	tr1.RunCleanups()
	assert.True(t, app1.closed)
	assert.NoError(t, tr1.Err())

	var tr2 TestRecorder
	app2 := &fakeApp{done: make(chan struct{})}
	CloseOnCleanup(&tr2, app2, time.Millisecond*10)
	tr2.RunCleanups()
	assert.True(t, app2.closed)
	if assert.Error(t, tr2.Err()) {
		assert.Contains(t, tr2.Err().Error(), "still running")
	}
}
