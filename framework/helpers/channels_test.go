package helpers

import (
	"testing"
	"time"

	"github.com/launchdarkly/app-communicator/framework/opt"
	"github.com/stretchr/testify/assert"
)

func TestTryReceive(t *testing.T) {
	ch := make(chan string, 1)
	assert.Equal(t, opt.None[string](), TryReceive(ch, time.Millisecond))

	ch <- "a"
	assert.Equal(t, opt.Some("a"), TryReceive(ch, time.Millisecond))

	go func() {
		time.Sleep(time.Millisecond * 50)
		ch <- "b"
	}()
	assert.Equal(t, opt.Some("b"), TryReceive(ch, time.Second))

	close(ch)
	assert.Equal(t, opt.None[string](), TryReceive(ch, time.Second))
}

func TestIsClosedWithin(t *testing.T) {
	ch := make(chan struct{})
	assert.False(t, IsClosedWithin(ch, time.Millisecond))

	go func() {
		time.Sleep(time.Millisecond * 20)
		close(ch)
	}()
	assert.True(t, IsClosedWithin(ch, time.Second))
}

func TestRequireValue(t *testing.T) {
	tr1 := TestRecorder{PanicOnTerminate: true}
	ch := make(chan string, 1)
	assert.PanicsWithValue(t, &tr1, func() { _ = RequireValue(&tr1, ch, time.Millisecond) })
	if assert.Error(t, tr1.Err()) {
		assert.Contains(t, tr1.Err().Error(), "waiting for value of type string")
	}

	tr2 := TestRecorder{PanicOnTerminate: true}
	ch <- "a"
	assert.Equal(t, "a", RequireValue(&tr2, ch, time.Millisecond))
	assert.NoError(t, tr2.Err())

	tr3 := TestRecorder{PanicOnTerminate: true}
	go func() {
		time.Sleep(time.Millisecond * 50)
		ch <- "b"
	}()
	assert.Equal(t, "b", RequireValue(&tr3, ch, time.Second))
	assert.NoError(t, tr3.Err())
}

func TestRequireNoMoreValues(t *testing.T) {
	tr1 := TestRecorder{PanicOnTerminate: true}
	ch := make(chan string, 1)
	RequireNoMoreValues(&tr1, ch, time.Millisecond)
	assert.NoError(t, tr1.Err())

	tr2 := TestRecorder{PanicOnTerminate: true}
	ch <- "a"
	assert.Panics(t, func() { RequireNoMoreValues(&tr2, ch, time.Millisecond) })
	if assert.Error(t, tr2.Err()) {
		assert.Contains(t, tr2.Err().Error(), "unexpected extra value: a")
	}
}
