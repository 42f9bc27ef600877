package selftests

import (
	"errors"
	"time"

	"github.com/launchdarkly/app-communicator/communicator"
	h "github.com/launchdarkly/app-communicator/framework/helpers"
	"github.com/launchdarkly/app-communicator/framework/ldtest"
	"github.com/launchdarkly/app-communicator/sampleapps"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doOrderingTests(t *ldtest.T) {
	t.Run("inputs are received in the order sent", func(t *ldtest.T) {
		c := startApp(t, "echo", ldvalue.Null())
		messages := numbered("ping", 20)
		sendAll(t, c, messages...)
		for _, expected := range messages {
			m.In(t).Assert(h.RequireOutput(t, c, defaultOutputTimeout), m.JSONEqual(expected))
		}
	})

	t.Run("outputs are received in the order produced when interleaved with inputs", func(t *ldtest.T) {
		c := startApp(t, "upper", ldvalue.Null())
		for i, message := range numbered("say", 10) {
			sendAll(t, c, message)
			if i%3 == 2 {
				for j := i - 2; j <= i; j++ {
					expected := sampleapps.Message(sampleapps.TypeReply, ldvalue.Int(j).String())
					m.In(t).Assert(h.RequireOutput(t, c, defaultOutputTimeout), m.JSONEqual(expected))
				}
			}
		}
		m.In(t).Assert(h.RequireOutput(t, c, defaultOutputTimeout),
			m.JSONEqual(sampleapps.Message(sampleapps.TypeReply, "9")))
	})

	t.Run("output sent before input is read", func(t *ldtest.T) {
		c := startApp(t, "greeter", scopeWith("path", ldvalue.String("/first")))
		m.In(t).Assert(h.RequireOutput(t, c, defaultOutputTimeout),
			m.JSONEqual(sampleapps.Message(sampleapps.TypeHello, "/first")))
	})
}

func doFaultTests(t *ldtest.T) {
	failAfter := func(n int) ldvalue.Value { return scopeWith("failAfter", ldvalue.Int(n)) }

	t.Run("fault is reported by the next receive, and only once", func(t *ldtest.T) {
		c := startApp(t, "fault", failAfter(2))
		sendAll(t, c, numbered("ping", 3)...)
		h.RequireOutput(t, c, defaultOutputTimeout)
		h.RequireOutput(t, c, defaultOutputTimeout)

		_, err := c.ReceiveOutput(defaultOutputTimeout)
		require.ErrorIs(t, err, sampleapps.ErrInjected)

		_, err = c.ReceiveOutput(shortTimeout)
		assert.Equal(t, communicator.ErrTimeout, err)
		assert.NoError(t, c.Wait(shortTimeout))
		assert.NoError(t, c.Stop(true))
	})

	t.Run("fault is reported by wait", func(t *ldtest.T) {
		c := startApp(t, "fault", failAfter(1))
		sendAll(t, c, numbered("ping", 2)...)
		err := h.RequireFault(t, c, defaultOutputTimeout)
		assert.ErrorIs(t, err, sampleapps.ErrInjected)
		assert.NoError(t, c.Stop(true))
	})

	t.Run("fault is reported by stop", func(t *ldtest.T) {
		c := startApp(t, "fault", failAfter(1))
		sendAll(t, c, numbered("ping", 2)...)
		h.RequireEventually(t, func() bool { return c.State() == communicator.TaskFaulted },
			closeGracePeriod, time.Millisecond*5, "application did not fail")
		assert.NoError(t, c.Stop(false))
		assert.ErrorIs(t, c.Stop(true), sampleapps.ErrInjected)
		assert.NoError(t, c.Stop(true))
	})

	t.Run("outputs produced before a fault are still delivered first", func(t *ldtest.T) {
		c := startApp(t, "fault", failAfter(3))
		sendAll(t, c, numbered("ping", 4)...)
		requireDone(t, c)
		for _, expected := range numbered("ping", 3) {
			m.In(t).Assert(h.RequireOutput(t, c, defaultOutputTimeout), m.JSONEqual(expected))
		}
		_, err := c.ReceiveOutput(defaultOutputTimeout)
		assert.ErrorIs(t, err, sampleapps.ErrInjected)
	})

	t.Run("panic is reported as a fault", func(t *ldtest.T) {
		c := startApp(t, "panic", ldvalue.Null())
		sendAll(t, c, sampleapps.Message("oops"))
		err := h.RequireFault(t, c, defaultOutputTimeout)
		var panicErr *communicator.PanicError
		require.True(t, errors.As(err, &panicErr))
		assert.Equal(t, `cannot handle "oops"`, panicErr.Value)
		assert.Equal(t, communicator.TaskFaulted, c.State())
	})
}

func doTimeoutTests(t *ldtest.T) {
	t.Run("receive on an idle application times out and cancels it", func(t *ldtest.T) {
		c := startApp(t, "idle", ldvalue.Null())
		start := time.Now()
		_, err := c.ReceiveOutput(shortTimeout)
		assert.Equal(t, communicator.ErrTimeout, err)
		assert.GreaterOrEqual(t, time.Since(start), shortTimeout)
		assert.Equal(t, communicator.TaskCancelled, c.State())
		assert.NoError(t, c.Wait(shortTimeout))
	})

	t.Run("wait on a running application cancels it without error", func(t *ldtest.T) {
		c := startApp(t, "idle", ldvalue.Null())
		assert.NoError(t, c.Wait(shortTimeout))
		assert.Equal(t, communicator.TaskCancelled, c.State())
	})

	t.Run("wait gives up on an application that ignores cancellation", func(t *ldtest.T) {
		c := startApp(t, "stubborn", scopeWith("holdMillis", ldvalue.Int(500)),
			communicator.WithCancelGracePeriod(shortTimeout))
		assert.Equal(t, communicator.ErrCancelIgnored, c.Wait(shortTimeout))
		requireDone(t, c)
		// returning at all after being cancelled counts as acknowledging it
		assert.Equal(t, communicator.TaskCancelled, c.State())
	})

	t.Run("receive after completion times out without cancelling", func(t *ldtest.T) {
		c := startApp(t, "lifespan", ldvalue.Null())
		sendAll(t, c, sampleapps.Message(sampleapps.TypeStartup), sampleapps.Message(sampleapps.TypeShutdown))
		h.RequireOutput(t, c, defaultOutputTimeout)
		h.RequireOutput(t, c, defaultOutputTimeout)
		h.RequireCompletion(t, c, defaultOutputTimeout)
		_, err := c.ReceiveOutput(shortTimeout)
		assert.Equal(t, communicator.ErrTimeout, err)
		assert.Equal(t, communicator.TaskCompleted, c.State())
	})
}

func doSilenceTests(t *ldtest.T) {
	t.Run("silent application", func(t *ldtest.T) {
		c := startApp(t, "idle", ldvalue.Null())
		h.RequireNoOutput(t, c, communicator.DefaultNothingTimeout, communicator.DefaultNothingInterval)
	})

	t.Run("output is seen early and not consumed", func(t *ldtest.T) {
		c := startApp(t, "echo", ldvalue.Null())
		sendAll(t, c, sampleapps.Message("ping"))
		start := time.Now()
		empty, err := c.ReceiveNothing(time.Second, communicator.DefaultNothingInterval)
		require.NoError(t, err)
		assert.False(t, empty)
		assert.Less(t, time.Since(start), time.Second)
		m.In(t).Assert(h.RequireOutput(t, c, defaultOutputTimeout), m.JSONEqual(sampleapps.Message("ping")))
	})

	t.Run("single check without polling", func(t *ldtest.T) {
		c := startApp(t, "echo", ldvalue.Null())
		sendAll(t, c, sampleapps.Message("ping"))
		empty, err := c.ReceiveNothing(shortTimeout, 0)
		require.NoError(t, err)
		assert.False(t, empty)
		assert.Equal(t, 1, c.PendingOutput())
	})
}

func doStopTests(t *ldtest.T) {
	t.Run("stop cancels a running application without waiting", func(t *ldtest.T) {
		c := startApp(t, "idle", ldvalue.Null())
		assert.NoError(t, c.Stop(true))
		requireDone(t, c)
		assert.Equal(t, communicator.TaskCancelled, c.State())
		assert.NoError(t, c.Stop(true))
	})

	t.Run("stop after normal completion", func(t *ldtest.T) {
		c := startApp(t, "echo", ldvalue.Null())
		sendAll(t, c, sampleapps.Message(sampleapps.TypeDisconnect))
		requireDone(t, c)
		assert.NoError(t, c.Stop(true))
		assert.Equal(t, communicator.TaskCompleted, c.State())
	})
}

func doTeardownTests(t *ldtest.T) {
	t.Run("close a running application", func(t *ldtest.T) {
		c := startApp(t, "idle", ldvalue.Null())
		c.Close()
		requireDone(t, c)
		assert.Equal(t, communicator.ErrClosed, c.SendInput(sampleapps.Message("ping")))
		_, err := c.ReceiveOutput(shortTimeout)
		assert.Equal(t, communicator.ErrClosed, err)
		assert.Equal(t, communicator.ErrClosed, c.Wait(shortTimeout))
	})

	t.Run("close a faulted application", func(t *ldtest.T) {
		c := startApp(t, "panic", ldvalue.Null())
		sendAll(t, c, sampleapps.Message("oops"))
		requireDone(t, c)
		assert.NotPanics(t, c.Close)
		assert.NotPanics(t, c.Close)
	})

	t.Run("close an application that ignores cancellation", func(t *ldtest.T) {
		c := startApp(t, "stubborn", scopeWith("holdMillis", ldvalue.Int(100)))
		assert.NotPanics(t, c.Close)
	})
}
