package selftests

import (
	"context"
	"fmt"

	"github.com/launchdarkly/app-communicator/communicator"
	"github.com/launchdarkly/app-communicator/framework"
	h "github.com/launchdarkly/app-communicator/framework/helpers"
	"github.com/launchdarkly/app-communicator/framework/ldtest"
	"github.com/launchdarkly/app-communicator/sampleapps"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const independentInstances = 8

func doIndependenceTests(t *ldtest.T) {
	t.Run("concurrent communicators do not share messages", doIndependenceTestsConcurrentEcho)
	t.Run("a fault in one communicator does not affect the others", doIndependenceTestsFaultIsolated)
}

// converse runs a whole echo conversation on its own communicator and reports any mismatch as
// an error, since ldtest.T must only be used from the test's own goroutine.
func converse(ctx context.Context, logger framework.Logger, id int) error {
	c, err := communicator.New(ctx, sampleapps.Echo(), ldvalue.Int(id),
		communicator.WithDebugLogger(framework.LoggerWithPrefix(logger, fmt.Sprintf("[echo %d] ", id))))
	if err != nil {
		return err
	}
	defer c.Close()
	for i := 0; i < 10; i++ {
		sent := sampleapps.Message("ping", fmt.Sprintf("%d-%d", id, i))
		if err := c.SendInput(sent); err != nil {
			return err
		}
		got, err := c.ReceiveOutput(defaultOutputTimeout)
		if err != nil {
			return fmt.Errorf("communicator %d: %w", id, err)
		}
		if !got.Equal(sent) {
			return fmt.Errorf("communicator %d: expected %s, got %s", id, sent, got)
		}
	}
	if err := c.SendInput(sampleapps.Message(sampleapps.TypeDisconnect)); err != nil {
		return err
	}
	if err := c.Wait(defaultOutputTimeout); err != nil {
		return err
	}
	if !h.IsClosedWithin(c.Done(), closeGracePeriod) {
		return fmt.Errorf("communicator %d: application did not finish", id)
	}
	return nil
}

func doIndependenceTestsConcurrentEcho(t *ldtest.T) {
	logger := t.DebugLogger()
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < independentInstances; i++ {
		id := i
		g.Go(func() error { return converse(ctx, logger, id) })
	}
	require.NoError(t, g.Wait())
}

func doIndependenceTestsFaultIsolated(t *ldtest.T) {
	faulty := startApp(t, "fault", scopeWith("failAfter", ldvalue.Int(1)))
	healthy := startApp(t, "echo", ldvalue.Null())

	sendAll(t, faulty, sampleapps.Message("a"), sampleapps.Message("b"))
	sendAll(t, healthy, sampleapps.Message("a"), sampleapps.Message("b"))
	assert.ErrorIs(t, h.RequireFault(t, faulty, defaultOutputTimeout), sampleapps.ErrInjected)

	assert.True(t, h.RequireOutput(t, healthy, defaultOutputTimeout).Equal(sampleapps.Message("a")))
	assert.True(t, h.RequireOutput(t, healthy, defaultOutputTimeout).Equal(sampleapps.Message("b")))
	assert.Equal(t, communicator.TaskRunning, healthy.State())
}
