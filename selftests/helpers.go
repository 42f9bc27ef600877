package selftests

import (
	"context"
	"time"

	"github.com/launchdarkly/app-communicator/communicator"
	"github.com/launchdarkly/app-communicator/framework"
	h "github.com/launchdarkly/app-communicator/framework/helpers"
	"github.com/launchdarkly/app-communicator/framework/ldtest"
	"github.com/launchdarkly/app-communicator/sampleapps"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/stretchr/testify/require"
)

const (
	defaultOutputTimeout = time.Second
	closeGracePeriod     = time.Second * 2
	shortTimeout         = time.Millisecond * 50
)

type appCommunicator = communicator.Communicator[ldvalue.Value, ldvalue.Value]

// startApp creates a sample application by name and arranges for it to be closed when the test
// ends. Lifecycle messages go to the test's debug output.
func startApp(t *ldtest.T, name string, scope ldvalue.Value, options ...communicator.Option) *appCommunicator {
	t.Helper()
	factory, err := sampleapps.Lookup(name)
	require.NoError(t, err)
	options = append([]communicator.Option{
		communicator.WithDebugLogger(framework.LoggerWithPrefix(t.DebugLogger(), "["+name+"] ")),
	}, options...)
	c, err := communicator.New(context.Background(), factory, scope, options...)
	require.NoError(t, err)
	h.CloseOnCleanup(t, c, closeGracePeriod)
	return c
}

func scopeWith(key string, value ldvalue.Value) ldvalue.Value {
	return ldvalue.ObjectBuild().Set(key, value).Build()
}

func sendAll(t *ldtest.T, c *appCommunicator, messages ...ldvalue.Value) {
	t.Helper()
	for _, message := range messages {
		require.NoError(t, c.SendInput(message))
	}
}

// numbered returns count messages of the given type whose text is their position.
func numbered(messageType string, count int) []ldvalue.Value {
	ret := make([]ldvalue.Value, 0, count)
	for i := 0; i < count; i++ {
		ret = append(ret, sampleapps.Message(messageType, ldvalue.Int(i).String()))
	}
	return ret
}

func requireDone(t *ldtest.T, c *appCommunicator) {
	t.Helper()
	require.True(t, h.IsClosedWithin(c.Done(), closeGracePeriod), "application did not finish")
}
