package scenarios

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/launchdarkly/app-communicator/communicator"
	"github.com/launchdarkly/app-communicator/framework"
	"github.com/launchdarkly/app-communicator/framework/helpers"
	"github.com/launchdarkly/app-communicator/sampleapps"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

// closeGracePeriod is how long a scenario waits, at the end, for its application to exit.
const closeGracePeriod = 2 * time.Second

// TestScope is what Run needs from a test. Both *testing.T and *ldtest.T satisfy it.
type TestScope interface {
	helpers.TestContext
	helpers.CleanupContext
}

type appCommunicator = communicator.Communicator[ldvalue.Value, ldvalue.Value]

// Run executes the scenario's steps in order against a new instance of its application. The
// first step that fails terminates the test. The application is closed when the test ends.
func (s Scenario) Run(t TestScope, logger framework.Logger) {
	t.Helper()
	factory, err := sampleapps.Lookup(s.App)
	if err != nil {
		t.Errorf("%s", err)
		t.FailNow()
		return
	}
	c, err := communicator.New(context.Background(), factory, s.Scope,
		communicator.WithDebugLogger(framework.LoggerWithPrefix(logger, "["+s.App+"] ")))
	if err != nil {
		t.Errorf("could not start application %q: %s", s.App, err)
		t.FailNow()
		return
	}
	helpers.CloseOnCleanup(t, c, closeGracePeriod)

	for i, step := range s.Steps {
		if logger != nil {
			logger.Printf("Step %d: %s", i+1, step.Kind())
		}
		if !runStep(t, c, step, fmt.Sprintf("step %d (%s)", i+1, step.Kind())) {
			t.FailNow()
			return
		}
	}
}

func runStep(t TestScope, c *appCommunicator, step Step, label string) bool {
	t.Helper()
	fail := func(format string, args ...interface{}) bool {
		t.Errorf("%s: %s", label, fmt.Sprintf(format, args...))
		return false
	}
	switch {
	case step.Send != nil:
		if err := c.SendInput(*step.Send); err != nil {
			return fail("could not send input: %s", err)
		}
	case step.Expect != nil:
		message, err := c.ReceiveOutput(0)
		if err != nil {
			return fail("expected output %s, got error: %s", helpers.CanonicalizedJSONString(*step.Expect), err)
		}
		return m.In(t).For(label).Assert(message, m.JSONEqual(*step.Expect))
	case step.ExpectNothing != nil:
		timeout := millis(step.ExpectNothing.TimeoutMillis)
		if timeout <= 0 {
			timeout = communicator.DefaultNothingTimeout
		}
		empty, err := c.ReceiveNothing(timeout, millis(step.ExpectNothing.IntervalMillis))
		if err != nil {
			return fail("%s", err)
		}
		if !empty {
			return fail("application produced output within %s when none was expected", timeout)
		}
	case step.ExpectFault != nil:
		message, err := c.ReceiveOutput(millis(step.ExpectFault.TimeoutMillis))
		switch {
		case err == nil:
			return fail("expected a fault, got output %s", helpers.CanonicalizedJSONString(message))
		case errors.Is(err, communicator.ErrTimeout):
			return fail("expected a fault, got %s", err)
		case !strings.Contains(err.Error(), step.ExpectFault.Contains):
			return fail("expected a fault containing %q, got %q", step.ExpectFault.Contains, err)
		}
	case step.ExpectTimeout != nil:
		message, err := c.ReceiveOutput(millis(step.ExpectTimeout.TimeoutMillis))
		switch {
		case err == nil:
			return fail("expected a timeout, got output %s", helpers.CanonicalizedJSONString(message))
		case !errors.Is(err, communicator.ErrTimeout):
			return fail("expected a timeout, got %s", err)
		}
	case step.Wait != nil:
		if err := c.Wait(millis(step.Wait.TimeoutMillis)); err != nil {
			return fail("application failed: %s", err)
		}
	case step.Stop != nil:
		if err := c.Stop(step.Stop.ReportFaults); err != nil {
			return fail("application failed: %s", err)
		}
	default:
		return fail("step has no action")
	}
	return true
}
