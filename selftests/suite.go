package selftests

import (
	"fmt"

	"github.com/launchdarkly/app-communicator/framework/ldtest"
	"github.com/launchdarkly/app-communicator/scenarios"
)

// SuiteContext is the ldtest context value for the suite.
type SuiteContext struct {
	scenarios []scenarios.Scenario
}

// RunSuite runs every self-test, followed by one test per scenario.
func RunSuite(
	filter ldtest.Filter,
	testLogger ldtest.TestLogger,
	allScenarios []scenarios.Scenario,
) ldtest.Results {
	fmt.Printf("Running communicator self-tests with %d scenario(s)\n\n", len(allScenarios))

	config := ldtest.TestConfiguration{
		Filter:     filter,
		TestLogger: testLogger,
		Context:    SuiteContext{scenarios: allScenarios},
	}
	return ldtest.Run(config, func(t *ldtest.T) {
		doAllTests(t)
	})
}

func doAllTests(t *ldtest.T) {
	t.Run("ordering", doOrderingTests)
	t.Run("faults", doFaultTests)
	t.Run("timeouts", doTimeoutTests)
	t.Run("silence", doSilenceTests)
	t.Run("stop", doStopTests)
	t.Run("teardown", doTeardownTests)
	t.Run("independence", doIndependenceTests)
	t.Run("scenarios", doScenarioTests)
}

func suiteContext(t *ldtest.T) SuiteContext {
	c, _ := t.Context().(SuiteContext)
	return c
}
