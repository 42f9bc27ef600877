package selftests

import (
	"testing"

	"github.com/launchdarkly/app-communicator/framework/ldtest"
	"github.com/launchdarkly/app-communicator/scenarios"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failureMessages(results ldtest.Results) []string {
	var ret []string
	for _, f := range results.Failures {
		for _, e := range f.Errors {
			ret = append(ret, ldtest.TestFailure{ID: f.TestID, Err: e}.Error())
		}
	}
	return ret
}

func TestSuitePasses(t *testing.T) {
	all, err := scenarios.Builtin()
	require.NoError(t, err)

	results := RunSuite(nil, nil, all)

	assert.True(t, results.OK(), "failures: %v", failureMessages(results))
	var ids []string
	for _, r := range results.Tests {
		ids = append(ids, r.TestID.String())
	}
	assert.Contains(t, ids, "ordering/inputs are received in the order sent")
	assert.Contains(t, ids, "independence/concurrent communicators do not share messages")
	assert.Contains(t, ids, "scenarios/fault is reported once")
}

func TestSuiteFilter(t *testing.T) {
	var filters ldtest.RegexFilters
	require.NoError(t, filters.MustMatch.Set("stop"))

	results := RunSuite(filters, nil, nil)

	require.True(t, results.OK(), "failures: %v", failureMessages(results))
	for _, r := range results.Tests {
		if len(r.TestID) > 0 {
			assert.Equal(t, "stop", r.TestID[0])
		}
	}
	assert.Len(t, results.Tests, 4) // two tests, their parent, and the root
}

func TestSuiteWithoutScenariosSkipsThem(t *testing.T) {
	var filters ldtest.RegexFilters
	require.NoError(t, filters.MustMatch.Set("scenarios"))

	results := RunSuite(filters, nil, nil)

	assert.True(t, results.OK())
	assert.Len(t, results.Tests, 1) // only the root, since the skipped group is not recorded
}
