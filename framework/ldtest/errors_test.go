package ldtest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/app-communicator/framework/helpers"
	"github.com/launchdarkly/app-communicator/framework/ldtest/internal"
)

func TestModulePath(t *testing.T) {
	assert.Equal(t, "github.com/launchdarkly/app-communicator", modulePath())
	assert.Equal(t, "github.com/launchdarkly/app-communicator/framework/ldtest", ldtestPackageName())
}

func TestSplitFunctionName(t *testing.T) {
	for fullName, expected := range map[string][2]string{
		"github.com/a/b/pkg.Func":                 {"github.com/a/b/pkg", "Func"},
		"github.com/a/b/pkg.(*T).run.func1":       {"github.com/a/b/pkg", "(*T).run.func1"},
		"github.com/a/b.v2/pkg.Generic[...]":      {"github.com/a/b.v2/pkg", "Generic[...]"},
		"main.main":                               {"main", "main"},
		"github.com/a/b/pkg.Scenario.Run.func2.1": {"github.com/a/b/pkg", "Scenario.Run.func2.1"},
	} {
		p, f := splitFunctionName(fullName)
		assert.Equal(t, expected, [2]string{p, f}, fullName)
	}
}

func TestIsMachinery(t *testing.T) {
	root := modulePath()
	for _, c := range []struct {
		function string
		expected bool
	}{
		{root + "/framework/ldtest.(*T).Errorf", true},
		{root + "/framework/helpers.RequireOutput[...]", true},
		{root + "/framework/helpers.RequireNoOutput", true},
		{root + "/communicator.(*Communicator[...]).ReceiveOutput", true},
		{root + "/communicator.(*task).finish", true},
		{root + "/scenarios.runStep", true},
		{root + "/scenarios.runStep.func1", true},
		{"github.com/stretchr/testify/require.Equal", true},
		{"github.com/stretchr/testify/assert.Fail", true},
		{"github.com/launchdarkly/go-test-helpers/v2/matchers.AssertThat", true},

		{root + "/framework/ldtest/internal.Call", false},
		{root + "/framework.(*prefixedLogger).Println", false},
		{root + "/scenarios.Scenario.Run", false},
		{root + "/scenarios.runSteps", false},
		{root + "/selftests.checkScenarios", false},
		{root + "/sampleapps.Echo.func1", false},
	} {
		packageName, _ := splitFunctionName(c.function)
		assert.Equal(t, c.expected, isMachinery(packageName, c.function), c.function)
	}
}

func TestStacktraceInfoString(t *testing.T) {
	s := StacktraceInfo{FileName: "runner.go", Package: modulePath() + "/scenarios", Function: "Scenario.Run", Line: 42}
	assert.Equal(t, "scenarios.Scenario.Run (runner.go:42)", s.String())

	other := StacktraceInfo{FileName: "x.go", Package: "example.com/elsewhere", Function: "F", Line: 1}
	assert.Equal(t, "example.com/elsewhere.F (x.go:1)", other.String())
}

func TestTransformError(t *testing.T) {
	testifyMessage := "\n\tError Trace:\tassertions.go:10\n\tError:      \tvalues differ"

	t.Run("without stacktrace", func(t *testing.T) {
		err := transformError(errors.New(testifyMessage), nil)
		_, isStacktrace := err.(ErrorWithStacktrace)
		assert.False(t, isStacktrace)
		assert.Equal(t, "values differ", err.Error())
	})

	t.Run("with stacktrace", func(t *testing.T) {
		frames := []StacktraceInfo{{FileName: "a.go", Function: "F", Line: 3}}
		err := transformError(errors.New("plain message"), frames)
		require.IsType(t, ErrorWithStacktrace{}, err)
		assert.Equal(t, "plain message", err.Error())
		assert.Equal(t, frames, err.(ErrorWithStacktrace).Stacktrace)
	})
}

func TestStacktrace(t *testing.T) {
	_ = Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("raw", func(ldt *T) {
			stack := getStacktrace(true, nil)
			require.Greater(t, len(stack), 1)
			assert.Equal(t, ldtestPackageName(), stack[0].Package)
			assert.Contains(t, stack[0].Function, "TestStacktrace.")
			assert.Equal(t, ldtestPackageName(), stack[1].Package)
			assert.Equal(t, "(*T).run", stack[1].Function)
		})

		ldt.Run("machinery frames are dropped", func(ldt *T) {
			internal.Call(func() {
				stack := getStacktrace(false, nil)
				// everything else below Run, including this test, is in ldtest
				require.Len(t, stack, 1)
				assert.Equal(t, ldtestPackageName()+"/internal", stack[0].Package)
				assert.Equal(t, "Call", stack[0].Function)
			})
		})

		ldt.Run("helpers are dropped even in raw stacktraces", func(ldt *T) {
			helperFunc1(func() {
				helperFunc2(func() {
					stack := getStacktrace(true, []string{ldtestPackageName() + ".helperFunc2"})
					var functions []string
					for _, s := range stack {
						if s.Package == ldtestPackageName() {
							functions = append(functions, s.Function)
						}
					}
					assert.Contains(t, functions, "helperFunc1")
					assert.NotContains(t, functions, "helperFunc2")
				})
			})
		})
	})
}

type failingReceiver struct{}

func (failingReceiver) ReceiveOutput(time.Duration) (string, error) {
	return "", errors.New("no output within 1ms")
}

func TestFailureInHelperIsReportedAtCaller(t *testing.T) {
	result := Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("needs output", func(ldt1 *T) {
			internal.Call(func() {
				_ = helpers.RequireOutput[string](ldt1, failingReceiver{}, time.Millisecond)
			})
		})
	})

	require.Len(t, result.Failures, 1)
	require.Len(t, result.Failures[0].Errors, 1)
	err := result.Failures[0].Errors[0]
	require.IsType(t, ErrorWithStacktrace{}, err)
	assert.Contains(t, err.Error(), "no output within 1ms")

	stack := err.(ErrorWithStacktrace).Stacktrace
	require.Len(t, stack, 1, "stacktrace: %+v", stack)
	assert.Equal(t, "Call", stack[0].Function)
}

func helperFunc1(action func()) {
	action()
}

func helperFunc2(action func()) {
	action()
}
