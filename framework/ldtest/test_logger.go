package ldtest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/launchdarkly/app-communicator/framework"

	"github.com/fatih/color"
)

var consoleTestErrorColor = color.New(color.FgYellow)              //nolint:gochecknoglobals
var consoleTestFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleTestSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint)               //nolint:gochecknoglobals
var allTestsPassedColor = color.New(color.FgGreen)                 //nolint:gochecknoglobals

type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
	EndLog(results Results) error
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                        {}
func (n nullTestLogger) TestError(TestID, error)                                   {}
func (n nullTestLogger) TestFinished(TestID, TestResult, framework.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                                {}
func (n nullTestLogger) EndLog(Results) error                                      { return nil }

// ConsoleTestLogger prints test progress to standard output as it happens, and the summary to
// standard error at the end.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		_, _ = consoleTestErrorColor.Printf("  %s\n", line)
	}
	if es, ok := err.(ErrorWithStacktrace); ok {
		for _, s := range es.Stacktrace {
			_, _ = consoleTestErrorColor.Printf("    at %s\n", s)
		}
	}
}

func (c ConsoleTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	if result.Failed {
		_, _ = consoleTestFailedColor.Printf("  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((result.Failed && c.DebugOutputOnFailure) || (!result.Failed && c.DebugOutputOnSuccess)) {
		_, _ = consoleDebugOutputColor.Println(debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		_, _ = consoleTestSkippedColor.Printf("  SKIPPED: %s\n", id)
	} else {
		_, _ = consoleTestSkippedColor.Printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}

func (c ConsoleTestLogger) EndLog(results Results) error {
	fmt.Println()
	PrintResults(results)
	return nil
}

// MultiTestLogger sends every event to each of Loggers in turn.
type MultiTestLogger struct {
	Loggers []TestLogger
}

func (m *MultiTestLogger) TestStarted(id TestID) {
	for _, l := range m.Loggers {
		l.TestStarted(id)
	}
}

func (m *MultiTestLogger) TestError(id TestID, err error) {
	for _, l := range m.Loggers {
		l.TestError(id, err)
	}
}

func (m *MultiTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	for _, l := range m.Loggers {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m *MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m.Loggers {
		l.TestSkipped(id, reason)
	}
}

// EndLog calls EndLog on every logger and returns the first error.
func (m *MultiTestLogger) EndLog(results Results) error {
	var first error
	for _, l := range m.Loggers {
		if err := l.EndLog(results); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func PrintResults(results Results) {
	fprintResults(os.Stdout, os.Stderr, results)
}

func fprintResults(stdout, stderr io.Writer, results Results) {
	if results.OK() {
		_, _ = allTestsPassedColor.Fprintf(stdout, "All tests passed (%d)\n", results.Passed())
	} else {
		_, _ = consoleTestFailedColor.Fprintf(stderr, "FAILED TESTS (%d):\n", len(results.Failures))
		for _, f := range results.Failures {
			_, _ = consoleTestFailedColor.Fprintf(stderr, "  * %s\n", f.TestID)
		}
	}
}
