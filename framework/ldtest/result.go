package ldtest

import (
	"fmt"
	"strings"
	"time"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID   TestID
	Errors   []error
	Failed   bool
	Duration time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Passed returns the number of tests that ran and did not fail.
func (r Results) Passed() int {
	return len(r.Tests) - len(r.Failures)
}

type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
