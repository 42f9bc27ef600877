package ldtest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/launchdarkly/app-communicator/framework"

	"github.com/stretchr/testify/assert"
)

type finishedTest struct {
	id     TestID
	result TestResult
	output framework.CapturedOutput
}

type recordingTestLogger struct {
	started  []TestID
	errors   []error
	finished []finishedTest
	skipped  []string
	ended    bool
	endErr   error
}

func (r *recordingTestLogger) TestStarted(id TestID)          { r.started = append(r.started, id) }
func (r *recordingTestLogger) TestError(id TestID, err error) { r.errors = append(r.errors, err) }
func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, out framework.CapturedOutput) {
	r.finished = append(r.finished, finishedTest{id, result, out})
}
func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.skipped = append(r.skipped, id.String()+": "+reason)
}
func (r *recordingTestLogger) EndLog(Results) error {
	r.ended = true
	return r.endErr
}

func TestTestLoggerEvents(t *testing.T) {
	logger := &recordingTestLogger{}
	config := TestConfiguration{
		TestLogger: logger,
		Filter:     FilterFunc(func(id TestID) bool { return id.String() != "excluded" }),
	}
	_ = Run(config, func(ldt *T) {
		ldt.Run("passes", func(*T) {})
		ldt.Run("fails", func(ldt1 *T) { ldt1.Errorf("bad %s", "thing") })
		ldt.Run("skips", func(ldt1 *T) { ldt1.SkipWithReason("not today") })
		ldt.Run("excluded", func(*T) { assert.Fail(t, "should not have run") })
	})

	assert.Equal(t, []TestID{{"passes"}, {"fails"}, {"skips"}, {"excluded"}}, logger.started)
	if assert.Len(t, logger.errors, 1) {
		assert.Equal(t, "bad thing", logger.errors[0].Error())
	}
	if assert.Len(t, logger.finished, 2) {
		assert.False(t, logger.finished[0].result.Failed)
		assert.True(t, logger.finished[1].result.Failed)
	}
	assert.Equal(t, []string{"skips: not today", "excluded: excluded by filter parameters"}, logger.skipped)
}

func TestMultiTestLogger(t *testing.T) {
	l1, l2 := &recordingTestLogger{}, &recordingTestLogger{endErr: errors.New("disk full")}
	multi := &MultiTestLogger{Loggers: []TestLogger{l1, l2}}
	_ = Run(TestConfiguration{TestLogger: multi}, func(ldt *T) {
		ldt.Run("a", func(ldt1 *T) { ldt1.Errorf("oops") })
		ldt.Run("b", func(ldt1 *T) { ldt1.Skip() })
	})
	err := multi.EndLog(Results{})

	assert.EqualError(t, err, "disk full")
	for _, l := range []*recordingTestLogger{l1, l2} {
		assert.Len(t, l.started, 2)
		assert.Len(t, l.errors, 1)
		assert.Len(t, l.finished, 1)
		assert.Len(t, l.skipped, 1)
		assert.True(t, l.ended)
	}
}

func TestPrintResults(t *testing.T) {
	t.Run("all passed", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		fprintResults(&stdout, &stderr, Results{Tests: []TestResult{{}, {}}})
		assert.Contains(t, stdout.String(), "All tests passed (2)")
		assert.Empty(t, stderr.String())
	})

	t.Run("failures", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		failure := TestResult{TestID: TestID{"echo", "step 1"}, Failed: true}
		fprintResults(&stdout, &stderr, Results{Tests: []TestResult{failure}, Failures: []TestResult{failure}})
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "FAILED TESTS (1):")
		assert.Contains(t, stderr.String(), "* echo/step 1")
	})
}
