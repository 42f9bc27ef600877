package scenarios

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/launchdarkly/app-communicator/data"
	"github.com/launchdarkly/app-communicator/sampleapps"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/slices"
)

// Scenario is one scripted run of a sample application.
type Scenario struct {
	Name string `json:"name"`

	// App is the name of a sample application, as returned by sampleapps.Names.
	App string `json:"app"`

	// Scope is passed to the application factory. It is null if omitted.
	Scope ldvalue.Value `json:"scope"`

	Steps []Step `json:"steps"`

	// Source is the file this scenario came from, if any.
	Source data.SourceInfo `json:"-"`
}

// Step is a single action. Exactly one of its fields must be set.
type Step struct {
	Send          *ldvalue.Value     `json:"send,omitempty"`
	Expect        *ldvalue.Value     `json:"expect,omitempty"`
	ExpectNothing *ExpectNothingStep `json:"expectNothing,omitempty"`
	ExpectFault   *ExpectFaultStep   `json:"expectFault,omitempty"`
	ExpectTimeout *TimeoutStep       `json:"expectTimeout,omitempty"`
	Wait          *TimeoutStep       `json:"wait,omitempty"`
	Stop          *StopStep          `json:"stop,omitempty"`
}

// TimeoutStep is used by the steps that only take a timeout. A zero timeout means the
// communicator's default.
type TimeoutStep struct {
	TimeoutMillis int `json:"timeoutMillis,omitempty"`
}

// ExpectNothingStep checks that no output arrives within the timeout, polling at the interval.
// A zero interval means a single check at the end.
type ExpectNothingStep struct {
	TimeoutMillis  int `json:"timeoutMillis,omitempty"`
	IntervalMillis int `json:"intervalMillis,omitempty"`
}

// ExpectFaultStep expects the next ReceiveOutput to report the application's error, and that
// error's message to contain Contains.
type ExpectFaultStep struct {
	TimeoutMillis int    `json:"timeoutMillis,omitempty"`
	Contains      string `json:"contains,omitempty"`
}

// StopStep stops the application, optionally asking for its unreported error.
type StopStep struct {
	ReportFaults bool `json:"reportFaults,omitempty"`
}

// Kind returns the name of the step's action, as it appears in a scenario file.
func (s Step) Kind() string {
	kinds := s.kinds()
	if len(kinds) != 1 {
		return "invalid"
	}
	return kinds[0]
}

func (s Step) kinds() []string {
	var ret []string
	if s.Send != nil {
		ret = append(ret, "send")
	}
	if s.Expect != nil {
		ret = append(ret, "expect")
	}
	if s.ExpectNothing != nil {
		ret = append(ret, "expectNothing")
	}
	if s.ExpectFault != nil {
		ret = append(ret, "expectFault")
	}
	if s.ExpectTimeout != nil {
		ret = append(ret, "expectTimeout")
	}
	if s.Wait != nil {
		ret = append(ret, "wait")
	}
	if s.Stop != nil {
		ret = append(ret, "stop")
	}
	return ret
}

// Validate checks that the scenario can be run.
func (s Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("scenario has no name"))
	}
	if s.App == "" {
		errs = append(errs, errors.New("scenario has no app"))
	} else if !slices.Contains(sampleapps.Names(), s.App) {
		errs = append(errs, fmt.Errorf("unknown app %q", s.App))
	}
	if len(s.Steps) == 0 {
		errs = append(errs, errors.New("scenario has no steps"))
	}
	for i, step := range s.Steps {
		switch kinds := step.kinds(); len(kinds) {
		case 0:
			errs = append(errs, fmt.Errorf("step %d has no action", i+1))
		case 1:
		default:
			errs = append(errs, fmt.Errorf("step %d has more than one action (%s)", i+1, strings.Join(kinds, ", ")))
		}
	}
	return errors.Join(errs...)
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
