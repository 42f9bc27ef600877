package communicator

import (
	"errors"
	"time"

	"github.com/launchdarkly/app-communicator/framework"
	"github.com/launchdarkly/app-communicator/framework/helpers"
)

const (
	// DefaultTimeout is used by ReceiveOutput and Wait when they are given a non-positive timeout.
	DefaultTimeout = time.Second

	// DefaultNothingTimeout is used by ReceiveNothing when it is given a non-positive timeout.
	// DefaultNothingInterval is the conventional polling interval to go with it.
	DefaultNothingTimeout  = 100 * time.Millisecond
	DefaultNothingInterval = 10 * time.Millisecond

	// DefaultCancelGracePeriod is how long the Communicator waits for a cancelled application to
	// return before giving up on it.
	DefaultCancelGracePeriod = 5 * time.Second
)

type config struct {
	logger            framework.Logger
	cancelGracePeriod time.Duration
}

// Option configures a Communicator. See WithDebugLogger and WithCancelGracePeriod.
type Option helpers.ConfigOption[config]

type optionLogger struct {
	logger framework.Logger
}

func (o optionLogger) Configure(c *config) error {
	c.logger = o.logger
	return nil
}

// WithDebugLogger sets a logger for lifecycle messages. By default nothing is logged.
func WithDebugLogger(logger framework.Logger) Option {
	return optionLogger{logger}
}

type optionCancelGracePeriod struct {
	period time.Duration
}

func (o optionCancelGracePeriod) Configure(c *config) error {
	if o.period <= 0 {
		return errors.New("cancellation grace period must be positive")
	}
	c.cancelGracePeriod = o.period
	return nil
}

// WithCancelGracePeriod sets how long to wait for the application to exit after cancelling it.
func WithCancelGracePeriod(period time.Duration) Option {
	return optionCancelGracePeriod{period}
}
