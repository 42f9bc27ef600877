package sampleapps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/launchdarkly/app-communicator/communicator"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

type (
	Application = communicator.Application[ldvalue.Value]
	Factory     = communicator.Factory[ldvalue.Value, ldvalue.Value]
	InputSource = communicator.InputSource[ldvalue.Value]
	OutputSink  = communicator.OutputSink[ldvalue.Value]
)

const (
	TypeDisconnect = "app.disconnect"
	TypeEcho       = "echo"
	TypeReply      = "upper.reply"
	TypeHello      = "hello"

	TypeStartup          = "lifespan.startup"
	TypeStartupComplete  = "lifespan.startup.complete"
	TypeShutdown         = "lifespan.shutdown"
	TypeShutdownComplete = "lifespan.shutdown.complete"
)

// ErrInjected is wrapped by every failure that the fault application produces on purpose.
var ErrInjected = errors.New("injected fault")

// Message builds an object message with the given type and an optional "text" property.
func Message(messageType string, text ...string) ldvalue.Value {
	b := ldvalue.ObjectBuild().Set("type", ldvalue.String(messageType))
	if len(text) > 0 {
		b.Set("text", ldvalue.String(strings.Join(text, " ")))
	}
	return b.Build()
}

func typeOf(message ldvalue.Value) string {
	return message.GetByKey("type").StringValue()
}

// receive returns the next input, or done=true if it was a disconnect request.
func receive(ctx context.Context, in InputSource) (message ldvalue.Value, done bool, err error) {
	message, err = in.Receive(ctx)
	if err != nil {
		return message, false, err
	}
	return message, typeOf(message) == TypeDisconnect, nil
}

// withScopeCheck wraps a constructor so that any application refuses to be created for a scope
// with a "createError" property, which lets tests exercise factory failures.
func withScopeCheck(makeApp func(scope ldvalue.Value) Application) Factory {
	return func(scope ldvalue.Value) (Application, error) {
		if msg := scope.GetByKey("createError"); !msg.IsNull() {
			return nil, fmt.Errorf("%w: %s", ErrInjected, msg.StringValue())
		}
		return makeApp(scope), nil
	}
}

// Echo sends every input back unchanged.
func Echo() Factory {
	return withScopeCheck(func(ldvalue.Value) Application {
		return func(ctx context.Context, in InputSource, out OutputSink) error {
			for {
				message, done, err := receive(ctx, in)
				if err != nil || done {
					return err
				}
				if err := out.Send(ctx, message); err != nil {
					return err
				}
			}
		}
	})
}

// Upper replies to every input with its "text" property in upper case.
func Upper() Factory {
	return withScopeCheck(func(ldvalue.Value) Application {
		return func(ctx context.Context, in InputSource, out OutputSink) error {
			for {
				message, done, err := receive(ctx, in)
				if err != nil || done {
					return err
				}
				text := message.GetByKey("text").StringValue()
				if err := out.Send(ctx, Message(TypeReply, strings.ToUpper(text))); err != nil {
					return err
				}
			}
		}
	})
}

// Greeter sends a hello message carrying the scope's "path" before reading any input, then
// behaves like Echo.
func Greeter() Factory {
	return greeterThen(Echo())
}

// greeterThen sends the hello message and then hands the conversation to an application made by
// next.
func greeterThen(next Factory) Factory {
	return withScopeCheck(func(scope ldvalue.Value) Application {
		return func(ctx context.Context, in InputSource, out OutputSink) error {
			path := scope.GetByKey("path").StringValue()
			if err := out.Send(ctx, Message(TypeHello, path)); err != nil {
				return err
			}
			app, err := next(scope)
			if err != nil {
				return err
			}
			return app(ctx, in, out)
		}
	})
}

// Fault echoes its first N inputs, where N is the scope's "failAfter" property (default 1),
// and then fails with an error wrapping ErrInjected instead of handling the next one.
func Fault() Factory {
	return withScopeCheck(func(scope ldvalue.Value) Application {
		failAfter := scope.GetByKey("failAfter").IntValue()
		if failAfter <= 0 {
			failAfter = 1
		}
		return func(ctx context.Context, in InputSource, out OutputSink) error {
			for count := 0; ; count++ {
				message, done, err := receive(ctx, in)
				if err != nil || done {
					return err
				}
				if count >= failAfter {
					return fmt.Errorf("%w after %d inputs", ErrInjected, count)
				}
				if err := out.Send(ctx, message); err != nil {
					return err
				}
			}
		}
	})
}

// Idle never produces output and returns only when cancelled or disconnected.
func Idle() Factory {
	return withScopeCheck(func(ldvalue.Value) Application {
		return func(ctx context.Context, in InputSource, _ OutputSink) error {
			for {
				_, done, err := receive(ctx, in)
				if err != nil || done {
					return err
				}
			}
		}
	})
}

// Stubborn never produces output and ignores cancellation: it returns nil only after the
// scope's "holdMillis" property (default 200) has elapsed.
func Stubborn() Factory {
	return withScopeCheck(func(scope ldvalue.Value) Application {
		hold := time.Duration(scope.GetByKey("holdMillis").IntValue()) * time.Millisecond
		if hold <= 0 {
			hold = 200 * time.Millisecond
		}
		return func(context.Context, InputSource, OutputSink) error {
			time.Sleep(hold)
			return nil
		}
	})
}

// Panicky panics on its first input.
func Panicky() Factory {
	return withScopeCheck(func(ldvalue.Value) Application {
		return func(ctx context.Context, in InputSource, _ OutputSink) error {
			message, _, err := receive(ctx, in)
			if err != nil {
				return err
			}
			panic(fmt.Sprintf("cannot handle %q", typeOf(message)))
		}
	})
}

// Lifespan implements a startup/shutdown handshake: it answers lifespan.startup with
// lifespan.startup.complete, then lifespan.shutdown with lifespan.shutdown.complete and returns.
// Any other input is an error.
func Lifespan() Factory {
	return withScopeCheck(func(ldvalue.Value) Application {
		return func(ctx context.Context, in InputSource, out OutputSink) error {
			for _, step := range []struct{ expect, reply string }{
				{TypeStartup, TypeStartupComplete},
				{TypeShutdown, TypeShutdownComplete},
			} {
				message, err := in.Receive(ctx)
				if err != nil {
					return err
				}
				if t := typeOf(message); t != step.expect {
					return fmt.Errorf("expected %q, got %q", step.expect, t)
				}
				if err := out.Send(ctx, Message(step.reply)); err != nil {
					return err
				}
			}
			return nil
		}
	})
}
