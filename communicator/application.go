package communicator

import "context"

// InputSource is how an application pulls its next input message. Receive blocks until a
// message is available or ctx is done, in which case it returns the cancellation cause.
type InputSource[M any] interface {
	Receive(ctx context.Context) (M, error)
}

// OutputSink is how an application pushes an output message. Send does not block, since the
// output channel is unbounded, but it returns an error if ctx is already done so that a cancelled
// application stops producing.
type OutputSink[M any] interface {
	Send(ctx context.Context, message M) error
}

// Application is one running instance of the application under test. It should return when it
// is finished, when it fails, or as soon as possible after ctx is cancelled; returning ctx's
// error (or context.Cause(ctx)) after cancellation is the normal way to acknowledge it.
type Application[M any] func(ctx context.Context, in InputSource[M], out OutputSink[M]) error

// Factory creates an application instance for a scope. An error from the factory is returned
// directly by New and no application is started.
type Factory[S, M any] func(scope S) (Application[M], error)

type inputSource[M any] struct {
	queue *queue[M]
}

func (s inputSource[M]) Receive(ctx context.Context) (M, error) {
	return s.queue.Get(ctx)
}

type outputSink[M any] struct {
	queue *queue[M]
}

func (s outputSink[M]) Send(ctx context.Context, message M) error {
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	s.queue.Put(message)
	return nil
}
