package communicator

import (
	"context"
	"sync"

	"github.com/launchdarkly/app-communicator/framework/opt"
)

// queue is an unbounded FIFO with a single producer and a single consumer. Put never blocks.
// Consumers that find it empty wait on the channel returned by ready, which is closed by the
// next Put.
type queue[M any] struct {
	lock   sync.Mutex
	items  []M
	signal chan struct{}
}

func newQueue[M any]() *queue[M] {
	return &queue[M]{signal: make(chan struct{})}
}

func (q *queue[M]) Put(item M) {
	q.lock.Lock()
	q.items = append(q.items, item)
	close(q.signal)
	q.signal = make(chan struct{})
	q.lock.Unlock()
}

func (q *queue[M]) TryGet() opt.Maybe[M] {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.items) == 0 {
		return opt.None[M]()
	}
	return opt.Some(q.pop())
}

// Get blocks until an item is available or ctx is done, in which case it returns the context's
// cancellation cause.
func (q *queue[M]) Get(ctx context.Context) (M, error) {
	for {
		if item := q.TryGet(); item.IsDefined() {
			return item.Value(), nil
		}
		select {
		case <-q.ready():
		case <-ctx.Done():
			var empty M
			return empty, context.Cause(ctx)
		}
	}
}

func (q *queue[M]) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.items)
}

// ready returns a channel that is already closed if the queue is non-empty, or that will be
// closed by the next Put.
func (q *queue[M]) ready() <-chan struct{} {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.items) > 0 {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return q.signal
}

func (q *queue[M]) pop() M {
	var empty M
	item := q.items[0]
	q.items[0] = empty
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item
}
