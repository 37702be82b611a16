package dispatch

import (
	"context"
	"sync"
)

// Future is the eventual result of a scheduled unit. Discarding a Future does
// not cancel its unit.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

func (f *Future[T]) fail(err error) {
	var zero T
	f.complete(zero, err)
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the unit finishes or ctx is done. A ctx error leaves the
// unit running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Deliver calls fn with the result on the interaction thread once the unit
// finishes. The call is dropped if the interaction thread has stopped.
func (f *Future[T]) Deliver(d *Dispatcher, fn func(T, error)) {
	go func() {
		<-f.done
		if err := d.ui.Post(func() { fn(f.val, f.err) }); err != nil {
			d.log.WithError(err).Debug("result not delivered")
		}
	}()
}
