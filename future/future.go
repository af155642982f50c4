// Package future provides a pending asynchronous result that many callers
// can share.
//
// A Future settles exactly once, with a value or an error. Callers may await
// it, poll it, or register callbacks that run on settlement.
package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrPanicked = errors.New("async function panicked")

// Settler is implemented by results that complete later. The callback runs
// once, with the failure or nil, as soon as the result settles.
type Settler interface {
	OnSettled(fn func(err error))
}

// Result is the settled outcome of a Future.
type Result[T any] struct {
	Value T
	Err   error
}

func ResultFrom[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Err: err}
}

var _ Settler = (*Future[any])(nil)

type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	res       Result[T]
	settled   bool
	callbacks []func(error)
}

// New returns a pending Future and the function that settles it.
// Only the first call to settle has an effect.
func New[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.settle
}

func Resolved[T any](v T) *Future[T] {
	f, settle := New[T]()
	settle(v, nil)
	return f
}

func Rejected[T any](err error) *Future[T] {
	f, settle := New[T]()
	var zero T
	settle(zero, err)
	return f
}

// Go runs fn on its own goroutine and returns its pending result.
// A panic inside fn settles the future with ErrPanicked.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f, settle := New[T]()
	ready := make(chan struct{})
	go func() {
		close(ready)

		select {
		case <-ctx.Done():
			var zero T
			settle(zero, ctx.Err())
			return
		default:
		}

		defer func() {
			if r := recover(); r != nil {
				var zero T
				settle(zero, fmt.Errorf("%w: %v", ErrPanicked, r))
			}
		}()
		settle(fn(ctx))
	}()
	<-ready
	return f
}

func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.res = ResultFrom(v, err)
	f.settled = true
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(err)
	}
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.res.Value, f.res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Poll returns the result without blocking; ok is false while pending.
func (f *Future[T]) Poll() (res Result[T], ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.res, f.settled
}

// OnSettled registers fn to run after settlement. If the future already
// settled, fn runs immediately on the calling goroutine.
func (f *Future[T]) OnSettled(fn func(err error)) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	err := f.res.Err
	f.mu.Unlock()
	fn(err)
}

// Then returns a future settled with fn applied to a successful value.
// Failures pass through unchanged.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next, settle := New[U]()
	f.OnSettled(func(err error) {
		if err != nil {
			var zero U
			settle(zero, err)
			return
		}
		settle(fn(f.res.Value))
	})
	return next
}
