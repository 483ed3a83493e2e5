package annotated

import (
	"context"
	"reflect"
	"sync"
)

// Future is the result of a method that completes asynchronously. The
// handler returns it at once and the response is written when it is
// completed.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewFuture returns an incomplete future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future already holding v.
func Completed[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Complete(v)
	return f
}

// Failed returns a future already holding err.
func Failed[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Fail(err)
	return f
}

// Go runs fn in a new goroutine and completes the future with its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := NewFuture[T]()
	go func() {
		v, err := fn()
		if err != nil {
			f.Fail(err)
			return
		}
		f.Complete(v)
	}()
	return f
}

// Complete sets the value. Only the first Complete or Fail has effect.
func (f *Future[T]) Complete(v T) {
	f.once.Do(func() {
		f.val = v
		close(f.done)
	})
}

// Fail sets the error. Only the first Complete or Fail has effect.
func (f *Future[T]) Fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future is completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future completes or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// ContainerTypeArgs reports T. An interface T is an unbound argument.
func (*Future[T]) ContainerTypeArgs() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T]()}
}

func (f *Future[T]) awaitAny(ctx context.Context) (any, error) {
	if f == nil {
		return nil, nil
	}
	v, err := f.Await(ctx)
	return v, err
}

type awaiter interface {
	awaitAny(ctx context.Context) (any, error)
}
