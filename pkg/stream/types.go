package stream

import (
	"context"

	"go-reactor/pkg/logging"
	"go-reactor/pkg/logging/logfields"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "stream")

// ============================================================================
// BLUEPRINT TYPES (DEFINITION)
// ============================================================================

// Receiver is the push callback an operator hands to its upstream.
// Returning an error tells the upstream to stop producing and return that error.
type Receiver[T any] func(T) error

// Stream is an immutable description of a cold sequence of values.
// Nothing runs until Subscribe (or a blocking terminal) is called, and each
// subscription re-executes the production from scratch.
//
// The zero Stream is empty.
type Stream[T any] struct {
	op string
	// async is set when activation must not wait for production to end:
	// time-driven operators and operators that hop to another scheduler.
	async bool
	run   func(ctx context.Context, next Receiver[T]) error
}

func newStream[T any](op string, async bool, run func(context.Context, Receiver[T]) error) Stream[T] {
	return Stream[T]{op: op, async: async, run: run}
}

// Name returns the name of the outermost operator of s.
func (s Stream[T]) Name() string {
	if s.op == "" {
		return "empty"
	}
	return s.op
}

// IsAsync reports whether subscribing to s returns before production ends.
func (s Stream[T]) IsAsync() bool {
	return s.async
}

// exec runs the production of s, pushing every value to next. A nil return
// means completion.
func (s Stream[T]) exec(ctx context.Context, next Receiver[T]) error {
	if s.run == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(ctx, next)
}

// Observer receives the signals of one subscription: zero or more OnNext
// calls followed by exactly one of OnError or OnComplete.
type Observer[T any] interface {
	OnNext(value T)
	OnError(err error)
	OnComplete()
}

// ObserverFuncs adapts plain functions into an Observer. Nil fields are ignored.
type ObserverFuncs[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

func (o ObserverFuncs[T]) OnNext(value T) {
	if o.Next != nil {
		o.Next(value)
	}
}

func (o ObserverFuncs[T]) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o ObserverFuncs[T]) OnComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}

// Pair is the value emitted by Zip.
type Pair[L, R any] struct {
	Left  L
	Right R
}

func anyAsync(flags ...bool) bool {
	for _, f := range flags {
		if f {
			return true
		}
	}
	return false
}
