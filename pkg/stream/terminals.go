package stream

import (
	"context"

	"go-reactor/pkg/metrics"
)

// ============================================================================
// TERMINALS (SUBSCRIBERS / FOLDS)
// ============================================================================

// Subscribe activates s and delivers its signals to o.
//
// A synchronous stream runs on the calling goroutine: it has already
// terminated when Subscribe returns. An asynchronous stream (one built with a
// time operator, Never, or a scheduler hop) runs in a goroutine owned by the
// returned Subscription, and Subscribe returns immediately.
//
// Cancelling ctx, or calling Cancel on the subscription, stops delivery. A
// cancelled subscription ends in StateCancelled and o receives no terminal signal.
//
// Parameters:
//   ctx: The parent context of the subscription.
//   o: The observer receiving the signals.
//
// Returns:
//   *Subscription: The live subscription.
func (s Stream[T]) Subscribe(ctx context.Context, o Observer[T]) *Subscription {
	sub := newSubscription(ctx, s.Name())

	run := func() {
		if !sub.activate() {
			return
		}
		err := s.exec(sub.ctx, func(item T) error {
			if err := sub.ctx.Err(); err != nil {
				return err
			}
			metrics.Engine.ValuesDelivered.Inc()
			o.OnNext(item)
			return nil
		})
		sub.terminate(err, o.OnComplete, o.OnError)
	}

	if !s.async {
		run()
		return sub
	}
	if err := DefaultTimer().Schedule(sub.ctx, run); err != nil {
		sub.reject(err, o.OnError)
	}
	return sub
}

// SubscribeFunc is Subscribe with plain callbacks. Nil callbacks are ignored.
func (s Stream[T]) SubscribeFunc(ctx context.Context, next func(T), onError func(error), onComplete func()) *Subscription {
	return s.Subscribe(ctx, ObserverFuncs[T]{Next: next, Error: onError, Complete: onComplete})
}

// Observe runs s on the calling goroutine, calling next for every element.
// It blocks until the stream terminates or ctx ends, and returns nil on
// completion or the failure otherwise.
func (s Stream[T]) Observe(ctx context.Context, next func(T)) error {
	return s.exec(ctx, func(item T) error {
		next(item)
		return nil
	})
}

// ToSlice blocks until s completes and returns every element in delivery order.
func ToSlice[T any](ctx context.Context, s Stream[T]) ([]T, error) {
	return Reduce(ctx, s, make([]T, 0), func(acc []T, item T) []T {
		return append(acc, item)
	})
}

// Reduce consumes the entire stream and folds the results into a single accumulator using the provided function.
// It blocks until the stream is exhausted, the context is cancelled, or an error occurs.
// A panic in fn is reported as a KindTransformFailure error.
//
// Parameters:
//   ctx: The context for cancellation.
//   s: The stream to reduce.
//   init: The initial value of the accumulator.
//   fn: The reduction function that combines the accumulator and the next element.
//
// Returns:
//   Acc: The final accumulated value.
//   error: An error if the pipeline fails or is cancelled.
func Reduce[T, Acc any](
	ctx context.Context,
	s Stream[T],
	init Acc,
	fn func(Acc, T) Acc,
) (Acc, error) {
	acc := init
	err := s.exec(ctx, func(item T) (err error) {
		defer recoverTransform("reduce", &err)
		acc = fn(acc, item)
		return nil
	})
	if err != nil {
		var zero Acc
		return zero, err
	}
	return acc, nil
}

// BlockLast blocks until s completes and returns its last element. ok is
// false when the stream completed empty.
func BlockLast[T any](ctx context.Context, s Stream[T]) (last T, ok bool, err error) {
	err = s.exec(ctx, func(item T) error {
		last, ok = item, true
		return nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return last, ok, nil
}
