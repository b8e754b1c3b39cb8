package stream

import (
	"context"
	"errors"
	"iter"
	"math"
	"time"
)

// ============================================================================
// SOURCE OPERATORS
// ============================================================================

// Just creates a stream that emits the given values in argument order and
// then completes, synchronously relative to the subscription.
func Just[T any](values ...T) Stream[T] {
	s := FromSlice(values)
	s.op = "just"
	return s
}

// FromSlice creates a stream that emits the elements of items in order.
// The slice is copied so later changes by the caller are not observed.
//
// Parameters:
//   items: The elements to emit.
//
// Returns:
//   Stream[T]: A synchronous, finite stream.
func FromSlice[T any](items []T) Stream[T] {
	data := make([]T, len(items))
	copy(data, items)

	return newStream("fromSlice", false, func(ctx context.Context, next Receiver[T]) error {
		for _, item := range data {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := next(item); err != nil {
				return err
			}
		}
		return nil
	})
}

// FromIter creates a stream that pulls values from a lazily produced sequence.
// The sequence is ranged again on every subscription and may be infinite; an
// infinite sequence must be bounded downstream (for example with Take).
func FromIter[T any](seq iter.Seq[T]) Stream[T] {
	return newStream("fromIter", false, func(ctx context.Context, next Receiver[T]) error {
		for item := range seq {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := next(item); err != nil {
				return err
			}
		}
		return nil
	})
}

// Range creates a stream of count consecutive integers starting at start.
// A negative count, or a range that overflows int, fails the subscription
// with KindInvalidArgument.
//
// Parameters:
//   start: The first integer emitted.
//   count: The number of integers to emit.
//
// Returns:
//   Stream[int]: A synchronous, finite stream.
func Range(start, count int) Stream[int] {
	if count < 0 {
		return Fail[int](invalidArgument("range", "count must be non-negative, got %d", count))
	}
	if count > 0 && start > math.MaxInt-(count-1) {
		return Fail[int](invalidArgument("range", "start %d + count %d overflows int", start, count))
	}

	return newStream("range", false, func(ctx context.Context, next Receiver[int]) error {
		for i := 0; i < count; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := next(start + i); err != nil {
				return err
			}
		}
		return nil
	})
}

// Interval creates an infinite stream of increasing integers, starting at 0,
// emitting one every period on the timer scheduler's clock. The producer
// sleeps between ticks without blocking other subscriptions. A non-positive
// period fails with KindInvalidArgument.
//
// Parameters:
//   period: The delay before the first tick and between ticks.
//   opts: WithTimer selects the timer scheduler.
//
// Returns:
//   Stream[int64]: An asynchronous, infinite stream.
func Interval(period time.Duration, opts ...Option) Stream[int64] {
	if period <= 0 {
		return Fail[int64](invalidArgument("interval", "period must be positive, got %s", period))
	}
	cfg := ApplyOptions(opts...)

	return newStream("interval", true, func(ctx context.Context, next Receiver[int64]) error {
		ticker := cfg.timer().Clock().NewTicker(period)
		defer ticker.Stop()

		for tick := int64(0); ; tick++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C():
			}
			if err := next(tick); err != nil {
				return err
			}
		}
	})
}

// Empty creates a stream that completes without emitting.
func Empty[T any]() Stream[T] {
	return newStream("empty", false, func(context.Context, Receiver[T]) error {
		return nil
	})
}

// Never creates a stream that neither emits nor terminates until cancelled.
func Never[T any]() Stream[T] {
	return newStream("never", true, func(ctx context.Context, _ Receiver[T]) error {
		<-ctx.Done()
		return ctx.Err()
	})
}

// Fail creates a stream that fails immediately with err. Errors that are not
// already classified are reported as KindUpstreamFailure.
func Fail[T any](err error) Stream[T] {
	if err == nil {
		err = errors.New("nil error")
	}
	err = classify(KindUpstreamFailure, "fail", err)
	return newStream("fail", false, func(context.Context, Receiver[T]) error {
		return err
	})
}

// Defer calls factory on every subscription and subscribes to the stream it returns.
// A panic in factory fails the subscription with KindTransformFailure.
func Defer[T any](factory func() Stream[T]) Stream[T] {
	return newStream("defer", false, func(ctx context.Context, next Receiver[T]) (err error) {
		var s Stream[T]
		func() {
			defer recoverTransform("defer", &err)
			s = factory()
		}()
		if err != nil {
			return err
		}
		return s.exec(ctx, next)
	})
}

// Generate creates a source stream from a user-provided generator function.
// The generator receives an 'emit' callback to push individual items and must
// stop and return as soon as emit returns an error. A generator error that is
// not the one returned by emit fails the stream with KindUpstreamFailure.
//
// Parameters:
//   gen: A function that generates data. It receives the subscription context and an `emit` function.
//
// Returns:
//   Stream[T]: A new stream containing the generated items.
func Generate[T any](gen func(ctx context.Context, emit func(T) error) error) Stream[T] {
	return newStream("generate", false, func(ctx context.Context, next Receiver[T]) error {
		var downstreamErr error

		emit := func(item T) error {
			if downstreamErr != nil {
				return downstreamErr
			}
			if err := ctx.Err(); err != nil {
				downstreamErr = err
				return err
			}
			if err := next(item); err != nil {
				downstreamErr = err
				return err
			}
			return nil
		}

		genErr := gen(ctx, emit)
		if downstreamErr != nil {
			// The generator may return nil or its own error after a stop;
			// the downstream reason wins either way.
			return downstreamErr
		}
		return classify(KindUpstreamFailure, "generate", genErr)
	})
}
