package stream

import (
	"context"
	"sync/atomic"
	"time"

	"go-reactor/pkg/logging/logfields"
)

// ============================================================================
// COUNT AND TIME BOUNDED OPERATORS
// ============================================================================

// Take forwards the first n elements, then completes and stops the source.
// Take(0) completes without subscribing to the source. A negative n fails
// with KindInvalidArgument.
func (s Stream[T]) Take(n int) Stream[T] {
	if n < 0 {
		return Fail[T](invalidArgument("take", "count must be non-negative, got %d", n))
	}

	return newStream("take", s.async, func(ctx context.Context, next Receiver[T]) error {
		if n == 0 {
			return nil
		}
		limit := newStop("take")
		taken := 0
		err := s.exec(ctx, func(item T) error {
			taken++
			if err := next(item); err != nil {
				return err
			}
			if taken >= n {
				return limit
			}
			return nil
		})
		return limit.swallow(err)
	})
}

// Skip drops the first n elements and forwards the rest. A negative n fails
// with KindInvalidArgument.
func (s Stream[T]) Skip(n int) Stream[T] {
	if n < 0 {
		return Fail[T](invalidArgument("skip", "count must be non-negative, got %d", n))
	}

	return newStream("skip", s.async, func(ctx context.Context, next Receiver[T]) error {
		skipped := 0
		return s.exec(ctx, func(item T) error {
			if skipped < n {
				skipped++
				return nil
			}
			return next(item)
		})
	})
}

// TakeFor forwards the elements that arrive within d of the subscription,
// then completes and cancels the source. Elapsed time is read from the timer
// scheduler's clock. WithBoundary decides whether an element arriving at
// exactly d is forwarded (BoundaryInclusive) or not (BoundaryExclusive, the default).
//
// Parameters:
//   d: The length of the window.
//   opts: WithTimer, WithBoundary.
//
// Returns:
//   Stream[T]: An asynchronous stream of the elements inside the window.
func (s Stream[T]) TakeFor(d time.Duration, opts ...Option) Stream[T] {
	cfg := ApplyOptions(opts...)
	if d < 0 {
		d = 0
	}

	return newStream("takeFor", true, func(ctx context.Context, next Receiver[T]) error {
		clk := cfg.timer().Clock()
		start := clk.Now()

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		// The timer fires on the first instant outside the window.
		deadline := d
		if cfg.Boundary == BoundaryInclusive {
			deadline += time.Nanosecond
		}
		timer := clk.NewTimer(deadline)

		var closed atomic.Bool
		timerDone := make(chan struct{})
		go func() {
			defer close(timerDone)
			select {
			case <-timer.C():
				closed.Store(true)
				cancel()
			case <-runCtx.Done():
			}
		}()

		expired := newStop("takeFor")
		err := s.exec(runCtx, func(item T) error {
			if !cfg.Boundary.within(clk.Since(start), d) {
				closed.Store(true)
				return expired
			}
			return next(item)
		})

		cancel()
		timer.Stop()
		<-timerDone

		err = expired.swallow(err)
		if closed.Load() && ctx.Err() == nil && (err == nil || isContextErr(err)) {
			log.WithField(logfields.Duration, d).Debug("Take window closed")
			return nil
		}
		return err
	})
}

// SkipFor drops the elements that arrive within d of the subscription and
// forwards the rest. WithBoundary decides whether an element arriving at
// exactly d is dropped (BoundaryInclusive) or forwarded (BoundaryExclusive, the default).
func (s Stream[T]) SkipFor(d time.Duration, opts ...Option) Stream[T] {
	cfg := ApplyOptions(opts...)

	return newStream("skipFor", s.async, func(ctx context.Context, next Receiver[T]) error {
		clk := cfg.timer().Clock()
		start := clk.Now()
		open := false
		return s.exec(ctx, func(item T) error {
			if !open {
				if cfg.Boundary.within(clk.Since(start), d) {
					return nil
				}
				open = true
			}
			return next(item)
		})
	})
}

// DelaySubscription waits d on the timer scheduler's clock before subscribing to s.
func (s Stream[T]) DelaySubscription(d time.Duration, opts ...Option) Stream[T] {
	cfg := ApplyOptions(opts...)

	return newStream("delaySubscription", true, func(ctx context.Context, next Receiver[T]) error {
		if err := sleep(ctx, cfg.timer(), d); err != nil {
			return err
		}
		return s.exec(ctx, next)
	})
}

// DelayElements holds every element for d before forwarding it. Each hold
// starts when the element arrives, and the source is held back meanwhile, so
// order is preserved and consecutive elements are at least d apart.
//
// Parameters:
//   d: The hold applied to each element.
//   opts: WithTimer.
//
// Returns:
//   Stream[T]: An asynchronous stream with the same elements.
func (s Stream[T]) DelayElements(d time.Duration, opts ...Option) Stream[T] {
	cfg := ApplyOptions(opts...)

	return newStream("delayElements", true, func(ctx context.Context, next Receiver[T]) error {
		timer := cfg.timer()
		return s.exec(ctx, func(item T) error {
			if err := sleep(ctx, timer, d); err != nil {
				return err
			}
			return next(item)
		})
	})
}

// SubscribeOn runs the subscription to s, and with it the production of every
// element, as a task on sched. The caller waits for the task to finish.
// A SubscribeOn nested inside a task of the same ParallelScheduler reuses
// the slot of that task.
func (s Stream[T]) SubscribeOn(sched Scheduler) Stream[T] {
	if sched == nil {
		return s
	}
	_, inline := sched.(immediateScheduler)

	return newStream("subscribeOn", anyAsync(s.async, !inline), func(ctx context.Context, next Receiver[T]) error {
		done := make(chan error, 1)
		err := sched.Schedule(ctx, func() {
			done <- s.exec(withSlot(ctx, sched), next)
		})
		if err != nil {
			return err
		}
		return <-done
	})
}

// sleep blocks for d on the clock of t, or until ctx ends.
func sleep(ctx context.Context, t *TimerScheduler, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := t.Clock().NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}
