package stream

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"go-reactor/pkg/logging/logfields"
	"go-reactor/pkg/stream/queue"
)

// ============================================================================
// COMBINATORS
// ============================================================================

// Merge combines multiple streams of the same type into a single output stream.
// Every source is subscribed concurrently and values are delivered in arrival
// order, one at a time. The merged stream completes after all sources complete;
// the first failure cancels the remaining sources and fails the output.
//
// Parameters:
//   streams: A variadic list of streams to merge.
//
// Returns:
//   Stream[T]: A single stream containing elements from all sources.
func Merge[T any](streams ...Stream[T]) Stream[T] {
	async := false
	for _, s := range streams {
		async = anyAsync(async, s.async)
	}

	return newStream("merge", async, func(ctx context.Context, next Receiver[T]) error {
		g, gCtx := errgroup.WithContext(ctx)

		// The gate serializes deliveries so downstream never sees two values at once.
		var gate sync.Mutex
		deliver := func(item T) error {
			gate.Lock()
			defer gate.Unlock()
			if err := gCtx.Err(); err != nil {
				return err
			}
			return next(item)
		}

		for _, s := range streams {
			g.Go(func() error {
				return s.exec(gCtx, deliver)
			})
		}
		return g.Wait()
	})
}

// MergeWith merges s with others. See Merge.
func (s Stream[T]) MergeWith(others ...Stream[T]) Stream[T] {
	all := make([]Stream[T], 0, len(others)+1)
	all = append(all, s)
	all = append(all, others...)
	return Merge(all...)
}

// First subscribes to every stream and mirrors the first one to emit any
// signal, be it a value, completion or failure. The race is decided by that
// first signal rather than the first value: a source that completes empty or
// fails before any other emits wins, and First then completes empty or fails
// with it. The other subscriptions are cancelled, and First waits for them to
// wind down before it terminates.
// Simultaneous first signals are resolved by whichever source claims the race
// first. With no streams, First completes immediately.
func First[T any](streams ...Stream[T]) Stream[T] {
	async := false
	for _, s := range streams {
		async = anyAsync(async, s.async)
	}

	return newStream("first", async, func(ctx context.Context, next Receiver[T]) error {
		if len(streams) == 0 {
			return nil
		}

		lost := newStop("first")
		cancels := make([]context.CancelFunc, len(streams))
		ctxs := make([]context.Context, len(streams))
		for i := range streams {
			ctxs[i], cancels[i] = context.WithCancel(ctx)
		}
		defer func() {
			for _, cancel := range cancels {
				cancel()
			}
		}()

		var mu sync.Mutex
		winner := -1
		claim := func(i int) bool {
			mu.Lock()
			defer mu.Unlock()
			if winner == -1 {
				winner = i
				for j, cancel := range cancels {
					if j != i {
						cancel()
					}
				}
				log.WithField(logfields.Source, i).Debug("First source claimed the race")
			}
			return winner == i
		}

		var g errgroup.Group
		for i, s := range streams {
			g.Go(func() error {
				err := s.exec(ctxs[i], func(item T) error {
					if !claim(i) {
						return lost
					}
					return next(item)
				})
				if !claim(i) {
					// Losers are silenced whatever they ended with.
					return nil
				}
				return err
			})
		}
		return g.Wait()
	})
}

// Zip pairs the i-th value of a with the i-th value of b.
// See ZipWith for completion and failure rules.
func Zip[A, B any](a Stream[A], b Stream[B]) Stream[Pair[A, B]] {
	s := ZipWith(a, b, func(left A, right B) Pair[A, B] {
		return Pair[A, B]{Left: left, Right: right}
	})
	s.op = "zip"
	return s
}

// ZipWith subscribes to both streams concurrently and combines values by
// arrival index. Values that arrive early wait in a per-side queue.
//
// The output completes as soon as one side has completed and has no queued
// values left; leftovers of the other side are discarded and its subscription
// is cancelled. A failure on either side fails the output. A panic in combine
// fails the output with KindTransformFailure.
//
// Parameters:
//   a: The left stream.
//   b: The right stream.
//   combine: Builds an output value from one value of each side.
//
// Returns:
//   Stream[R]: A stream as long as the shorter input.
func ZipWith[A, B, R any](a Stream[A], b Stream[B], combine func(A, B) R) Stream[R] {
	return newStream("zipWith", anyAsync(a.async, b.async), func(ctx context.Context, next Receiver[R]) error {
		exhausted := newStop("zip")
		var left queue.Queue[A] = queue.NewRingBuffer[A](DefaultQueueCapacity)
		var right queue.Queue[B] = queue.NewRingBuffer[B](DefaultQueueCapacity)

		// mu guards both queues and serializes emission.
		var mu sync.Mutex

		// drain emits every complete pair. Callers hold mu.
		drain := func() error {
			for left.Len() > 0 && right.Len() > 0 {
				l, _ := left.Poll()
				r, _ := right.Poll()
				out, err := zipCombine(combine, l, r)
				if err != nil {
					return err
				}
				if err := next(out); err != nil {
					return err
				}
			}
			if left.IsClosed() || right.IsClosed() {
				// The surplus of the longer side can never be paired.
				left.Clear()
				right.Clear()
				return exhausted
			}
			return nil
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			err := a.exec(gCtx, func(item A) error {
				mu.Lock()
				defer mu.Unlock()
				left.Offer(item)
				return drain()
			})
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			left.Close()
			return drain()
		})
		g.Go(func() error {
			err := b.exec(gCtx, func(item B) error {
				mu.Lock()
				defer mu.Unlock()
				right.Offer(item)
				return drain()
			})
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			right.Close()
			return drain()
		})

		return exhausted.swallow(g.Wait())
	})
}

func zipCombine[A, B, R any](combine func(A, B) R, l A, r B) (out R, err error) {
	defer recoverTransform("zip", &err)
	return combine(l, r), nil
}
