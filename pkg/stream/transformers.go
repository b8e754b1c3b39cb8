package stream

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"go-reactor/pkg/logging/logfields"
)

// ============================================================================
// TRANSFORMATION OPERATORS (FUNCTORS)
// ============================================================================

// applyTransform calls a user-supplied function, converting a panic into a
// KindTransformFailure error attributed to op.
func applyTransform[In, Out any](op string, f func(In) Out, item In) (out Out, err error) {
	defer recoverTransform(op, &err)
	return f(item), nil
}

// Map applies mapper to each element, preserving order.
// A panic in mapper fails the stream with KindTransformFailure.
//
// Parameters:
//   s: The input stream to transform.
//   mapper: The function to apply to each element.
//
// Returns:
//   Stream[Out]: A new stream containing the transformed elements.
func Map[In, Out any](s Stream[In], mapper func(In) Out) Stream[Out] {
	return newStream("map", s.async, func(ctx context.Context, next Receiver[Out]) error {
		return s.exec(ctx, func(item In) error {
			out, err := applyTransform("map", mapper, item)
			if err != nil {
				return err
			}
			return next(out)
		})
	})
}

// TryMap is Map for mappers that can fail. A returned error (or a panic)
// fails the stream with KindTransformFailure.
func TryMap[In, Out any](s Stream[In], mapper func(In) (Out, error)) Stream[Out] {
	return newStream("tryMap", s.async, func(ctx context.Context, next Receiver[Out]) error {
		return s.exec(ctx, func(item In) (err error) {
			var out Out
			func() {
				defer recoverTransform("tryMap", &err)
				out, err = mapper(item)
			}()
			if err != nil {
				return classify(KindTransformFailure, "tryMap", err)
			}
			return next(out)
		})
	})
}

// Filter forwards only the elements for which pred returns true, preserving order.
// A panic in pred fails the stream with KindTransformFailure.
func (s Stream[T]) Filter(pred func(T) bool) Stream[T] {
	return newStream("filter", s.async, func(ctx context.Context, next Receiver[T]) error {
		return s.exec(ctx, func(item T) error {
			keep, err := applyTransform("filter", pred, item)
			if err != nil {
				return err
			}
			if !keep {
				return nil
			}
			return next(item)
		})
	})
}

// FlatMap maps each element to an inner stream and merges the inner streams
// into the output.
//
// Synchronous inner streams are drained inline, so their values keep the
// source order. Asynchronous inner streams run concurrently, at most
// WithConcurrency at a time (DefaultFlatMapConcurrency by default), and their
// values interleave in arrival order. WithScheduler activates every inner
// stream on the given scheduler via SubscribeOn.
//
// The output completes once the source and every inner stream completed. Any
// failure, including a panic in mapper (KindTransformFailure), cancels the
// source and all inner streams and fails the output.
//
// Parameters:
//   s: The input stream.
//   mapper: Builds the inner stream of an element.
//   opts: WithScheduler, WithConcurrency.
//
// Returns:
//   Stream[Out]: The merged inner values.
func FlatMap[In, Out any](s Stream[In], mapper func(In) Stream[Out], opts ...Option) Stream[Out] {
	cfg := ApplyOptions(opts...)
	async := anyAsync(s.async, cfg.Scheduler != nil)

	return newStream("flatMap", async, func(ctx context.Context, next Receiver[Out]) error {
		g, gCtx := errgroup.WithContext(ctx)
		sem := semaphore.NewWeighted(int64(cfg.Concurrency))

		var gate sync.Mutex
		deliver := func(item Out) error {
			gate.Lock()
			defer gate.Unlock()
			if err := gCtx.Err(); err != nil {
				return err
			}
			return next(item)
		}

		g.Go(func() error {
			return s.exec(gCtx, func(item In) error {
				inner, err := applyTransform("flatMap", mapper, item)
				if err != nil {
					return err
				}
				if cfg.Scheduler != nil {
					inner = inner.SubscribeOn(cfg.Scheduler)
				}
				if !inner.async {
					return inner.exec(gCtx, deliver)
				}
				if err := sem.Acquire(gCtx, 1); err != nil {
					return err
				}
				g.Go(func() error {
					defer sem.Release(1)
					return inner.exec(gCtx, deliver)
				})
				return nil
			})
		})
		return g.Wait()
	})
}

// Distinct forwards each element the first time it is seen in a subscription.
func Distinct[T comparable](s Stream[T]) Stream[T] {
	d := DistinctBy(s, func(item T) T { return item })
	d.op = "distinct"
	return d
}

// DistinctBy forwards an element only if no earlier element of the same
// subscription had the same key. A panic in key fails with KindTransformFailure.
func DistinctBy[T any, K comparable](s Stream[T], key func(T) K) Stream[T] {
	return newStream("distinctBy", s.async, func(ctx context.Context, next Receiver[T]) error {
		seen := make(map[K]struct{})
		return s.exec(ctx, func(item T) error {
			k, err := applyTransform("distinct", key, item)
			if err != nil {
				return err
			}
			if _, ok := seen[k]; ok {
				return nil
			}
			seen[k] = struct{}{}
			return next(item)
		})
	})
}

// Buffer groups consecutive elements into slices of size elements. The last,
// possibly shorter, group is emitted when the source completes and dropped if
// it fails. A non-positive size fails with KindInvalidArgument.
//
// Parameters:
//   s: The input stream.
//   size: The number of elements per group.
//
// Returns:
//   Stream[[]T]: A stream of groups in source order.
func Buffer[T any](s Stream[T], size int) Stream[[]T] {
	if size <= 0 {
		return Fail[[]T](invalidArgument("buffer", "size must be positive, got %d", size))
	}

	return newStream("buffer", s.async, func(ctx context.Context, next Receiver[[]T]) error {
		buf := make([]T, 0, size)
		err := s.exec(ctx, func(item T) error {
			buf = append(buf, item)
			if len(buf) < size {
				return nil
			}
			full := buf
			buf = make([]T, 0, size)
			return next(full)
		})
		if err != nil {
			return err
		}
		if len(buf) > 0 {
			return next(buf)
		}
		return nil
	})
}

// CollectList emits every element as one slice when the source completes.
// An empty source yields an empty, non-nil slice.
func CollectList[T any](s Stream[T]) Stream[[]T] {
	return newStream("collectList", s.async, func(ctx context.Context, next Receiver[[]T]) error {
		acc := make([]T, 0)
		err := s.exec(ctx, func(item T) error {
			acc = append(acc, item)
			return nil
		})
		if err != nil {
			return err
		}
		return next(acc)
	})
}

// CollectMap emits one map from key(element) to element when the source
// completes. Later elements overwrite earlier ones with the same key.
func CollectMap[T any, K comparable](s Stream[T], key func(T) K) Stream[map[K]T] {
	m := CollectMapWith(s, key, func(item T) T { return item })
	m.op = "collectMap"
	return m
}

// CollectMapWith emits one map from key(element) to value(element) when the
// source completes. Later elements overwrite earlier ones with the same key.
// A panic in key or value fails with KindTransformFailure.
func CollectMapWith[T any, K comparable, V any](s Stream[T], key func(T) K, value func(T) V) Stream[map[K]V] {
	return newStream("collectMapWith", s.async, func(ctx context.Context, next Receiver[map[K]V]) error {
		acc := make(map[K]V)
		err := s.exec(ctx, func(item T) error {
			k, err := applyTransform("collectMap", key, item)
			if err != nil {
				return err
			}
			v, err := applyTransform("collectMap", value, item)
			if err != nil {
				return err
			}
			acc[k] = v
			return nil
		})
		if err != nil {
			return err
		}
		return next(acc)
	})
}

// Log traces every signal that passes through it at info level: subscription,
// each value, completion, failure and cancellation. An empty category defaults
// to the name of the upstream operator.
func (s Stream[T]) Log(category string) Stream[T] {
	if category == "" {
		category = s.Name()
	}

	return newStream("log", s.async, func(ctx context.Context, next Receiver[T]) error {
		scopedLog := log.WithField(logfields.Category, category)
		signal := func(name string) *logrus.Entry {
			return scopedLog.WithField(logfields.Signal, name)
		}

		signal("onSubscribe").Info("Subscribed")
		err := s.exec(ctx, func(item T) error {
			signal("onNext").WithField(logfields.Value, item).Info("Value")
			return next(item)
		})

		switch {
		case err == nil:
			signal("onComplete").Info("Completed")
		case ctx.Err() != nil || isStop(err):
			signal("cancel").Info("Cancelled")
		default:
			signal("onError").WithError(err).Info("Failed")
		}
		return err
	})
}
