// Package streamtest verifies the signals of a stream against a script of
// expectations.
//
//	err := streamtest.Create(stream.Just(1, 2, 3)).
//		ExpectNext(1, 2).
//		ExpectNextCount(1).
//		VerifyComplete()
package streamtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"

	"go-reactor/pkg/stream"
)

// DefaultTimeout bounds a verification that never sees a terminal signal.
const DefaultTimeout = 5 * time.Second

// MismatchError reports the first observed value that diverged from the script.
type MismatchError struct {
	// Index is the position of the value in the stream.
	Index    int
	Expected any
	Actual   any
	// Diff is a go-cmp diff, when both sides are values.
	Diff string
}

func (e *MismatchError) Error() string {
	if e.Diff != "" {
		return fmt.Sprintf("value %d mismatch (-expected +actual):\n%s", e.Index, e.Diff)
	}
	return fmt.Sprintf("value %d: expected %v, got %v", e.Index, e.Expected, e.Actual)
}

// Option configures a Verifier.
type Option func(*config)

type config struct {
	timeout time.Duration
	cmpOpts []cmp.Option
}

// WithTimeout bounds the whole verification.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCmpOptions passes options to go-cmp when values are compared.
func WithCmpOptions(opts ...cmp.Option) Option {
	return func(c *config) {
		c.cmpOpts = append(c.cmpOpts, opts...)
	}
}

// step consumes values starting at the cursor of a run.
type step[T any] func(r *run[T]) error

// Verifier is a script of expectations about one subscription to a stream.
// Expectations are checked in order; the script ends with one of the Verify methods.
type Verifier[T any] struct {
	s     stream.Stream[T]
	cfg   config
	steps []step[T]
}

// Create starts a script for s.
func Create[T any](s stream.Stream[T], opts ...Option) *Verifier[T] {
	cfg := config{timeout: DefaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Verifier[T]{s: s, cfg: cfg}
}

// ExpectNext expects the next values to equal values, in order.
func (v *Verifier[T]) ExpectNext(values ...T) *Verifier[T] {
	for _, want := range values {
		v.steps = append(v.steps, func(r *run[T]) error {
			got, idx, err := r.next()
			if err != nil {
				return err
			}
			if !cmp.Equal(want, got, v.cfg.cmpOpts...) {
				return &MismatchError{
					Index:    idx,
					Expected: want,
					Actual:   got,
					Diff:     cmp.Diff(want, got, v.cfg.cmpOpts...),
				}
			}
			return nil
		})
	}
	return v
}

// ExpectNextMatches expects the next value to satisfy pred.
func (v *Verifier[T]) ExpectNextMatches(pred func(T) bool) *Verifier[T] {
	v.steps = append(v.steps, func(r *run[T]) error {
		got, idx, err := r.next()
		if err != nil {
			return err
		}
		if !pred(got) {
			return &MismatchError{Index: idx, Expected: "value matching predicate", Actual: got}
		}
		return nil
	})
	return v
}

// ExpectNextCount expects n more values, whatever they are.
func (v *Verifier[T]) ExpectNextCount(n int) *Verifier[T] {
	v.steps = append(v.steps, func(r *run[T]) error {
		for i := 0; i < n; i++ {
			if _, _, err := r.next(); err != nil {
				return err
			}
		}
		return nil
	})
	return v
}

// VerifyComplete runs the script and expects completion with no unexpected values.
func (v *Verifier[T]) VerifyComplete() error {
	return v.verify(func(r *run[T]) error {
		if err := r.terminal(); err != nil {
			return err
		}
		if err := r.rec.Err(); err != nil {
			return fmt.Errorf("expected completion, got error: %w", err)
		}
		return nil
	})
}

// VerifyError runs the script and expects a failure matching target with
// errors.Is. A nil target accepts any failure.
func (v *Verifier[T]) VerifyError(target error) error {
	return v.VerifyErrorMatches(func(err error) bool {
		return target == nil || errors.Is(err, target)
	})
}

// VerifyErrorMatches runs the script and expects a failure satisfying pred.
func (v *Verifier[T]) VerifyErrorMatches(pred func(error) bool) error {
	return v.verify(func(r *run[T]) error {
		if err := r.terminal(); err != nil {
			return err
		}
		err := r.rec.Err()
		if err == nil {
			return errors.New("expected an error, got completion")
		}
		if !pred(err) {
			return fmt.Errorf("unexpected error: %w", err)
		}
		return nil
	})
}

// VerifyThenCancel runs the script and cancels the subscription, without
// waiting for a terminal signal.
func (v *Verifier[T]) VerifyThenCancel() error {
	return v.verify(func(*run[T]) error { return nil })
}

func (v *Verifier[T]) verify(final step[T]) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.cfg.timeout)
	defer cancel()

	r := &run[T]{ctx: ctx, rec: NewRecorder[T](), timeout: v.cfg.timeout}
	sub := v.s.Subscribe(context.Background(), r.rec)
	defer func() {
		sub.Cancel()
		// Wait for the producer to wind down so nothing outlives the verification.
		waitCtx, waitCancel := context.WithTimeout(context.Background(), v.cfg.timeout)
		defer waitCancel()
		_ = sub.Wait(waitCtx)
	}()

	for _, st := range v.steps {
		if err := st(r); err != nil {
			return err
		}
	}
	return final(r)
}

// run is one execution of a script.
type run[T any] struct {
	ctx     context.Context
	rec     *Recorder[T]
	timeout time.Duration
	cursor  int
}

// next returns the value at the cursor and advances it.
func (r *run[T]) next() (T, int, error) {
	var zero T
	idx := r.cursor
	ok, err := r.rec.WaitFor(r.ctx, idx+1)
	if err != nil {
		return zero, idx, r.timedOut()
	}
	if !ok {
		if err := r.rec.Err(); err != nil {
			return zero, idx, fmt.Errorf("expected value %d, got error: %w", idx, err)
		}
		return zero, idx, &MismatchError{Index: idx, Expected: "a value", Actual: "completion"}
	}
	r.cursor++
	return r.rec.Values()[idx], idx, nil
}

// terminal waits for the terminal signal and checks that every value was expected.
func (r *run[T]) terminal() error {
	if err := r.rec.WaitTerminated(r.ctx); err != nil {
		return r.timedOut()
	}
	if values := r.rec.Values(); len(values) > r.cursor {
		return &MismatchError{Index: r.cursor, Expected: "a terminal signal", Actual: values[r.cursor]}
	}
	return nil
}

func (r *run[T]) timedOut() error {
	return &stream.Error{
		Kind: stream.KindTimeout,
		Op:   "verify",
		Err:  fmt.Errorf("no terminal signal within %s after %d values", r.timeout, len(r.rec.Values())),
	}
}
