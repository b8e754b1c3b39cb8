package stream_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"go-reactor/pkg/stream"
	"go-reactor/pkg/stream/streamtest"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newFakeTimer returns a timer scheduler driven by a fake clock.
func newFakeTimer(t *testing.T) (*stream.TimerScheduler, *testingclock.FakeClock) {
	t.Helper()
	fc := testingclock.NewFakeClock(epoch)
	ts := stream.NewTimerScheduler("fake", fc)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, ts.Shutdown(ctx))
	})
	return ts, fc
}

// step advances fc by d once something waits on it.
func step(t *testing.T, fc *testingclock.FakeClock, d time.Duration) {
	t.Helper()
	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond, "nothing is waiting on the clock")
	fc.Step(d)
}

// waitValues blocks until rec holds n values.
func waitValues[T any](t *testing.T, rec *streamtest.Recorder[T], n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := rec.WaitFor(ctx, n)
	require.NoError(t, err)
	require.True(t, ok, "stream terminated after %d values, expected %d", len(rec.Values()), n)
}

// gate feeds a source stream from a test, one value at a time.
type gate[T any] struct {
	ch   chan T
	acks chan struct{}
}

// Send hands v to the source and waits until the source finished emitting
// it. It gives up, returning false, once done is closed.
func (g *gate[T]) Send(v T, done <-chan struct{}) bool {
	select {
	case g.ch <- v:
	case <-done:
		return false
	}
	select {
	case <-g.acks:
		return true
	case <-done:
		return false
	}
}

// Close completes the source.
func (g *gate[T]) Close() {
	close(g.ch)
}

// gated returns a source emitting whatever is sent through the returned gate.
// The source runs on its own scheduler so that subscribing to it does not block.
func gated[T any](t *testing.T) (stream.Stream[T], *gate[T]) {
	t.Helper()
	g := &gate[T]{ch: make(chan T), acks: make(chan struct{})}
	sched := stream.NewParallelScheduler("gate", 1)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, sched.Shutdown(ctx))
	})

	s := stream.Generate(func(ctx context.Context, emit func(T) error) error {
		for {
			select {
			case v, ok := <-g.ch:
				if !ok {
					return nil
				}
				err := emit(v)
				select {
				case g.acks <- struct{}{}:
				case <-ctx.Done():
				}
				if err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}).SubscribeOn(sched)
	return s, g
}
