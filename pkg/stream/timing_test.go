package stream_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-reactor/pkg/stream"
	"go-reactor/pkg/stream/streamtest"
)

var parks = []string{"Yellowstone", "Yosemite", "Grand Canyon", "Zion", "Grand Teton"}

func TestTake(t *testing.T) {
	require.NoError(t, streamtest.Create(stream.Just(parks...).Take(3)).
		ExpectNext("Yellowstone", "Yosemite", "Grand Canyon").
		VerifyComplete())

	// Taking more than available completes with the source.
	require.NoError(t, streamtest.Create(stream.Just(1, 2).Take(5)).ExpectNext(1, 2).VerifyComplete())
}

func TestTakeZeroDoesNotSubscribe(t *testing.T) {
	var subscribed atomic.Bool
	s := stream.Defer(func() stream.Stream[int] {
		subscribed.Store(true)
		return stream.Just(1)
	}).Take(0)

	require.NoError(t, streamtest.Create(s).VerifyComplete())
	assert.False(t, subscribed.Load())
}

func TestTakeNegative(t *testing.T) {
	require.NoError(t, streamtest.Create(stream.Just(1).Take(-1)).VerifyError(stream.ErrInvalidArgument))
}

func TestTakeNested(t *testing.T) {
	// The inner limit must not be mistaken for the outer one.
	s := stream.FromIter(naturals()).Take(5).Take(3)
	require.NoError(t, streamtest.Create(s).ExpectNext(0, 1, 2).VerifyComplete())

	s = stream.FromIter(naturals()).Take(2).Take(3)
	require.NoError(t, streamtest.Create(s).ExpectNext(0, 1).VerifyComplete())
}

func TestSkip(t *testing.T) {
	words := stream.Just("one", "two", "skip a few", "ninety nine", "one hundred")
	require.NoError(t, streamtest.Create(words.Skip(3)).ExpectNext("ninety nine", "one hundred").VerifyComplete())
	require.NoError(t, streamtest.Create(words.Skip(10)).VerifyComplete())
	require.NoError(t, streamtest.Create(words.Skip(-1)).VerifyError(stream.ErrInvalidArgument))
}

func TestTakeForWithDelayedElements(t *testing.T) {
	holdTimer, holdClock := newFakeTimer(t)
	windowTimer, windowClock := newFakeTimer(t)
	s := stream.Just(parks...).
		DelayElements(time.Second, stream.WithTimer(holdTimer)).
		TakeFor(3500*time.Millisecond, stream.WithTimer(windowTimer))

	rec := streamtest.NewRecorder[string]()
	sub := s.Subscribe(context.Background(), rec)

	// The window clock moves first so each value is stamped at its release time.
	for i := 1; i <= 3; i++ {
		require.Eventually(t, holdClock.HasWaiters, time.Second, time.Millisecond)
		require.Eventually(t, windowClock.HasWaiters, time.Second, time.Millisecond)
		windowClock.Step(time.Second)
		holdClock.Step(time.Second)
		waitValues(t, rec, i)
	}
	step(t, windowClock, 500*time.Millisecond)

	require.NoError(t, sub.Wait(context.Background()))
	assert.Equal(t, []string{"Yellowstone", "Yosemite", "Grand Canyon"}, rec.Values())
	assert.Equal(t, stream.StateCompleted, sub.State())
	assert.False(t, holdClock.HasWaiters(), "the pending hold must be released")
}

func TestTakeForBoundary(t *testing.T) {
	tests := []struct {
		name     string
		boundary stream.Boundary
		want     []int
	}{
		{"exclusive", stream.BoundaryExclusive, []int{1}},
		{"inclusive", stream.BoundaryInclusive, []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, fc := newFakeTimer(t)
			src, feed := gated[int](t)
			s := src.TakeFor(time.Second, stream.WithTimer(ts), stream.WithBoundary(tt.boundary))

			rec := streamtest.NewRecorder[int]()
			sub := s.Subscribe(context.Background(), rec)

			require.True(t, feed.Send(1, sub.Done()))
			waitValues(t, rec, 1)

			// The second value is stamped exactly at the window edge.
			step(t, fc, time.Second)
			feed.Send(2, sub.Done())
			if tt.boundary == stream.BoundaryInclusive {
				waitValues(t, rec, 2)
				step(t, fc, time.Nanosecond)
			}

			require.NoError(t, sub.Wait(context.Background()))
			assert.Equal(t, tt.want, rec.Values())
			assert.True(t, rec.Completed())
		})
	}
}

func TestSkipForBoundary(t *testing.T) {
	tests := []struct {
		name     string
		boundary stream.Boundary
		want     []int
	}{
		{"exclusive", stream.BoundaryExclusive, []int{2, 3}},
		{"inclusive", stream.BoundaryInclusive, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, fc := newFakeTimer(t)
			src, feed := gated[int](t)
			s := src.SkipFor(time.Second, stream.WithTimer(ts), stream.WithBoundary(tt.boundary))

			rec := streamtest.NewRecorder[int]()
			sub := s.Subscribe(context.Background(), rec)

			done := sub.Done()
			require.True(t, feed.Send(1, done))
			fc.Step(time.Second)
			require.True(t, feed.Send(2, done))
			fc.Step(time.Nanosecond)
			require.True(t, feed.Send(3, done))
			feed.Close()

			require.NoError(t, sub.Wait(context.Background()))
			assert.Equal(t, tt.want, rec.Values())
		})
	}
}

func TestDelaySubscription(t *testing.T) {
	ts, fc := newFakeTimer(t)
	var subscribed atomic.Bool
	s := stream.Defer(func() stream.Stream[int] {
		subscribed.Store(true)
		return stream.Just(1)
	}).DelaySubscription(time.Second, stream.WithTimer(ts))

	rec := streamtest.NewRecorder[int]()
	sub := s.Subscribe(context.Background(), rec)

	step(t, fc, 999*time.Millisecond)
	assert.False(t, subscribed.Load())
	fc.Step(time.Millisecond)

	require.NoError(t, sub.Wait(context.Background()))
	assert.True(t, subscribed.Load())
	assert.Equal(t, []int{1}, rec.Values())
}

func TestDelayElementsHoldsEachValue(t *testing.T) {
	ts, fc := newFakeTimer(t)
	s := stream.Just(1, 2, 3).DelayElements(time.Second, stream.WithTimer(ts))

	rec := streamtest.NewRecorder[int]()
	sub := s.Subscribe(context.Background(), rec)

	for i := 1; i <= 3; i++ {
		step(t, fc, time.Second)
		waitValues(t, rec, i)
		// The next hold only starts once this value was forwarded.
		assert.Len(t, rec.Values(), i)
	}

	require.NoError(t, sub.Wait(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, rec.Values())
}

func TestDelayElementsCancel(t *testing.T) {
	ts, fc := newFakeTimer(t)
	rec := streamtest.NewRecorder[int]()
	sub := stream.Just(1, 2, 3).DelayElements(time.Hour, stream.WithTimer(ts)).Subscribe(context.Background(), rec)

	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	sub.Cancel()

	require.ErrorIs(t, sub.Wait(context.Background()), context.Canceled)
	assert.Empty(t, rec.Values())
	assert.False(t, fc.HasWaiters(), "the hold timer must be released")
}

func TestSubscribeOn(t *testing.T) {
	sched := stream.NewParallelScheduler("subscribe-on", 1)
	defer sched.Shutdown(context.Background())

	s := stream.Just(1, 2, 3).SubscribeOn(sched)
	require.True(t, s.IsAsync())
	require.NoError(t, streamtest.Create(s).ExpectNext(1, 2, 3).VerifyComplete())

	assert.False(t, stream.Just(1).SubscribeOn(stream.Immediate()).IsAsync())
}

func TestSubscribeOnShutdownScheduler(t *testing.T) {
	sched := stream.NewParallelScheduler("closed", 1)
	require.NoError(t, sched.Shutdown(context.Background()))

	require.NoError(t, streamtest.Create(stream.Just(1).SubscribeOn(sched)).VerifyError(stream.ErrSchedulerShutdown))
}

func TestSubscribeOnNestedSameScheduler(t *testing.T) {
	p1 := stream.NewParallelScheduler("nested-1", 1)
	defer p1.Shutdown(context.Background())
	p2 := stream.NewParallelScheduler("nested-2", 1)
	defer p2.Shutdown(context.Background())

	tests := []struct {
		name string
		s    stream.Stream[int]
		want []int
	}{
		{
			name: "subscribeOn twice",
			s:    stream.Just(1, 2, 3).SubscribeOn(p1).SubscribeOn(p1),
			want: []int{1, 2, 3},
		},
		{
			name: "through another scheduler",
			s:    stream.Just(1, 2, 3).SubscribeOn(p1).SubscribeOn(p2).SubscribeOn(p1),
			want: []int{1, 2, 3},
		},
		{
			name: "flatMap inners",
			s: stream.FlatMap(stream.Just(1, 2, 3), func(i int) stream.Stream[int] {
				return stream.Just(i * 10)
			}, stream.WithScheduler(p1)).SubscribeOn(p1),
			want: []int{10, 20, 30},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			got, err := stream.ToSlice(ctx, tt.s)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}

	// The slots were handed back.
	require.NoError(t, streamtest.Create(stream.Just(4).SubscribeOn(p1)).ExpectNext(4).VerifyComplete())
}
