package stream_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-reactor/pkg/stream"
	"go-reactor/pkg/stream/streamtest"
)

func TestMergeCompletesAfterAllSources(t *testing.T) {
	s := stream.Merge(stream.Range(0, 3), stream.Range(10, 2), stream.Empty[int]())

	values, err := stream.ToSlice(context.Background(), s)
	require.NoError(t, err)
	sort.Ints(values)
	assert.Equal(t, []int{0, 1, 2, 10, 11}, values)
}

func TestMergePreservesPerSourceOrder(t *testing.T) {
	s := stream.Merge(
		stream.Map(stream.Range(0, 100), func(i int) string { return fmt.Sprintf("a%03d", i) }),
		stream.Map(stream.Range(0, 100), func(i int) string { return fmt.Sprintf("b%03d", i) }),
	)

	values, err := stream.ToSlice(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, values, 200)

	var as, bs []string
	for _, v := range values {
		if v[0] == 'a' {
			as = append(as, v)
		} else {
			bs = append(bs, v)
		}
	}
	assert.True(t, sort.StringsAreSorted(as))
	assert.True(t, sort.StringsAreSorted(bs))
}

func TestMergeFailureCancelsOtherSources(t *testing.T) {
	boom := errors.New("boom")
	s := stream.Merge(stream.Never[int](), stream.Fail[int](boom))

	require.NoError(t, streamtest.Create(s).VerifyError(boom))
}

func TestMergeWithEmpty(t *testing.T) {
	require.NoError(t, streamtest.Create(stream.Merge[int]()).VerifyComplete())
}

func TestMergeWithInterleavesByTime(t *testing.T) {
	// Each source runs on its own clock so that a parked source can be told
	// apart from the other one.
	charTimer, charClock := newFakeTimer(t)
	foodTimer, foodClock := newFakeTimer(t)
	characters := stream.Just("Garfield", "Kojak", "Barbossa").
		DelayElements(500*time.Millisecond, stream.WithTimer(charTimer))
	foods := stream.Just("Lasagna", "Lollipops", "Apples").
		DelaySubscription(250*time.Millisecond, stream.WithTimer(foodTimer)).
		DelayElements(500*time.Millisecond, stream.WithTimer(foodTimer))

	rec := streamtest.NewRecorder[string]()
	sub := characters.MergeWith(foods).Subscribe(context.Background(), rec)

	// Every 250ms one value is due, starting at 500ms. The character source
	// is done after six steps.
	for k := 1; k <= 7; k++ {
		if k <= 6 {
			require.Eventually(t, charClock.HasWaiters, time.Second, time.Millisecond)
		}
		require.Eventually(t, foodClock.HasWaiters, time.Second, time.Millisecond)
		if k <= 6 {
			charClock.Step(250 * time.Millisecond)
		}
		foodClock.Step(250 * time.Millisecond)
		waitValues(t, rec, k-1)
	}
	require.NoError(t, sub.Wait(context.Background()))
	assert.Equal(t, []string{"Garfield", "Lasagna", "Kojak", "Lollipops", "Barbossa", "Apples"}, rec.Values())
}

func TestFirstPicksFastestSource(t *testing.T) {
	slow := stream.Just("tortoise", "snail", "sloth").DelaySubscription(100 * time.Millisecond)
	fast := stream.Just("hare", "cheetah", "squirrel")

	require.NoError(t, streamtest.Create(stream.First(slow, fast)).
		ExpectNext("hare", "cheetah", "squirrel").
		VerifyComplete())
}

func TestFirstCompletionWins(t *testing.T) {
	s := stream.First(stream.Never[int](), stream.Empty[int]())
	require.NoError(t, streamtest.Create(s).VerifyComplete())

	// An empty completion beats a value that arrives later.
	s = stream.First(stream.Just(1).DelaySubscription(50*time.Millisecond), stream.Empty[int]())
	require.NoError(t, streamtest.Create(s).VerifyComplete())
}

func TestFirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	s := stream.First(stream.Never[int](), stream.Fail[int](boom))
	require.NoError(t, streamtest.Create(s).VerifyError(boom))
}

func TestFirstNoSources(t *testing.T) {
	require.NoError(t, streamtest.Create(stream.First[int]()).VerifyComplete())
}

func TestZipStopsAtShorterSide(t *testing.T) {
	s := stream.Zip(stream.Just(1, 2, 3), stream.Just("a", "b", "c", "d", "e"))

	require.NoError(t, streamtest.Create(s).
		ExpectNext(
			stream.Pair[int, string]{Left: 1, Right: "a"},
			stream.Pair[int, string]{Left: 2, Right: "b"},
			stream.Pair[int, string]{Left: 3, Right: "c"},
		).
		VerifyComplete())
}

func TestZipWithCombiner(t *testing.T) {
	s := stream.ZipWith(
		stream.Just("Garfield", "Kojak", "Barbossa"),
		stream.Just("Lasagna", "Lollipops", "Apples"),
		func(c, f string) string { return c + " eats " + f },
	)
	require.NoError(t, streamtest.Create(s).
		ExpectNext("Garfield eats Lasagna", "Kojak eats Lollipops", "Barbossa eats Apples").
		VerifyComplete())
}

func TestZipCancelsLongerInfiniteSide(t *testing.T) {
	s := stream.Zip(stream.Just("x", "y"), stream.FromIter(naturals()))
	require.NoError(t, streamtest.Create(s).ExpectNextCount(2).VerifyComplete())

	s = stream.Zip(stream.Just("x", "y"), stream.Never[int]())
	require.NoError(t, streamtest.Create(s, streamtest.WithTimeout(100*time.Millisecond)).VerifyThenCancel())
}

func TestZipFailure(t *testing.T) {
	boom := errors.New("boom")
	s := stream.Zip(stream.Never[int](), stream.Fail[int](boom))
	require.NoError(t, streamtest.Create(s).VerifyError(boom))
}

func TestZipCombinerPanic(t *testing.T) {
	s := stream.ZipWith(stream.Just(1), stream.Just(0), func(a, b int) int { return a / b })
	require.NoError(t, streamtest.Create(s).VerifyError(stream.ErrTransformFailure))
}
