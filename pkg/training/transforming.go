package training

import (
	"context"
	"slices"
	"strings"
	"time"

	"go-reactor/pkg/stream"
	"go-reactor/pkg/stream/streamtest"
)

// Player is a basketball player parsed from "First Last".
type Player struct {
	FirstName string
	LastName  string
}

// ParsePlayer splits a full name on its first whitespace.
func ParsePlayer(name string) Player {
	first, last, _ := strings.Cut(name, " ")
	return Player{FirstName: first, LastName: last}
}

var (
	players       = []string{"Michael Jordan", "Scottie Pippen", "Steve Kerr"}
	nationalParks = []string{"Yellowstone", "Yosemite", "Grand Canyon", "Zion", "Grand Teton"}
	skipWords     = []string{"one", "two", "skip a few", "ninety nine", "one hundred"}
	breakfast     = []string{"apple", "orange", "banana", "kiwi", "strawberry"}
)

// oneOf matches any value of want.
func oneOf[T comparable](want ...T) func(T) bool {
	return func(v T) bool {
		return slices.Contains(want, v)
	}
}

func init() {
	register(
		Scenario{
			Name:        "collect-map",
			Group:       GroupTransforming,
			Description: "Collect animals into a map keyed by first letter; later keys win",
			Run: func(_ context.Context, env Env) error {
				animals := stream.Just("aardvark", "elephant", "koala", "eagle", "kangaroo")
				s := stream.CollectMap(animals, func(a string) rune {
					return []rune(a)[0]
				})
				return streamtest.Create(s, env.verify()...).
					ExpectNextMatches(func(m map[rune]string) bool {
						return len(m) == 3 && m['a'] == "aardvark" && m['e'] == "eagle" && m['k'] == "kangaroo"
					}).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "collect-list",
			Group:       GroupTransforming,
			Description: "Collect every value into one list",
			Run: func(_ context.Context, env Env) error {
				s := stream.CollectList(stream.Just(breakfast...))
				return streamtest.Create(s, env.verify()...).
					ExpectNext(breakfast).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "buffer",
			Group:       GroupTransforming,
			Description: "Group values in threes; the last group is shorter",
			Run: func(_ context.Context, env Env) error {
				s := stream.Buffer(stream.Just(breakfast...), 3)
				return streamtest.Create(s, env.verify()...).
					ExpectNext([]string{"apple", "orange", "banana"}).
					ExpectNext([]string{"kiwi", "strawberry"}).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "buffer-flat-map",
			Group:       GroupTransforming,
			Description: "Upper-case each buffered group in parallel, tracing the inner streams",
			Run: func(_ context.Context, env Env) error {
				groups := stream.Buffer(stream.Just(breakfast...), 3)
				s := stream.FlatMap(groups, func(group []string) stream.Stream[string] {
					return stream.Map(stream.FromSlice(group), strings.ToUpper).
						SubscribeOn(stream.DefaultParallel()).
						Log("buffer-flat-map")
				})

				upper := make([]string, len(breakfast))
				for i, f := range breakfast {
					upper[i] = strings.ToUpper(f)
				}
				v := streamtest.Create(s, env.verify()...)
				for range upper {
					v = v.ExpectNextMatches(oneOf(upper...))
				}
				return v.VerifyComplete()
			},
		},
		Scenario{
			Name:        "flat-map",
			Group:       GroupTransforming,
			Description: "Parse players on the parallel scheduler; arrival order is not guaranteed",
			Run: func(_ context.Context, env Env) error {
				s := stream.FlatMap(stream.Just(players...), func(name string) stream.Stream[Player] {
					return stream.Map(stream.Just(name), ParsePlayer).SubscribeOn(stream.DefaultParallel())
				})

				want := []Player{{"Michael", "Jordan"}, {"Scottie", "Pippen"}, {"Steve", "Kerr"}}
				return streamtest.Create(s, env.verify()...).
					ExpectNextMatches(oneOf(want...)).
					ExpectNextMatches(oneOf(want...)).
					ExpectNextMatches(oneOf(want...)).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "map",
			Group:       GroupTransforming,
			Description: "Parse players synchronously, in order",
			Run: func(_ context.Context, env Env) error {
				s := stream.Map(stream.Just(players...), ParsePlayer)
				return streamtest.Create(s, env.verify()...).
					ExpectNext(Player{"Michael", "Jordan"}).
					ExpectNext(Player{"Scottie", "Pippen"}).
					ExpectNext(Player{"Steve", "Kerr"}).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "distinct",
			Group:       GroupTransforming,
			Description: "Drop animals already seen",
			Run: func(_ context.Context, env Env) error {
				s := stream.Distinct(stream.Just("dog", "cat", "bird", "dog", "bird", "anteater"))
				return streamtest.Create(s, env.verify()...).
					ExpectNext("dog", "cat", "bird", "anteater").
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "filter",
			Group:       GroupTransforming,
			Description: "Keep national parks with a single-word name",
			Run: func(_ context.Context, env Env) error {
				s := stream.Just(nationalParks...).Filter(func(p string) bool {
					return !strings.Contains(p, " ")
				})
				return streamtest.Create(s, env.verify()...).
					ExpectNext("Yellowstone", "Yosemite", "Zion").
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "take-time",
			Group:       GroupTransforming,
			Description: "Keep the parks that arrive within 3.5 seconds at one per second",
			Run: func(_ context.Context, env Env) error {
				s := stream.Just(nationalParks...).
					DelayElements(env.D(time.Second)).
					TakeFor(env.D(3500 * time.Millisecond))
				return streamtest.Create(s, env.verify()...).
					ExpectNext("Yellowstone", "Yosemite", "Grand Canyon").
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "take-position",
			Group:       GroupTransforming,
			Description: "Keep the first three parks",
			Run: func(_ context.Context, env Env) error {
				s := stream.Just(nationalParks...).Take(3)
				return streamtest.Create(s, env.verify()...).
					ExpectNext("Yellowstone", "Yosemite", "Grand Canyon").
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "skip-a-few-seconds",
			Group:       GroupTransforming,
			Description: "Drop the words that arrive within 4 seconds at one per second",
			Run: func(_ context.Context, env Env) error {
				s := stream.Just(skipWords...).
					DelayElements(env.D(time.Second)).
					SkipFor(env.D(4 * time.Second))
				return streamtest.Create(s, env.verify()...).
					ExpectNext("ninety nine", "one hundred").
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "skip-a-few",
			Group:       GroupTransforming,
			Description: "Drop the first three words",
			Run: func(_ context.Context, env Env) error {
				s := stream.Just(skipWords...).Skip(3)
				return streamtest.Create(s, env.verify()...).
					ExpectNext("ninety nine", "one hundred").
					VerifyComplete()
			},
		},
	)
}
