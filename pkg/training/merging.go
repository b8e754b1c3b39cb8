package training

import (
	"context"
	"time"

	"go-reactor/pkg/stream"
	"go-reactor/pkg/stream/streamtest"
)

var (
	characters = []string{"Garfield", "Kojak", "Barbossa"}
	foods      = []string{"Lasagna", "Lollipops", "Apples"}
)

func init() {
	register(
		Scenario{
			Name:        "first",
			Group:       GroupMerging,
			Description: "Race between a delayed and an immediate stream",
			Run: func(_ context.Context, env Env) error {
				slow := stream.Just("tortoise", "snail", "sloth").DelaySubscription(env.D(100 * time.Millisecond))
				fast := stream.Just("hare", "cheetah", "squirrel")
				return streamtest.Create(stream.First(slow, fast), env.verify()...).
					ExpectNext("hare").
					ExpectNext("cheetah").
					ExpectNext("squirrel").
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "zip-to-object",
			Group:       GroupMerging,
			Description: "Zip two streams into sentences",
			Run: func(_ context.Context, env Env) error {
				s := stream.ZipWith(stream.Just(characters...), stream.Just(foods...), func(c, f string) string {
					return c + " eats " + f
				})
				return streamtest.Create(s, env.verify()...).
					ExpectNext("Garfield eats Lasagna").
					ExpectNext("Kojak eats Lollipops").
					ExpectNext("Barbossa eats Apples").
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "zip",
			Group:       GroupMerging,
			Description: "Zip two streams into pairs",
			Run: func(ctx context.Context, env Env) error {
				s := stream.Zip(stream.Just(characters...), stream.Just(foods...))
				s.SubscribeFunc(ctx, func(p stream.Pair[string, string]) {
					env.Log.Info(p.Left)
				}, nil, nil)

				pair := func(l, r string) func(stream.Pair[string, string]) bool {
					return func(p stream.Pair[string, string]) bool {
						return p.Left == l && p.Right == r
					}
				}
				return streamtest.Create(s, env.verify()...).
					ExpectNextMatches(pair("Garfield", "Lasagna")).
					ExpectNextMatches(pair("Kojak", "Lollipops")).
					ExpectNextMatches(pair("Barbossa", "Apples")).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "merge",
			Group:       GroupMerging,
			Description: "Merge two paced streams; values interleave by arrival time",
			Run: func(_ context.Context, env Env) error {
				characterStream := stream.Just(characters...).
					DelayElements(env.D(500 * time.Millisecond))
				foodStream := stream.Just(foods...).
					DelaySubscription(env.D(250 * time.Millisecond)).
					DelayElements(env.D(500 * time.Millisecond))

				return streamtest.Create(characterStream.MergeWith(foodStream), env.verify()...).
					ExpectNext("Garfield").
					ExpectNext("Lasagna").
					ExpectNext("Kojak").
					ExpectNext("Lollipops").
					ExpectNext("Barbossa").
					ExpectNext("Apples").
					VerifyComplete()
			},
		},
	)
}
