package training

import (
	"context"
	"slices"
	"time"

	"go-reactor/pkg/stream"
	"go-reactor/pkg/stream/streamtest"
)

var fruits = []string{"Apple", "Orange", "Grape", "Banana", "Strawberry"}

func init() {
	register(
		Scenario{
			Name:        "interval",
			Group:       GroupCreation,
			Description: "Interval ticking every second, bounded by take(5)",
			Run: func(_ context.Context, env Env) error {
				s := stream.Interval(env.D(time.Second)).Take(5)
				return streamtest.Create(s, env.verify()...).
					ExpectNext(0, 1, 2, 3, 4).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "range",
			Group:       GroupCreation,
			Description: "Five consecutive integers starting at 1",
			Run: func(_ context.Context, env Env) error {
				return streamtest.Create(stream.Range(1, 5), env.verify()...).
					ExpectNext(1, 2, 3, 4, 5).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "just",
			Group:       GroupCreation,
			Description: "Literal values, printed by a plain subscriber and then verified",
			Run: func(ctx context.Context, env Env) error {
				s := stream.Just(fruits...)
				s.SubscribeFunc(ctx, func(f string) {
					env.Log.Info(f)
				}, nil, nil)
				return streamtest.Create(s, env.verify()...).
					ExpectNext(fruits...).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "from-iter",
			Group:       GroupCreation,
			Description: "A lazily produced sequence",
			Run: func(_ context.Context, env Env) error {
				s := stream.FromIter(slices.Values(fruits))
				return streamtest.Create(s, env.verify()...).
					ExpectNext(fruits...).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "from-slice",
			Group:       GroupCreation,
			Description: "A slice built element by element",
			Run: func(_ context.Context, env Env) error {
				var list []string
				for _, f := range fruits {
					list = append(list, f)
				}
				return streamtest.Create(stream.FromSlice(list), env.verify()...).
					ExpectNext(fruits...).
					VerifyComplete()
			},
		},
		Scenario{
			Name:        "from-array",
			Group:       GroupCreation,
			Description: "A fixed size array",
			Run: func(_ context.Context, env Env) error {
				arr := [5]string{"Apple", "Orange", "Grape", "Banana", "Strawberry"}
				return streamtest.Create(stream.FromSlice(arr[:]), env.verify()...).
					ExpectNext("Apple").
					ExpectNext(arr[1:]...).
					VerifyComplete()
			},
		},
	)
}
