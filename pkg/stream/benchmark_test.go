package stream

import (
	"context"
	"testing"
)

func BenchmarkThroughput_Linear(b *testing.B) {
	ctx := context.Background()

	// Generator that yields b.N items
	gen := func(ctx context.Context, emit func(int) error) error {
		for i := 0; i < b.N; i++ {
			if err := emit(i); err != nil {
				return err
			}
		}
		return nil
	}

	// Pipeline: Generate -> Map -> Filter -> Observe
	pipeline := Map(Generate(gen), func(i int) int { return i * 2 }).
		Filter(func(i int) bool { return true })

	b.ResetTimer()
	if err := pipeline.Observe(ctx, func(int) {}); err != nil {
		b.Fatalf("Observe failed: %v", err)
	}
}

func BenchmarkThroughput_Merge(b *testing.B) {
	ctx := context.Background()

	half := b.N / 2
	pipeline := Merge(Range(0, half), Range(half, b.N-half))

	b.ResetTimer()
	if err := pipeline.Observe(ctx, func(int) {}); err != nil {
		b.Fatalf("Observe failed: %v", err)
	}
}

func BenchmarkThroughput_Range(b *testing.B) {
	ctx := context.Background()

	// Pipeline: Range -> Map -> Observe
	// No goroutine or lock on the delivery path.
	pipeline := Map(Range(0, b.N), func(i int) int { return i * 2 })

	b.ResetTimer()
	if err := pipeline.Observe(ctx, func(int) {}); err != nil {
		b.Fatalf("Observe failed: %v", err)
	}
}

func BenchmarkThroughput_Zip(b *testing.B) {
	ctx := context.Background()

	pipeline := ZipWith(Range(0, b.N), Range(0, b.N), func(l, r int) int { return l + r })

	b.ResetTimer()
	if err := pipeline.Observe(ctx, func(int) {}); err != nil {
		b.Fatalf("Observe failed: %v", err)
	}
}
