package stream

import "time"

// Boundary decides whether a value stamped exactly at the edge of a time
// window belongs to the window.
type Boundary uint8

const (
	// BoundaryExclusive treats the window as [0, d): a value at exactly d is outside.
	BoundaryExclusive Boundary = iota
	// BoundaryInclusive treats the window as [0, d]: a value at exactly d is inside.
	BoundaryInclusive
)

func (b Boundary) String() string {
	if b == BoundaryInclusive {
		return "inclusive"
	}
	return "exclusive"
}

// within reports whether a value stamped at elapsed falls inside a window of length d.
func (b Boundary) within(elapsed, d time.Duration) bool {
	if b == BoundaryInclusive {
		return elapsed <= d
	}
	return elapsed < d
}

// OperatorConfig holds configuration for stream operators.
type OperatorConfig struct {
	Scheduler   Scheduler
	Timer       *TimerScheduler
	Concurrency int
	Boundary    Boundary
}

// Option is a functional option for configuring stream operators.
type Option func(*OperatorConfig)

// DefaultConfig returns the default configuration.
// The timer is resolved lazily so that defaults injected after construction
// still apply.
func DefaultConfig() OperatorConfig {
	return OperatorConfig{
		Concurrency: DefaultFlatMapConcurrency,
		Boundary:    BoundaryExclusive,
	}
}

// WithScheduler sets the scheduler on which FlatMap activates inner subscriptions.
func WithScheduler(s Scheduler) Option {
	return func(c *OperatorConfig) {
		c.Scheduler = s
	}
}

// WithTimer sets the timer scheduler used by time-based operators.
func WithTimer(t *TimerScheduler) Option {
	return func(c *OperatorConfig) {
		c.Timer = t
	}
}

// WithConcurrency sets the maximum number of concurrently subscribed asynchronous inner streams.
func WithConcurrency(n int) Option {
	return func(c *OperatorConfig) {
		if n > 0 {
			c.Concurrency = n
		}
	}
}

// WithBoundary sets the boundary policy of TakeFor and SkipFor.
func WithBoundary(b Boundary) Option {
	return func(c *OperatorConfig) {
		c.Boundary = b
	}
}

// ApplyOptions applies the given options to the default configuration.
func ApplyOptions(opts ...Option) OperatorConfig {
	config := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}
	return config
}

func (c OperatorConfig) timer() *TimerScheduler {
	if c.Timer != nil {
		return c.Timer
	}
	return DefaultTimer()
}
