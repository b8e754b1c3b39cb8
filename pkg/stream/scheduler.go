package stream

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"
	"k8s.io/utils/clock"

	"go-reactor/pkg/logging/logfields"
	"go-reactor/pkg/metrics"
)

// ============================================================================
// SCHEDULERS
// ============================================================================

// Scheduler is a named execution context on which subscription work is dispatched.
type Scheduler interface {
	// Name identifies the scheduler in logs and metrics.
	Name() string
	// Schedule dispatches task. It returns an error, without running task, if
	// ctx ends first or the scheduler has been shut down.
	Schedule(ctx context.Context, task func()) error
}

type immediateScheduler struct{}

// Immediate returns a scheduler that runs tasks on the calling goroutine.
func Immediate() Scheduler {
	return immediateScheduler{}
}

func (immediateScheduler) Name() string { return "immediate" }

func (immediateScheduler) Schedule(ctx context.Context, task func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	metrics.Engine.SchedulerTasks.WithLabelValues("immediate").Inc()
	task()
	return nil
}

// lifecycle tracks running tasks so that Shutdown can reject new work and
// wait for the work already dispatched.
type lifecycle struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (l *lifecycle) enter() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrSchedulerShutdown
	}
	l.wg.Add(1)
	return nil
}

func (l *lifecycle) exit() {
	l.wg.Done()
}

func (l *lifecycle) shutdown(ctx context.Context) error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type slotKey struct{}

// slot records a scheduler whose worker slot is held by the work running
// under a context. Slots nest.
type slot struct {
	sched  Scheduler
	parent *slot
}

// withSlot marks ctx as running inside a task of sched.
func withSlot(ctx context.Context, sched Scheduler) context.Context {
	parent, _ := ctx.Value(slotKey{}).(*slot)
	return context.WithValue(ctx, slotKey{}, &slot{sched: sched, parent: parent})
}

func holdsSlot(ctx context.Context, sched Scheduler) bool {
	for sl, _ := ctx.Value(slotKey{}).(*slot); sl != nil; sl = sl.parent {
		if sl.sched == sched {
			return true
		}
	}
	return false
}

// ParallelScheduler runs tasks on goroutines, at most Workers at a time.
type ParallelScheduler struct {
	name    string
	workers int
	sem     *semaphore.Weighted
	life    lifecycle
}

// NewParallelScheduler creates a bounded worker pool. A non-positive workers
// count defaults to GOMAXPROCS.
func NewParallelScheduler(name string, workers int) *ParallelScheduler {
	workers = sanitizeDOP(workers)
	return &ParallelScheduler{
		name:    name,
		workers: workers,
		sem:     semaphore.NewWeighted(int64(workers)),
	}
}

func (p *ParallelScheduler) Name() string { return p.name }

// Workers returns the maximum number of tasks running at once.
func (p *ParallelScheduler) Workers() int { return p.workers }

// Schedule blocks until a worker slot is free, then runs task on its own goroutine.
// When ctx belongs to work already holding a slot of p, task runs on the
// calling goroutine under that slot instead, since the holder is blocked
// until task finishes.
func (p *ParallelScheduler) Schedule(ctx context.Context, task func()) error {
	if holdsSlot(ctx, p) {
		if err := ctx.Err(); err != nil {
			return err
		}
		metrics.Engine.SchedulerTasks.WithLabelValues(p.name).Inc()
		task()
		return nil
	}
	if err := p.life.enter(); err != nil {
		return err
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		p.life.exit()
		return err
	}
	metrics.Engine.SchedulerTasks.WithLabelValues(p.name).Inc()
	go func() {
		defer p.life.exit()
		defer p.sem.Release(1)
		task()
	}()
	return nil
}

// Shutdown rejects new tasks and waits for running ones until ctx ends.
func (p *ParallelScheduler) Shutdown(ctx context.Context) error {
	return p.life.shutdown(ctx)
}

// TimerScheduler dispatches time-driven work. It owns the clock every time
// operator reads, so tests can swap in a fake clock.
type TimerScheduler struct {
	name  string
	clock clock.WithTicker
	life  lifecycle
}

// NewTimerScheduler creates a timer scheduler on clk. A nil clk uses the real clock.
func NewTimerScheduler(name string, clk clock.WithTicker) *TimerScheduler {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &TimerScheduler{name: name, clock: clk}
}

func (t *TimerScheduler) Name() string { return t.name }

// Clock returns the clock time operators use.
func (t *TimerScheduler) Clock() clock.WithTicker { return t.clock }

// Schedule runs task on a new goroutine.
func (t *TimerScheduler) Schedule(ctx context.Context, task func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.life.enter(); err != nil {
		return err
	}
	metrics.Engine.SchedulerTasks.WithLabelValues(t.name).Inc()
	go func() {
		defer t.life.exit()
		task()
	}()
	return nil
}

// Shutdown rejects new tasks and waits for running ones until ctx ends.
func (t *TimerScheduler) Shutdown(ctx context.Context) error {
	return t.life.shutdown(ctx)
}

// ============================================================================
// PROCESS-WIDE DEFAULTS
// ============================================================================

var defaults struct {
	mu       sync.Mutex
	parallel *ParallelScheduler
	timer    *TimerScheduler
}

// DefaultParallel returns the process-wide parallel scheduler, creating it on first use.
func DefaultParallel() *ParallelScheduler {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()
	if defaults.parallel == nil {
		defaults.parallel = NewParallelScheduler("parallel", 0)
		log.WithField(logfields.Workers, defaults.parallel.workers).Debug("Initialized default parallel scheduler")
	}
	return defaults.parallel
}

// DefaultTimer returns the process-wide timer scheduler, creating it on first use.
func DefaultTimer() *TimerScheduler {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()
	if defaults.timer == nil {
		defaults.timer = NewTimerScheduler("timer", nil)
		log.Debug("Initialized default timer scheduler")
	}
	return defaults.timer
}

// SetDefaultSchedulers replaces the process-wide schedulers. A nil argument
// leaves that default untouched. The returned function restores the previous ones.
func SetDefaultSchedulers(parallel *ParallelScheduler, timer *TimerScheduler) (restore func()) {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()

	prevParallel, prevTimer := defaults.parallel, defaults.timer
	if parallel != nil {
		defaults.parallel = parallel
	}
	if timer != nil {
		defaults.timer = timer
	}
	return func() {
		defaults.mu.Lock()
		defer defaults.mu.Unlock()
		defaults.parallel, defaults.timer = prevParallel, prevTimer
	}
}

// ShutdownDefaultSchedulers shuts down the process-wide schedulers. The next
// call to DefaultParallel or DefaultTimer creates fresh ones.
func ShutdownDefaultSchedulers(ctx context.Context) error {
	defaults.mu.Lock()
	parallel, timer := defaults.parallel, defaults.timer
	defaults.parallel, defaults.timer = nil, nil
	defaults.mu.Unlock()

	var err error
	if parallel != nil {
		err = multierr.Append(err, parallel.Shutdown(ctx))
	}
	if timer != nil {
		err = multierr.Append(err, timer.Shutdown(ctx))
	}
	return err
}
