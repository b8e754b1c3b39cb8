package training

import (
	"context"
	"fmt"
	"time"

	"github.com/cilium/workerpool"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"go-reactor/pkg/logging/logfields"
)

// Result is the outcome of one scenario.
type Result struct {
	Scenario Scenario
	Duration time.Duration
	Err      error
}

// Runner runs scenarios concurrently on a worker pool.
type Runner struct {
	workers int
	env     Env
}

// NewRunner creates a runner executing at most workers scenarios at once.
func NewRunner(workers int, env Env) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if env.Log == nil {
		env.Log = log
	}
	return &Runner{workers: workers, env: env}
}

// Run executes scenarios and returns one result per scenario, in the order
// given. The returned error combines every scenario failure.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) ([]Result, error) {
	wp := workerpool.New(r.workers)
	defer wp.Close()

	r.env.Log.WithField(logfields.Workers, r.workers).Debugf("Running %d scenarios", len(scenarios))

	results := make([]Result, len(scenarios))
	for i, sc := range scenarios {
		results[i].Scenario = sc
		err := wp.Submit(sc.ID(), func(poolCtx context.Context) error {
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			stop := context.AfterFunc(poolCtx, cancel)
			defer stop()

			env := r.env
			env.Log = r.env.Log.WithFields(logrus.Fields{
				logfields.Scenario: sc.Name,
				logfields.Group:    sc.Group,
			})

			start := time.Now()
			err := runScenario(runCtx, sc, env)
			results[i].Duration = time.Since(start)
			results[i].Err = err

			scopedLog := env.Log.WithField(logfields.Duration, results[i].Duration)
			if err != nil {
				scopedLog.WithError(err).Warning("Scenario failed")
			} else {
				scopedLog.Info("Scenario passed")
			}
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to submit scenario %q: %w", sc.ID(), err)
		}
	}

	tasks, err := wp.Drain()
	if err != nil {
		return nil, fmt.Errorf("failed to drain scenarios: %w", err)
	}

	var errs error
	for _, t := range tasks {
		if t.Err() != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", t.String(), t.Err()))
		}
	}
	return results, errs
}

// runScenario runs sc, converting a panic into an error.
func runScenario(ctx context.Context, sc Scenario, env Env) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scenario panicked: %v", r)
		}
	}()
	return sc.Run(ctx, env)
}
