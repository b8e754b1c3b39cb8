// Package training contains runnable scenarios that exercise the stream
// engine: one per behavior of the engine worth demonstrating, each verifying
// its own output.
package training

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"go-reactor/pkg/logging"
	"go-reactor/pkg/logging/logfields"
	"go-reactor/pkg/stream/streamtest"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "training")

const (
	GroupCreation     = "creation"
	GroupMerging      = "merging"
	GroupTransforming = "transforming"
)

// Env is the environment a scenario runs in.
type Env struct {
	// Scale multiplies every duration a scenario uses. 1 runs at the nominal pace.
	Scale float64
	// Timeout bounds the verification of one scenario.
	Timeout time.Duration
	Log     *logrus.Entry
}

// DefaultEnv returns an environment running at the nominal pace.
func DefaultEnv() Env {
	return Env{Scale: 1, Timeout: streamtest.DefaultTimeout, Log: log}
}

// D scales d.
func (e Env) D(d time.Duration) time.Duration {
	if e.Scale <= 0 {
		return d
	}
	return time.Duration(float64(d) * e.Scale)
}

// verify returns the verifier options matching e.
func (e Env) verify() []streamtest.Option {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = streamtest.DefaultTimeout
	}
	return []streamtest.Option{streamtest.WithTimeout(timeout)}
}

// Scenario is one named, self-verifying use of the engine.
type Scenario struct {
	Name        string
	Group       string
	Description string
	Run         func(ctx context.Context, env Env) error
}

// ID returns "group/name".
func (s Scenario) ID() string {
	return s.Group + "/" + s.Name
}

var registry = map[string]Scenario{}

func register(scenarios ...Scenario) {
	for _, sc := range scenarios {
		if _, ok := registry[sc.Name]; ok {
			panic(fmt.Sprintf("duplicate scenario %q", sc.Name))
		}
		registry[sc.Name] = sc
	}
}

// All returns every scenario, sorted by group then name.
func All() []Scenario {
	out := make([]Scenario, 0, len(registry))
	for _, sc := range registry {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Lookup resolves names to scenarios. A name may also be a group, which
// selects every scenario of the group.
func Lookup(names ...string) ([]Scenario, error) {
	var out []Scenario
	seen := map[string]bool{}
	add := func(sc Scenario) {
		if !seen[sc.Name] {
			seen[sc.Name] = true
			out = append(out, sc)
		}
	}

	for _, name := range names {
		if sc, ok := registry[name]; ok {
			add(sc)
			continue
		}
		found := false
		for _, sc := range All() {
			if sc.Group == name {
				add(sc)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown scenario or group %q", name)
		}
	}
	return out, nil
}
