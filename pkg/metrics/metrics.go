// Package metrics defines the prometheus collectors exported by the stream engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reactor"

// Metrics contains the engine-level collectors.
type Metrics struct {
	SubscriptionsStarted  prometheus.Counter
	SubscriptionsFinished *prometheus.CounterVec
	ActiveSubscriptions   prometheus.Gauge
	ValuesDelivered       prometheus.Counter
	SchedulerTasks        *prometheus.CounterVec
}

// NewMetrics creates a new, unregistered set of engine collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		SubscriptionsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "subscriptions",
				Name:      "started_total",
				Help:      "Total number of subscriptions activated",
			},
		),

		SubscriptionsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "subscriptions",
				Name:      "finished_total",
				Help:      "Total number of subscriptions that reached a terminal state",
			},
			[]string{"state"},
		),

		ActiveSubscriptions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "subscriptions",
				Name:      "active",
				Help:      "Number of subscriptions currently active",
			},
		),

		ValuesDelivered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "values",
				Name:      "delivered_total",
				Help:      "Total number of values delivered to observers",
			},
		),

		SchedulerTasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "tasks_total",
				Help:      "Total number of tasks dispatched per scheduler",
			},
			[]string{"scheduler"},
		),
	}
}

// Collectors returns every collector of m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SubscriptionsStarted,
		m.SubscriptionsFinished,
		m.ActiveSubscriptions,
		m.ValuesDelivered,
		m.SchedulerTasks,
	}
}

// MustRegister registers all collectors of m with reg.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.Collectors()...)
}

var (
	// Registry is the registry the engine collectors are registered with.
	Registry = prometheus.NewRegistry()

	// Engine is the process-wide set of engine collectors.
	Engine = NewMetrics()
)

func init() {
	Engine.MustRegister(Registry)
}
