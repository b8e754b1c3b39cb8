package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	m.MustRegister(reg)

	m.SubscriptionsStarted.Inc()
	m.SubscriptionsFinished.WithLabelValues("completed").Add(2)
	m.SchedulerTasks.WithLabelValues("parallel").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubscriptionsStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SubscriptionsFinished.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulerTasks.WithLabelValues("parallel")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "reactor_subscriptions_started_total")
	assert.Contains(t, names, "reactor_scheduler_tasks_total")

	assert.Panics(t, func() { m.MustRegister(reg) }, "double registration must fail")
}

func TestEngineRegistered(t *testing.T) {
	_, err := Registry.Gather()
	require.NoError(t, err)
	assert.Error(t, Registry.Register(Engine.ActiveSubscriptions))
}
