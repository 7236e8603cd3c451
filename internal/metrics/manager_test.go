package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterRequests.WithLabelValues("GET", "200").Inc()
	m.CounterWorkoutsCommitted.WithLabelValues("new").Add(2)
	m.GaugeRunnerSessions.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterWorkoutsCommitted.WithLabelValues("new")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.GaugeRunnerSessions))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["liftlog_test_runner_sessions"])
	assert.True(t, names["liftlog_test_plan_commits"])
}

func TestSetupPrometheus(t *testing.T) {
	reg := SetupPrometheus()
	m := NewManager("liftlog", "main", reg)
	m.CounterExports.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["liftlog_main_exports"])
}
