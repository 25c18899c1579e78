package armviz

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gekko3d/armviz/control"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsModule(t *testing.T) {
	app, m := newArmApp(t, control.ModeInverse, MetricsModule{})
	metrics, ok := Resource[Metrics](app)
	require.True(t, ok)

	// the target sits on the end effector, so a step solves at once
	app.Step()
	total := 0.0
	for _, status := range []string{"converged", "stalled", "diverged", "timeout"} {
		total += testutil.ToFloat64(metrics.Solves.WithLabelValues(status))
	}
	assert.GreaterOrEqual(t, total, 1.0)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.SolveTime))

	m.ToggleMode()
	m.ToggleMode()
	m.SetMode("forward")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Transitions.WithLabelValues("forward")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Transitions.WithLabelValues("view")))
}

func TestMetrics_Handler(t *testing.T) {
	metrics := NewMetrics()
	metrics.Transitions.WithLabelValues("select").Inc()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `armviz_mode_transitions_total{mode="select"} 1`))
}
