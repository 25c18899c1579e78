package armviz

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gekko3d/armviz/control"
	"github.com/gekko3d/armviz/ik"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts solver results and mode changes on a private registry.
type Metrics struct {
	Registry    *prometheus.Registry
	Solves      *prometheus.CounterVec
	SolveTime   prometheus.Histogram
	Transitions *prometheus.CounterVec

	server *http.Server
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "armviz_solver_results_total",
				Help: "Completed IK solver calls by status",
			},
			[]string{"status"},
		),
		SolveTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "armviz_solve_duration_seconds",
				Help:    "Time spent in one IK solver round, measured where the round ran",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "armviz_mode_transitions_total",
				Help: "Interaction mode changes by target mode",
			},
			[]string{"mode"},
		),
	}
	m.Registry.MustRegister(m.Solves, m.SolveTime, m.Transitions)
	return m
}

// Observe hooks the metrics into a Manipulator.
func (m *Metrics) Observe(manip *Manipulator) {
	manip.OnSolve(func(res ik.Result) {
		m.Solves.WithLabelValues(res.Status.String()).Inc()
		m.SolveTime.Observe(res.Elapsed.Seconds())
	})
	manip.OnModeChange(func(t control.Transition) {
		m.Transitions.WithLabelValues(t.To.String()).Inc()
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until Shutdown.
func (m *Metrics) Serve(addr string, log Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	m.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Infof("Starting metrics server on %s", addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server: %v", err)
		}
	}()
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// MetricsModule publishes Metrics for the Manipulator and serves them on
// Addr when set.
type MetricsModule struct {
	Addr string
}

func (mod MetricsModule) Install(app *App, cmd *Commands) {
	manip, ok := Resource[Manipulator](app)
	if !ok {
		panic("MetricsModule requires ManipulationModule")
	}
	m := NewMetrics()
	m.Observe(manip)
	app.addResources(m)
	if mod.Addr != "" {
		m.Serve(mod.Addr, app.Logger())
	}
	app.UseSystem(
		System(metricsShutdownSystem).
			InStage(Finale).
			RunAlways(),
	)
}

func metricsShutdownSystem(app *App, m *Metrics) {
	if !app.quit || m.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		app.Logger().Warnf("Metrics server shutdown: %v", err)
	}
	m.server = nil
}
