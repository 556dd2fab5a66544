package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the Prometheus collectors for the strategy core's engines.
// Unlike the teacher's global DefaultMetrics singleton, this registry is
// constructed explicitly (via NewRegistry) and registered against its own
// prometheus.Registry rather than the global default collector, so that
// multiple engine sets (e.g. one per symbol, see internal/runner) and
// concurrent test packages never collide on metric name registration.
type Registry struct {
	registry *prometheus.Registry

	BarsAccepted     *prometheus.CounterVec
	BarsRejected     *prometheus.CounterVec
	BarsIgnored      *prometheus.CounterVec
	SwingsConfirmed  *prometheus.CounterVec
	WindowsOpened    *prometheus.CounterVec
	WindowsTriggered *prometheus.CounterVec
	WindowsExpired   *prometheus.CounterVec
	PlanBuildSeconds *prometheus.HistogramVec
}

// NewRegistry builds and registers the strategy core's Prometheus metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	m := &Registry{
		registry: reg,
		BarsAccepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mstruct_bars_accepted_total",
				Help: "Total number of bars accepted by an engine.",
			},
			[]string{"engine", "symbol"},
		),
		BarsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mstruct_bars_rejected_total",
				Help: "Total number of bars rejected (validation or ordering errors).",
			},
			[]string{"engine", "symbol"},
		),
		BarsIgnored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mstruct_bars_ignored_total",
				Help: "Total number of bars silently ignored (e.g. outside all session windows).",
			},
			[]string{"engine", "symbol"},
		),
		SwingsConfirmed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mstruct_swings_confirmed_total",
				Help: "Total number of confirmed swing points by timeframe and kind.",
			},
			[]string{"symbol", "htf", "kind"},
		),
		WindowsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mstruct_bos_windows_opened_total",
				Help: "Total number of BOS windows opened.",
			},
			[]string{"symbol", "direction"},
		),
		WindowsTriggered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mstruct_bos_windows_triggered_total",
				Help: "Total number of BOS windows that emitted a signal.",
			},
			[]string{"symbol", "direction"},
		),
		WindowsExpired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mstruct_bos_windows_expired_total",
				Help: "Total number of BOS windows that expired unconfirmed.",
			},
			[]string{"symbol", "direction"},
		),
		PlanBuildSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mstruct_plan_build_seconds",
				Help:    "Duration of Daily Bias Planner build() calls.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"symbol"},
		),
	}

	reg.MustRegister(
		m.BarsAccepted,
		m.BarsRejected,
		m.BarsIgnored,
		m.SwingsConfirmed,
		m.WindowsOpened,
		m.WindowsTriggered,
		m.WindowsExpired,
		m.PlanBuildSeconds,
	)
	return m
}

// Gatherer exposes the underlying prometheus.Registry for promhttp.Handler.
func (m *Registry) Gatherer() *prometheus.Registry {
	return m.registry
}
