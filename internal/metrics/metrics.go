// Package metrics provides Prometheus metrics for the clearmob daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Warning stages used as label values.
const (
	StageBeforeClear1 = "before-clear-1"
	StageBeforeClear2 = "before-clear-2"
)

// Metrics holds all Prometheus metrics for the daemon.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SweepsTotal          prometheus.Counter
	SweepErrorsTotal     prometheus.Counter
	EntitiesRemovedTotal *prometheus.CounterVec
	WarningsTotal        *prometheus.CounterVec
	Enabled              prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		SweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clearmob_sweeps_total",
			Help: "Total number of completed sweeps.",
		}),
		SweepErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clearmob_sweep_errors_total",
			Help: "Total number of sweeps or removals that failed.",
		}),
		EntitiesRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clearmob_entities_removed_total",
				Help: "Total number of removed entities by kind.",
			},
			[]string{"kind"},
		),
		WarningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clearmob_warnings_total",
				Help: "Total number of staged warnings broadcast by stage.",
			},
			[]string{"stage"},
		),
		Enabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clearmob_enabled",
			Help: "1 when periodic clearing is enabled.",
		}),
		registry: reg,
	}

	reg.MustRegister(m.SweepsTotal)
	reg.MustRegister(m.SweepErrorsTotal)
	reg.MustRegister(m.EntitiesRemovedTotal)
	reg.MustRegister(m.WarningsTotal)
	reg.MustRegister(m.Enabled)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSweep counts a completed sweep and its removals per kind.
func (m *Metrics) RecordSweep(removedByKind map[string]int) {
	if m == nil {
		return
	}

	m.SweepsTotal.Inc()

	for kind, n := range removedByKind {
		m.EntitiesRemovedTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordSweepError counts a failed listing or removal.
func (m *Metrics) RecordSweepError() {
	if m == nil {
		return
	}

	m.SweepErrorsTotal.Inc()
}

// RecordWarning counts a broadcast staged warning.
func (m *Metrics) RecordWarning(stage string) {
	if m == nil {
		return
	}

	m.WarningsTotal.WithLabelValues(stage).Inc()
}

// SetEnabled mirrors the scheduler enabled flag.
func (m *Metrics) SetEnabled(enabled bool) {
	if m == nil {
		return
	}

	if enabled {
		m.Enabled.Set(1)

		return
	}

	m.Enabled.Set(0)
}
