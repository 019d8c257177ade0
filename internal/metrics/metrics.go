// Package metrics provides Prometheus collectors for the decision engine.
// Only collectors live here; exposition is a collaborator concern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalcraft/decision-engine/pkg/types"
)

// Metrics bundles the engine collectors around one registry, so several
// independent runs never fight over global registration.
type Metrics struct {
	registry *prometheus.Registry

	barsProcessed *prometheus.CounterVec
	actions       *prometheus.CounterVec
	exitReasons   *prometheus.CounterVec
	regimeChanges *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
}

// New creates a metrics bundle with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		barsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_bars_processed_total",
				Help: "Bars processed",
			},
			[]string{"symbol"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_actions_total",
				Help: "State transitions taken",
			},
			[]string{"symbol", "action"},
		),
		exitReasons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_exit_reasons_total",
				Help: "Position closes split by reason",
			},
			[]string{"symbol", "reason"},
		),
		regimeChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_regime_changes_total",
				Help: "Accepted regime state changes",
			},
			[]string{"symbol", "to"},
		),
		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_conflicts_cancelled_total",
				Help: "Simultaneous buy+short cancellations",
			},
			[]string{"symbol"},
		),
	}

	m.registry.MustRegister(m.barsProcessed, m.actions, m.exitReasons, m.regimeChanges, m.conflicts)
	return m
}

// Registry returns the backing registry for exposition by a collaborator.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe records one bar result. prevRegime is the effective state before
// the bar, used to count accepted regime changes.
func (m *Metrics) Observe(symbol string, r *types.BarResult, prevRegime types.RegimeState) {
	m.barsProcessed.WithLabelValues(symbol).Inc()

	if r.Action != types.ActionNone {
		m.actions.WithLabelValues(symbol, string(r.Action)).Inc()
	}
	if r.Action == types.ActionExit || r.Action == types.ActionCover {
		m.exitReasons.WithLabelValues(symbol, r.Exit.Reason).Inc()
	}
	if r.Regime.State != prevRegime {
		m.regimeChanges.WithLabelValues(symbol, string(r.Regime.State)).Inc()
	}
	if r.Signals.Conflicted {
		m.conflicts.WithLabelValues(symbol).Inc()
	}
}
