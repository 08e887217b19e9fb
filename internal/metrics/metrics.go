// Package metrics exports registry activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mikapfl/openscm-units/internal/units"
)

// Metrics implements units.Recorder.
type Metrics struct {
	Conversions        *prometheus.CounterVec
	ContextActivations *prometheus.CounterVec
}

var _ units.Recorder = (*Metrics)(nil)

// New registers the collectors with reg. A nil reg uses the default
// Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "openscm_units_conversions_total",
			Help: "Unit conversions by route (dimensional, context, none) and outcome",
		}, []string{"route", "outcome"}),
		ContextActivations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "openscm_units_context_activations_total",
			Help: "Context activations by context name",
		}, []string{"context"}),
	}
}

// ObserveConversion counts one conversion.
func (m *Metrics) ObserveConversion(route, outcome string) {
	if m != nil {
		m.Conversions.WithLabelValues(route, outcome).Inc()
	}
}

// ObserveContextEntered counts one activation of context.
func (m *Metrics) ObserveContextEntered(context string) {
	if m != nil {
		m.ContextActivations.WithLabelValues(context).Inc()
	}
}
