package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	outcomeFound     = "found"
	outcomeNotFound  = "not_found"
	outcomeError     = "error"
	outcomePersisted = "persisted"
	outcomeMemory    = "memory"
	outcomeRejected  = "rejected"
)

// Metrics counts lookups and saves by outcome.
type Metrics struct {
	searches *prometheus.CounterVec
	saves    *prometheus.CounterVec
}

// NewMetrics registers the postal code counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postalcode_searches_total",
				Help: "Postal code searches by outcome",
			},
			[]string{"outcome"},
		),
		saves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postalcode_saves_total",
				Help: "Postal code saves by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) search(outcome string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) save(outcome string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(outcome).Inc()
}
