package metrics

import "github.com/prometheus/client_golang/prometheus"

// InteractionMetrics implements ports.InteractionObserver.
type InteractionMetrics struct {
	service       string
	outcomesTotal *prometheus.CounterVec
}

func newInteractionMetrics(service string, registry *prometheus.Registry) *InteractionMetrics {
	outcomesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interaction",
			Name:      "outcomes_total",
			Help:      "Terminal outcomes of question interactions.",
		},
		[]string{"service", "outcome"},
	)
	registry.MustRegister(outcomesTotal)
	return &InteractionMetrics{service: service, outcomesTotal: outcomesTotal}
}

func (m *InteractionMetrics) ObserveInteraction(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.outcomesTotal.WithLabelValues(m.service, outcome).Inc()
}
