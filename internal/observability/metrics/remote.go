package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

// RemoteCallMetrics implements ports.CallObserver for the question service
// client.
type RemoteCallMetrics struct {
	service string

	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	callInFlight *prometheus.GaugeVec
}

func newRemoteCallMetrics(service string, registry *prometheus.Registry) *RemoteCallMetrics {
	callsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "calls_total",
			Help:      "Total question service calls by operation and outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)
	callDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "call_duration_seconds",
			Help:      "Question service call duration in seconds, retries included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "operation"},
	)
	callInFlight := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "calls_in_flight",
			Help:      "Number of outstanding question service calls.",
		},
		[]string{"service", "operation"},
	)
	registry.MustRegister(callsTotal, callDuration, callInFlight)

	return &RemoteCallMetrics{
		service:      service,
		callsTotal:   callsTotal,
		callDuration: callDuration,
		callInFlight: callInFlight,
	}
}

func (m *RemoteCallMetrics) CallStarted(operation string) {
	m.callInFlight.WithLabelValues(m.service, operation).Inc()
}

func (m *RemoteCallMetrics) ObserveCall(operation string, duration time.Duration, err error) {
	m.callInFlight.WithLabelValues(m.service, operation).Dec()
	m.callsTotal.WithLabelValues(m.service, operation, callOutcome(err)).Inc()
	m.callDuration.WithLabelValues(m.service, operation).Observe(duration.Seconds())
}

func callOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporary"
	case domain.IsKind(err, domain.ErrContract):
		return "contract"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
