package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qpa"

// Metrics owns a private registry shared by the HTTP, remote call and
// interaction collectors of one process.
type Metrics struct {
	service  string
	registry *prometheus.Registry

	HTTP        *HTTPServerMetrics
	Remote      *RemoteCallMetrics
	Interaction *InteractionMetrics
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()
	return &Metrics{
		service:     service,
		registry:    registry,
		HTTP:        newHTTPServerMetrics(service, registry),
		Remote:      newRemoteCallMetrics(service, registry),
		Interaction: newInteractionMetrics(service, registry),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request metrics for the presentation API.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return m.HTTP.Middleware(next)
}
