package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ClientsCreated        prometheus.Counter
	SecretsRotated        prometheus.Counter
	ResolveClientDuration prometheus.Histogram
	RedirectURIRejections prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ClientsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_clients_created_total",
			Help: "Total number of OAuth clients created",
		}),
		SecretsRotated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_client_secrets_rotated_total",
			Help: "Total number of client secret rotations",
		}),
		ResolveClientDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigil_resolve_client_duration_seconds",
			Help:    "Duration of ResolveClient operations (OAuth critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RedirectURIRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_redirect_uri_rejections_total",
			Help: "Total number of redirect URIs rejected at authorization time",
		}),
	}
}

func (m *Metrics) IncrementClientsCreated() {
	m.ClientsCreated.Inc()
}

func (m *Metrics) IncrementSecretsRotated() {
	m.SecretsRotated.Inc()
}

func (m *Metrics) ObserveResolveClient(start time.Time) {
	m.ResolveClientDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementRedirectURIRejections() {
	m.RedirectURIRejections.Inc()
}
