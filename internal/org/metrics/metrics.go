package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OrgsCreated prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		OrgsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_organizations_created_total",
			Help: "Total number of organizations created",
		}),
	}
}

func (m *Metrics) IncrementOrgsCreated() {
	m.OrgsCreated.Inc()
}
