package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	UsersRegistered prometheus.Counter
	LoginsSucceeded prometheus.Counter
	LoginsFailed    prometheus.Counter
	LoginDuration   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_users_registered_total",
			Help: "Total number of users registered",
		}),
		LoginsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_logins_succeeded_total",
			Help: "Total number of successful logins",
		}),
		LoginsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigil_logins_failed_total",
			Help: "Total number of failed login attempts",
		}),
		LoginDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigil_login_duration_seconds",
			Help:    "Duration of login operations (dominated by bcrypt verification)",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementUsersRegistered() {
	m.UsersRegistered.Inc()
}

func (m *Metrics) ObserveLogin(start time.Time, ok bool) {
	m.LoginDuration.Observe(time.Since(start).Seconds())
	if ok {
		m.LoginsSucceeded.Inc()
	} else {
		m.LoginsFailed.Inc()
	}
}
