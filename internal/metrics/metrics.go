package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts admission decisions. The fail-open counter is the one to
// alert on: it rises when the counter store is unreachable and requests are
// being waved through.
type Metrics struct {
	RequestsAllowed *prometheus.CounterVec
	RequestsDenied  *prometheus.CounterVec
	FailOpen        *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		RequestsAllowed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cvforge_admission_allowed_total",
			Help: "Total number of requests admitted by a guard",
		}, []string{"guard"}),
		RequestsDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cvforge_admission_denied_total",
			Help: "Total number of requests denied by a guard",
		}, []string{"guard"}),
		FailOpen: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cvforge_admission_fail_open_total",
			Help: "Total number of requests admitted because a backing store check failed",
		}, []string{"guard"}),
	}
}

func (m *Metrics) IncrementAllowed(guard string) {
	m.RequestsAllowed.WithLabelValues(guard).Inc()
}

func (m *Metrics) IncrementDenied(guard string) {
	m.RequestsDenied.WithLabelValues(guard).Inc()
}

func (m *Metrics) IncrementFailOpen(guard string) {
	m.FailOpen.WithLabelValues(guard).Inc()
}
