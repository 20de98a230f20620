package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the server's prometheus collectors.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	ActiveConnections  prometheus.Gauge
	RankingCycles      prometheus.Counter
	NotificationsSent  *prometheus.CounterVec
	SubscribersEvicted prometheus.Counter
}

// New builds and registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelier_requests_total",
			Help: "Requests handled, by operation tag and status code.",
		}, []string{"operation", "status"}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hotelier_active_connections",
			Help: "Currently open client connections.",
		}),
		RankingCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotelier_ranking_cycles_total",
			Help: "Completed ranking recomputation cycles.",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelier_notifications_total",
			Help: "Notification deliveries, by channel and outcome.",
		}, []string{"channel", "outcome"}),
		SubscribersEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotelier_subscribers_evicted_total",
			Help: "Subscriber handles dropped after a failed delivery.",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.ActiveConnections,
		m.RankingCycles,
		m.NotificationsSent,
		m.SubscribersEvicted,
	)
	return m
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(operation string, status int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

// ObserveNotification records one delivery attempt on a channel.
func (m *Metrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.NotificationsSent.WithLabelValues(channel, outcome).Inc()
}
