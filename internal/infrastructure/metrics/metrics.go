package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported by the real-time hub.
type Metrics struct {
	ActiveConnections   prometheus.Gauge
	ActiveSubscriptions prometheus.Gauge
	EventsBroadcast     *prometheus.CounterVec
	SendFailures        prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quickpoll_active_connections",
			Help: "Number of live client connections registered with the hub.",
		}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quickpoll_active_subscriptions",
			Help: "Number of poll subscriptions across all connections.",
		}),
		EventsBroadcast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quickpoll_events_broadcast_total",
			Help: "Events fanned out by the hub, by event type.",
		}, []string{"type"}),
		SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickpoll_send_failures_total",
			Help: "Sends that failed and evicted the target connection.",
		}),
	}

	reg.MustRegister(m.ActiveConnections, m.ActiveSubscriptions, m.EventsBroadcast, m.SendFailures)
	return m
}
