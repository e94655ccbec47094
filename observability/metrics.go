// Package observability exposes the Prometheus collectors of the service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	MessagesSent         prometheus.Counter
	SendFailures         *prometheus.CounterVec
	SnapshotsDelivered   prometheus.Counter
	ActiveSubscriptions  prometheus.Gauge
	SubscriptionFailures prometheus.Counter
	ProcessRSSBytes      prometheus.Gauge
	ProcessCPUPercent    prometheus.Gauge
}

// NewMetrics builds and registers the collectors. Tests pass their own
// prometheus.NewRegistry() to stay isolated from the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Messages appended to a thread.",
		}),
		SendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_send_failures_total",
			Help: "Rejected or failed sends, by reason.",
		}, []string{"reason"}),
		SnapshotsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_snapshots_delivered_total",
			Help: "Snapshots handed to live subscribers.",
		}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_active_subscriptions",
			Help: "Live thread subscriptions currently registered.",
		}),
		SubscriptionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_subscription_failures_total",
			Help: "Subscriptions that ended in the failed state.",
		}),
		ProcessRSSBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_process_rss_bytes",
			Help: "Resident memory of the server process.",
		}),
		ProcessCPUPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_process_cpu_percent",
			Help: "CPU usage of the server process.",
		}),
	}
	reg.MustRegister(
		m.MessagesSent,
		m.SendFailures,
		m.SnapshotsDelivered,
		m.ActiveSubscriptions,
		m.SubscriptionFailures,
		m.ProcessRSSBytes,
		m.ProcessCPUPercent,
	)
	return m
}
