package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts persisted notifications by type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "themis_notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type"},
	)

	// DeliveryAttempts counts channel dispatches by channel and result (sent|failed).
	DeliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "themis_notification_deliveries_total",
			Help: "Total number of per-channel delivery attempts",
		},
		[]string{"channel", "result"},
	)

	// NotificationsCleaned counts rows removed by maintenance sweeps (retention|expiry).
	NotificationsCleaned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "themis_notifications_cleaned_total",
			Help: "Total number of notifications removed by background cleanup",
		},
		[]string{"reason"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "themis_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
