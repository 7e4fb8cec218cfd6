package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuehub",
			Subsystem: "notification",
			Name:      "deliveries_total",
			Help:      "Notification delivery attempts by transport and outcome",
		},
		[]string{"transport", "outcome"},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "venuehub",
			Subsystem: "notification",
			Name:      "queue_depth",
			Help:      "Notifications waiting for delivery",
		},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "venuehub",
			Subsystem: "notification",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per transport (0=closed, 1=open, 2=half-open)",
		},
		[]string{"transport"},
	)
)
