package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuehub",
			Subsystem: "auth",
			Name:      "tokens_issued_total",
			Help:      "Session token issuance attempts by outcome",
		},
		[]string{"outcome"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuehub",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Credential logins by outcome",
		},
		[]string{"outcome"},
	)
)
