package authorization

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var guardDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "venuehub",
		Subsystem: "authz",
		Name:      "guard_decisions_total",
		Help:      "Access guard decisions by operation and outcome",
	},
	[]string{"operation", "decision"},
)

var resolveDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "venuehub",
		Subsystem: "authz",
		Name:      "resolve_duration_seconds",
		Help:      "Time spent resolving access profiles",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	},
)
