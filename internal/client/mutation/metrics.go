package mutation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daybook",
			Subsystem: "mutation",
			Name:      "total",
			Help:      "Optimistic mutations by operation and final state.",
		},
		[]string{"op", "state"},
	)

	remoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "daybook",
			Subsystem: "mutation",
			Name:      "remote_duration_seconds",
			Help:      "Time spent in the remote call of a mutation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	pendingGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "daybook",
			Subsystem: "mutation",
			Name:      "pending",
			Help:      "Mutations applied locally and awaiting the server.",
		},
	)
)
