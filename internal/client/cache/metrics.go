package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pageLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daybook",
			Subsystem: "cache",
			Name:      "page_loads_total",
			Help:      "Page loads by result (ok, error, stale).",
		},
		[]string{"result"},
	)

	invalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "daybook",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache invalidations.",
		},
	)
)
