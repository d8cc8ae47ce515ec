package playqueue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playqueue_fetches_total",
		Help: "Total number of queue fetches by kind and outcome.",
	}, []string{"kind", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "playqueue_fetch_duration_seconds",
		Help:    "Duration of queue fetches by kind.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)
