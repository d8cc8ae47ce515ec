package infocache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "infocache_hits_total",
		Help: "Total number of extraction cache hits.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "infocache_misses_total",
		Help: "Total number of extraction cache misses, expired entries included.",
	})
	cacheExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "infocache_expired_total",
		Help: "Total number of entries removed because their TTL elapsed.",
	})
	cacheEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "infocache_evictions_total",
		Help: "Total number of entries evicted by the LRU policy.",
	})
)
