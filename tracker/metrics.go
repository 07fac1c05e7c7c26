package tracker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const trackerLabel = "tracker"

var (
	visibilityQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visibility_queries_total",
		Help: "The number of visibility queries.",
	}, []string{trackerLabel})

	visibilityCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visibility_query_cache_hits_total",
		Help: "The number of visibility queries served from the result cache.",
	}, []string{trackerLabel})

	visibilityQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "visibility_query_latency_seconds",
		Help: "The time to answer a visibility query.",
	}, []string{trackerLabel})

	trackedEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tracked_entities",
		Help: "The number of tracked entities.",
	}, []string{trackerLabel})

	activeRegions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "active_regions",
		Help: "The number of live regions in the spatial grid.",
	}, []string{trackerLabel})

	reapedEntities = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reaped_entities_total",
		Help: "The number of entities purged for staleness.",
	}, []string{trackerLabel})
)

func instrumentQuery(trackerID string, start time.Time, cacheHit bool) {
	labels := prometheus.Labels{trackerLabel: trackerID}
	visibilityQueries.With(labels).Inc()
	if cacheHit {
		visibilityCacheHits.With(labels).Inc()
	}
	visibilityQueryLatency.With(labels).Observe(time.Since(start).Seconds())
}

func instrumentEntityCount(trackerID string, n int) {
	trackedEntities.
		With(prometheus.Labels{trackerLabel: trackerID}).
		Set(float64(n))
}

func instrumentRegionCount(trackerID string, n int) {
	activeRegions.
		With(prometheus.Labels{trackerLabel: trackerID}).
		Set(float64(n))
}

func instrumentReapedEntities(trackerID string, n int) {
	reapedEntities.
		With(prometheus.Labels{trackerLabel: trackerID}).
		Add(float64(n))
}
