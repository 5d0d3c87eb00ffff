package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabric_remote_calls_total",
			Help: "Remote calls to Google Drive, Google Sheets and the public export",
		},
		[]string{"store", "operation", "result"},
	)

	remoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fabric_remote_call_duration_seconds",
			Help:    "Duration of remote calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	mirrorCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fabric_public_mirror_cache_hits_total",
		Help: "Public mirror lookups served from cache",
	})
	mirrorCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fabric_public_mirror_cache_misses_total",
		Help: "Public mirror lookups that fetched the export",
	})

	// SubmissionsTotal counts catalog submissions by final stage and outcome
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabric_submissions_total",
			Help: "Fabric submissions by stage and result",
		},
		[]string{"stage", "result"},
	)
)

// observe records one remote call
func observe(store, operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	remoteCallsTotal.WithLabelValues(store, operation, result).Inc()
	remoteCallDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
}
