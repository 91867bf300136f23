package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mathsoc_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ContentCacheLookups counts read-through cache lookups by cache name and
	// outcome (hit|miss|expired).
	ContentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mathsoc_content_cache_lookups_total",
			Help: "Total number of content cache lookups",
		},
		[]string{"cache", "outcome"},
	)

	// ContentFetchFailures counts failed fetches against the content store.
	ContentFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mathsoc_content_fetch_failures_total",
			Help: "Total number of failed content store fetches",
		},
		[]string{"cache"},
	)

	// AuthAttempts records admin authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mathsoc_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// GalleryFeedItems observes the size of generated virtual gallery feeds.
	GalleryFeedItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mathsoc_gallery_feed_items",
			Help:    "Number of items returned per gallery feed request",
			Buckets: []float64{8, 16, 32, 64, 128, 256},
		},
	)
)
