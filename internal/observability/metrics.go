package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchmaker",
		Name:      "feed_requests_total",
		Help:      "Total number of match feed requests",
	}, []string{"outcome"})

	FeedDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "matchmaker",
		Name:      "feed_duration_seconds",
		Help:      "Duration of match feed assembly",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	EmbeddingsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchmaker",
		Name:      "embeddings_generated_total",
		Help:      "Total number of profile embeddings generated",
	})

	EmbeddingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchmaker",
		Name:      "embedding_failures_total",
		Help:      "Total number of failed embedding provider calls",
	})

	ReasonsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchmaker",
		Name:      "reasons_generated_total",
		Help:      "Total number of match reasons generated",
	})

	ReasonFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchmaker",
		Name:      "reason_failures_total",
		Help:      "Total number of failed match reason generations",
	})

	ConnectionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchmaker",
		Name:      "connections_created_total",
		Help:      "Total number of mutual connections created",
	})

	BackfillQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "matchmaker",
		Name:      "backfill_queue_depth",
		Help:      "Number of pending embedding backfill tasks",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "matchmaker",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "matchmaker",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
