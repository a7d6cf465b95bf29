package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "partsboard",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "partsboard",
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of calls to the parts-history backend",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 11),
	}, []string{"resource", "outcome"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partsboard",
		Name:      "cache_lookups_total",
		Help:      "Query cache lookups by resource and result (hit, miss, shared)",
	}, []string{"resource", "result"})

	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partsboard",
		Name:      "cache_invalidated_keys_total",
		Help:      "Number of query cache keys dropped by invalidation",
	}, []string{"resource"})

	StatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partsboard",
		Name:      "subpart_status_updates_total",
		Help:      "Bulk subpart status submissions by scope and outcome",
	}, []string{"scope", "outcome"})

	ActiveWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "partsboard",
		Name:      "active_workspaces",
		Help:      "Number of open dashboard workspaces",
	})

	SearchPromotions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "partsboard",
		Name:      "search_promotions_total",
		Help:      "Debounced search inputs promoted to the view query",
	})

	AuditEventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partsboard",
		Name:      "audit_events_processed_total",
		Help:      "Status change events handled by the auditor",
	}, []string{"outcome"})
)
