// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "telesticker"

var (
	// ConversionsTotal tracks per-asset conversion outcomes.
	// Labels:
	//   - kind: image, video
	//   - role: sticker, icon
	//   - outcome: success, failure
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Total number of asset conversions",
		},
		[]string{"kind", "role", "outcome"},
	)

	// EncodeAttempts observes how many bitrate-search attempts each video
	// conversion needed before fitting the byte budget or giving up.
	EncodeAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_attempts",
			Help:      "Bitrate-search attempts per video conversion",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
	)

	// BatchesTotal tracks whole-batch outcomes.
	// Labels:
	//   - outcome: ready, failed
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Total number of processed batches",
		},
		[]string{"outcome"},
	)

	// CacheOperationsTotal tracks cache operations (get, set, delete).
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error
	//   - cache_type: redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)
)

// Conversion outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Batch outcome constants.
const (
	BatchOutcomeReady  = "ready"
	BatchOutcomeFailed = "failed"
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Cache type constants.
const (
	CacheTypeRedis = "redis"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
