package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "punk_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "punk_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Room engine metrics
	RoomsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "punk_rooms_created_total",
			Help: "Total rooms created",
		},
		[]string{"room_type"}, // "public", "private" or "ephemeral"
	)

	RoomsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "punk_rooms_deleted_total",
			Help: "Total rooms deleted",
		},
	)

	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "punk_connections_active",
			Help: "Live connections joined to a room",
		},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "punk_messages_sent_total",
			Help: "Total messages accepted",
		},
		[]string{"room_type"},
	)

	MessagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "punk_messages_rejected_total",
			Help: "Total sends dropped before reaching a room",
		},
		[]string{"reason"},
	)

	MessagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "punk_messages_deleted_total",
			Help: "Total messages soft-deleted",
		},
	)

	BroadcastDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "punk_broadcast_dropped_total",
			Help: "Frames not delivered because a connection buffer was full",
		},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "punk_rate_limit_hits_total",
			Help: "Total sends refused by the per-user rate limit",
		},
	)

	// Persistence metrics
	PersistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "punk_persist_duration_seconds",
			Help:    "Snapshot save duration",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"table"},
	)

	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "punk_persist_failures_total",
			Help: "Total failed snapshot saves",
		},
		[]string{"table"},
	)
)

// RoomType labels a room for the room_type dimension.
func RoomType(public, private bool) string {
	switch {
	case private:
		return "private"
	case public:
		return "public"
	default:
		return "ephemeral"
	}
}
