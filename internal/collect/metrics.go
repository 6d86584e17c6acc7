package collect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nudge",
		Subsystem: "collector",
		Name:      "ingest_events_total",
		Help:      "Total events ingested, by event name.",
	}, []string{"name"})

	ingestRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nudge",
		Subsystem: "collector",
		Name:      "ingest_requests_total",
		Help:      "Total ingest requests, by status.",
	}, []string{"status"})

	ingestDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nudge",
		Subsystem: "collector",
		Name:      "ingest_dropped_total",
		Help:      "Total events dropped during validation.",
	})

	ingestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nudge",
		Subsystem: "collector",
		Name:      "ingest_duration_seconds",
		Help:      "Ingest request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	batchFlushDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nudge",
		Subsystem: "collector",
		Name:      "batch_flush_duration_seconds",
		Help:      "Batch flush duration to DuckDB in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	activeInstancesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nudge",
		Subsystem: "collector",
		Name:      "active_instances",
		Help:      "Number of currently active editor instances.",
	})

	dbSizeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nudge",
		Subsystem: "collector",
		Name:      "db_size_bytes",
		Help:      "DuckDB database file size in bytes.",
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nudge",
		Subsystem: "collector",
		Name:      "ws_connections_active",
		Help:      "Number of active WebSocket connections.",
	})
)
