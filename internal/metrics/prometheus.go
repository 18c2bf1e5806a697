package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the box score loader

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_api_calls_total",
			Help: "Total number of stats.nba.com API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBRowsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_db_rows_inserted_total",
			Help: "Total number of rows inserted per table",
		},
		[]string{"table"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_cache_hits_total",
			Help: "Total number of box score cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_cache_misses_total",
			Help: "Total number of box score cache misses",
		},
	)

	// Ingestion metrics
	GamesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_games_processed_total",
			Help: "Total number of games processed by outcome",
		},
		[]string{"outcome"},
	)

	RowsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_rows_dropped_total",
			Help: "Total number of box score rows dropped during normalization",
		},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_sync_operations_total",
			Help: "Total number of load runs",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_sync_duration_seconds",
			Help:    "Duration of load runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_last_successful_sync_timestamp",
			Help: "Timestamp of last successful load run",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordRowsInserted adds to the inserted row count of a table
func RecordRowsInserted(table string, n int) {
	if n > 0 {
		DBRowsInserted.WithLabelValues(table).Add(float64(n))
	}
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordGame records the outcome of one game
func RecordGame(outcome string, dropped int) {
	GamesProcessed.WithLabelValues(outcome).Inc()
	if dropped > 0 {
		RowsDropped.Add(float64(dropped))
	}
}

// RecordSync records a load run
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}
