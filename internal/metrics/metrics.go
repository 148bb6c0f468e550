package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics
var (
	PipelineFilesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picpurge_pipeline_files_processed_total",
			Help: "Total number of files successfully processed by the pipeline",
		},
	)

	PipelineFilesErrored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picpurge_pipeline_files_errored_total",
			Help: "Total number of files that failed processing",
		},
		[]string{"kind"},
	)

	PipelineSmallFilesRecycled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picpurge_pipeline_small_files_recycled_total",
			Help: "Total number of undersized files moved to the recycle directory",
		},
	)

	PipelineExtractDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "picpurge_pipeline_extract_duration_seconds",
			Help:    "Per-file feature extraction duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PipelineWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "picpurge_pipeline_workers",
			Help: "Number of concurrent extraction workers",
		},
	)
)

// Insert buffer metrics
var (
	BatchFlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picpurge_batch_flushes_total",
			Help: "Total number of insert buffer flushes",
		},
		[]string{"status"},
	)

	BatchFlushSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "picpurge_batch_flush_size",
			Help:    "Number of records per insert buffer flush",
			Buckets: []float64{1, 10, 50, 100, 250, 500},
		},
	)

	BatchFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "picpurge_batch_flush_duration_seconds",
			Help:    "Insert buffer flush duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picpurge_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "picpurge_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Analysis metrics
var (
	DuplicatePairsFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picpurge_duplicate_pairs_found_total",
			Help: "Total number of duplicate image pairs marked by the resolver",
		},
	)

	SimilarGroupsFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picpurge_similar_groups_found_total",
			Help: "Total number of similarity groups built by the clusterer",
		},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "picpurge_analysis_duration_seconds",
			Help:    "Duration of the analysis passes in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"pass"},
	)
)

// Thumbnail metrics
var (
	ThumbnailMemoryBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "picpurge_thumbnail_memory_bytes",
			Help: "Total bytes held by the in-memory thumbnail store",
		},
	)

	ThumbnailCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "picpurge_thumbnail_count",
			Help: "Number of thumbnails held by the in-memory thumbnail store",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picpurge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "picpurge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "picpurge_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)
