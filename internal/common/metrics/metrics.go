// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "consultation_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_stage_failures_total",
			Help: "Total number of pipeline stage failures",
		},
		[]string{"stage", "error_code"},
	)

	ConsultationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultations_completed_total",
			Help: "Total number of persisted consultations by outcome",
		},
		[]string{"outcome"},
	)

	GeneratorFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_fallbacks_total",
			Help: "Number of times a stage fell back to deterministic output",
		},
		[]string{"stage", "reason"},
	)

	CatalogCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Supplement catalog cache lookups by result",
		},
		[]string{"result"},
	)

	RetrieverMode = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "knowledge_retriever_mode",
			Help: "Active retrieval mode (1 for the selected mode)",
		},
		[]string{"mode"},
	)

	JobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active Zeebe jobs per worker",
		},
		[]string{"task_type"},
	)
)
