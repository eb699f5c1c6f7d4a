package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrendsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendscout_trends_fetched_total",
		Help: "The total number of raw trend items fetched per source",
	}, []string{"source"})

	PipelineProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendscout_pipeline_processed_total",
		Help: "The total number of trend items reaching each terminal status",
	}, []string{"status"})

	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendscout_llm_calls_total",
		Help: "The total number of LLM calls by operation and outcome",
	}, []string{"operation", "outcome"})

	CatalogLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendscout_catalog_lookups_total",
		Help: "The total number of catalog lookup attempts by outcome",
	}, []string{"outcome"})

	PipelineBatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trendscout_pipeline_batch_duration_seconds",
		Help:    "Duration in seconds to process a pipeline batch",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})
)

// Metric label values.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeNotFound  = "not_found"
	OutcomeTransient = "transient"

	OpClassify = "classify"
	OpResolve  = "resolve_title"
)
