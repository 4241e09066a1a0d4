package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	stageLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_stage_latency_ms",
		Help:    "Latency of pipeline stages in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000, 60000},
	}, []string{"stage"})

	intentDetections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_intent_detections_total",
		Help: "Detected intents by source type",
	}, []string{"source_type"})

	retrievedDocs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_retrieved_docs",
		Help:    "Documents returned per source type after threshold filtering",
		Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 10},
	}, []string{"source_type"})

	thresholdDrops = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_threshold_dropped_total",
		Help: "Documents dropped by per-sub-type similarity threshold",
	}, []string{"doc_sub_type"})

	generationRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_generation_retries_total",
		Help: "Generation call retries by failure kind",
	}, []string{"kind"})

	generationFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assistant_generation_fallbacks_total",
		Help: "Answers served from the document-excerpt fallback",
	})

	rcaRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_rca_runs_total",
		Help: "RCA pipeline runs by identified root cause type",
	}, []string{"cause_type"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(stageLatency, intentDetections, retrievedDocs,
			thresholdDrops, generationRetries, generationFallbacks, rcaRuns)
	})
}

// ObserveStage records the latency of one pipeline stage.
func ObserveStage(stage string, start time.Time) {
	ensureRegistered()
	stageLatency.WithLabelValues(stage).Observe(float64(time.Since(start).Milliseconds()))
}

// IncIntent counts a detected intent.
func IncIntent(sourceType string) {
	ensureRegistered()
	intentDetections.WithLabelValues(sourceType).Inc()
}

// ObserveRetrieved records the post-filter document count for a source type.
func ObserveRetrieved(sourceType string, n int) {
	ensureRegistered()
	retrievedDocs.WithLabelValues(sourceType).Observe(float64(n))
}

// IncThresholdDrop counts a document removed by its sub-type threshold.
func IncThresholdDrop(docSubType string) {
	ensureRegistered()
	thresholdDrops.WithLabelValues(docSubType).Inc()
}

// IncGenerationRetry counts a retried generation call.
func IncGenerationRetry(kind string) {
	ensureRegistered()
	generationRetries.WithLabelValues(kind).Inc()
}

// IncGenerationFallback counts a fallback answer.
func IncGenerationFallback() {
	ensureRegistered()
	generationFallbacks.Inc()
}

// IncRCARun counts an RCA pipeline run.
func IncRCARun(causeType string) {
	ensureRegistered()
	rcaRuns.WithLabelValues(causeType).Inc()
}

// Collectors exposes all collectors for external registration with a custom registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		stageLatency, intentDetections, retrievedDocs,
		thresholdDrops, generationRetries, generationFallbacks, rcaRuns,
	}
}
