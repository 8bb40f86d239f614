package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// Metrics collector
// =============================================================================

// Collector registers and records Prometheus metrics for workflow runs,
// steps, LLM calls and the completion cache. All metrics share one
// namespace and register with the default registry through promauto.
type Collector struct {
	// Run metrics
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runsInflight *prometheus.GaugeVec

	// Step metrics
	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec

	// LLM metrics
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a collector with every metric registered under
// namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// Run metrics
	c.runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of workflow runs",
		},
		[]string{"workflow", "status"},
	)

	c.runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Workflow run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"workflow"},
	)

	c.runsInflight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_inflight",
			Help:      "Number of workflow runs currently executing",
		},
		[]string{"workflow"},
	)

	// Step metrics
	c.stepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of completed workflow steps",
		},
		[]string{"workflow", "agent", "outcome"},
	)

	c.stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Workflow step duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"workflow", "agent"},
	)

	// LLM metrics
	c.llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "model", "status"},
	)

	c.llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	c.llmTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"provider", "model", "type"}, // type: prompt, completion
	)

	// Cache metrics
	c.cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of completion cache hits",
		},
		[]string{"backend"},
	)

	c.cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of completion cache misses",
		},
		[]string{"backend"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// Run metrics
// =============================================================================

// RecordRunStart marks a run as in flight.
func (c *Collector) RecordRunStart(workflow string) {
	c.runsInflight.WithLabelValues(workflow).Inc()
}

// RecordRunEnd records a finished run and releases its in-flight slot.
func (c *Collector) RecordRunEnd(workflow, status string, duration time.Duration) {
	c.runsInflight.WithLabelValues(workflow).Dec()
	c.runsTotal.WithLabelValues(workflow, status).Inc()
	c.runDuration.WithLabelValues(workflow).Observe(duration.Seconds())
}

// RecordStep records one completed step.
func (c *Collector) RecordStep(workflow, agent, outcome string, duration time.Duration) {
	c.stepsTotal.WithLabelValues(workflow, agent, outcome).Inc()
	c.stepDuration.WithLabelValues(workflow, agent).Observe(duration.Seconds())
}

// =============================================================================
// LLM metrics
// =============================================================================

// RecordLLMRequest records one chat completion round trip.
func (c *Collector) RecordLLMRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int) {
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
}

// =============================================================================
// Cache metrics
// =============================================================================

// RecordCacheHit records a completion cache hit.
func (c *Collector) RecordCacheHit(backend string) {
	c.cacheHits.WithLabelValues(backend).Inc()
}

// RecordCacheMiss records a completion cache miss.
func (c *Collector) RecordCacheMiss(backend string) {
	c.cacheMisses.WithLabelValues(backend).Inc()
}
