package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline outcomes.
const (
	OutcomeOptimized   = "optimized"
	OutcomePassthrough = "passthrough"
	OutcomeBypass      = "bypass"
	OutcomeFallback    = "fallback"
	OutcomeFailed      = "failed"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Pipeline metrics
	PipelineOutcomes *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	OriginBodyBytes  prometheus.Histogram

	// Advisor metrics
	AdvisorCalls    *prometheus.CounterVec
	AdvisorDuration prometheus.Histogram
	BreakerState    *prometheus.GaugeVec

	startTime time.Time
	snapshot  Snapshot
	mu        sync.RWMutex
}

// Snapshot holds running totals for the JSON health endpoint
type Snapshot struct {
	TotalRequests int64            `json:"totalRequests"`
	Outcomes      map[string]int64 `json:"outcomes"`
	AdvisorHits   int64            `json:"advisorHits"`
	UptimeSeconds float64          `json:"uptimeSeconds"`
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		startTime: time.Now(),
		snapshot:  Snapshot{Outcomes: make(map[string]int64)},

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_http_requests_total",
				Help: "Total number of inbound HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edge_http_request_duration_seconds",
				Help:    "Time to first handler return in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edge_http_response_size_bytes",
				Help:    "Response size in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 4, 9),
			},
			[]string{"method", "route"},
		),

		PipelineOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_pipeline_outcomes_total",
				Help: "Proxy requests by pipeline outcome",
			},
			[]string{"outcome"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edge_pipeline_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
		OriginBodyBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edge_origin_body_bytes",
				Help:    "Decoded size of optimized origin documents",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),

		AdvisorCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_advisor_calls_total",
				Help: "Advisor calls by outcome",
			},
			[]string{"outcome"},
		),
		AdvisorDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edge_advisor_duration_seconds",
				Help:    "Advisor round-trip duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16},
			},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "edge_circuit_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "edge_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an inbound request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.mu.Unlock()
}

// RecordOutcome counts one pipeline outcome
func (m *Metrics) RecordOutcome(outcome string) {
	m.PipelineOutcomes.WithLabelValues(outcome).Inc()

	m.mu.Lock()
	m.snapshot.Outcomes[outcome]++
	m.mu.Unlock()
}

// RecordAdvisorCall counts one advisor call and its latency
func (m *Metrics) RecordAdvisorCall(outcome string, duration time.Duration) {
	m.AdvisorCalls.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.AdvisorDuration.Observe(duration.Seconds())
	}
	if outcome == "hit" {
		m.mu.Lock()
		m.snapshot.AdvisorHits++
		m.mu.Unlock()
	}
}

// SetBreakerState publishes a breaker state as 0/1/2
func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// ObserveBodySize records the decoded size of an optimized document
func (m *Metrics) ObserveBodySize(n int) {
	m.OriginBodyBytes.Observe(float64(n))
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := Snapshot{
		TotalRequests: m.snapshot.TotalRequests,
		AdvisorHits:   m.snapshot.AdvisorHits,
		Outcomes:      make(map[string]int64, len(m.snapshot.Outcomes)),
		UptimeSeconds: time.Since(m.startTime).Seconds(),
	}
	for k, v := range m.snapshot.Outcomes {
		out.Outcomes[k] = v
	}
	return out
}
