package metrics

import (
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeBadRequest   = "bad_request"
	OutcomeError        = "error"
	OutcomeAborted      = "aborted"
)

const namespace = "modelsagent"

// AtomicRequestStats thread-safe request statistics
type AtomicRequestStats struct {
	TotalRequests      atomic.Int64
	SuccessfulRequests atomic.Int64
	FailedRequests     atomic.Int64
	TotalResponseTime  atomic.Int64
}

// RequestStats is a point-in-time copy of the request counters.
type RequestStats struct {
	TotalRequests      int64     `json:"total_requests"`
	SuccessfulRequests int64     `json:"successful_requests"`
	FailedRequests     int64     `json:"failed_requests"`
	AvgResponseTimeMs  int64     `json:"avg_response_time_ms"`
	QPS                float64   `json:"qps"`
	LastRequestTime    time.Time `json:"last_request_time"`
}

// MetricsService implements core.MetricsCollector on a private Prometheus
// registry and keeps a few counters for the health endpoint.
type MetricsService struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	toolsSelected *prometheus.CounterVec
	streamChunks  prometheus.Counter
	keyCache      *prometheus.CounterVec
	upstream      *prometheus.HistogramVec
	upstreamErrs  *prometheus.CounterVec

	atomicStats     AtomicRequestStats
	lastRequestTime atomic.Int64
	recentRequests  []time.Time
	recentMu        sync.Mutex
}

// NewMetricsService creates a new MetricsService
func NewMetricsService() *MetricsService {
	r := prometheus.NewRegistry()
	ms := &MetricsService{
		registry: r,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Agent requests by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Agent request duration, including the streamed response.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		toolsSelected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tools_selected_total",
			Help:      "Tools chosen by the tool-calling model.",
		}, []string{"tool"}),
		streamChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_chunks_total",
			Help:      "Completion chunks relayed to callers.",
		}),
		keyCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_cache_lookups_total",
			Help:      "Public key cache lookups by result.",
		}, []string{"result"}),
		upstream: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Latency of calls to external services.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target"}),
		upstreamErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed calls to external services.",
		}, []string{"target"}),
	}
	r.MustRegister(ms.requests, ms.latency, ms.toolsSelected, ms.streamChunks, ms.keyCache, ms.upstream, ms.upstreamErrs)
	return ms
}

// Handler serves the registry in the Prometheus exposition format.
func (ms *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(ms.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (ms *MetricsService) Registry() *prometheus.Registry {
	return ms.registry
}

// RecordRequest records a finished request
func (ms *MetricsService) RecordRequest(outcome string, duration time.Duration) {
	ms.requests.WithLabelValues(outcome).Inc()
	ms.latency.WithLabelValues(outcome).Observe(duration.Seconds())

	now := time.Now()
	ms.lastRequestTime.Store(now.UnixNano())
	ms.atomicStats.TotalRequests.Add(1)
	ms.atomicStats.TotalResponseTime.Add(duration.Milliseconds())
	if outcome == OutcomeOK {
		ms.atomicStats.SuccessfulRequests.Add(1)
	} else {
		ms.atomicStats.FailedRequests.Add(1)
	}

	ms.recentMu.Lock()
	ms.recentRequests = append(ms.recentRequests, now)
	ms.pruneRecent(now)
	ms.recentMu.Unlock()
}

// RecordToolSelected records a tool chosen by the tool-calling model
func (ms *MetricsService) RecordToolSelected(tool string) {
	ms.toolsSelected.WithLabelValues(tool).Inc()
}

// RecordStreamChunk records one relayed completion chunk
func (ms *MetricsService) RecordStreamChunk() {
	ms.streamChunks.Inc()
}

// RecordKeyCacheHit records a key set served from cache
func (ms *MetricsService) RecordKeyCacheHit() {
	ms.keyCache.WithLabelValues("hit").Inc()
}

// RecordKeyCacheMiss records a key set fetch
func (ms *MetricsService) RecordKeyCacheMiss() {
	ms.keyCache.WithLabelValues("miss").Inc()
}

// RecordUpstreamCall records the latency of an external call and whether it failed
func (ms *MetricsService) RecordUpstreamCall(target string, duration time.Duration, err error) {
	ms.upstream.WithLabelValues(target).Observe(duration.Seconds())
	if err != nil {
		ms.upstreamErrs.WithLabelValues(target).Inc()
	}
}

// pruneRecent drops entries older than a minute. Caller holds recentMu.
func (ms *MetricsService) pruneRecent(now time.Time) {
	cutoff := now.Add(-1 * time.Minute)
	startIdx := 0
	for startIdx < len(ms.recentRequests) && ms.recentRequests[startIdx].Before(cutoff) {
		startIdx++
	}
	if startIdx > 0 {
		newRecent := make([]time.Time, len(ms.recentRequests)-startIdx)
		copy(newRecent, ms.recentRequests[startIdx:])
		ms.recentRequests = newRecent
	}
}

// GetQPS returns requests per second over the last minute
func (ms *MetricsService) GetQPS() float64 {
	ms.recentMu.Lock()
	defer ms.recentMu.Unlock()

	ms.pruneRecent(time.Now())
	if len(ms.recentRequests) == 0 {
		return 0
	}
	return math.Round(float64(len(ms.recentRequests))/60.0*1000) / 1000
}

// GetRequestStats returns current stats snapshot
func (ms *MetricsService) GetRequestStats() RequestStats {
	stats := RequestStats{
		TotalRequests:      ms.atomicStats.TotalRequests.Load(),
		SuccessfulRequests: ms.atomicStats.SuccessfulRequests.Load(),
		FailedRequests:     ms.atomicStats.FailedRequests.Load(),
		QPS:                ms.GetQPS(),
	}
	if stats.TotalRequests > 0 {
		stats.AvgResponseTimeMs = ms.atomicStats.TotalResponseTime.Load() / stats.TotalRequests
	}
	if ns := ms.lastRequestTime.Load(); ns > 0 {
		stats.LastRequestTime = time.Unix(0, ns)
	}
	return stats
}
