package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"modelsagent/internal/core"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.MetricsCollector = (*MetricsService)(nil)

func TestRecordRequest(t *testing.T) {
	ms := NewMetricsService()

	ms.RecordRequest(OutcomeOK, 100*time.Millisecond)
	ms.RecordRequest(OutcomeUnauthorized, 10*time.Millisecond)
	ms.RecordRequest(OutcomeOK, 200*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(ms.requests.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ms.requests.WithLabelValues(OutcomeUnauthorized)))

	stats := ms.GetRequestStats()
	assert.EqualValues(t, 3, stats.TotalRequests)
	assert.EqualValues(t, 2, stats.SuccessfulRequests)
	assert.EqualValues(t, 1, stats.FailedRequests)
	assert.EqualValues(t, 103, stats.AvgResponseTimeMs)
	assert.False(t, stats.LastRequestTime.IsZero())
}

func TestGetQPS(t *testing.T) {
	ms := NewMetricsService()
	assert.Zero(t, ms.GetQPS())

	for range 6 {
		ms.RecordRequest(OutcomeOK, time.Millisecond)
	}
	assert.InDelta(t, 0.1, ms.GetQPS(), 0.001)

	ms.recentMu.Lock()
	ms.recentRequests[0] = time.Now().Add(-2 * time.Minute)
	ms.recentMu.Unlock()
	assert.InDelta(t, 5.0/60.0, ms.GetQPS(), 0.001)
}

func TestCollectors(t *testing.T) {
	ms := NewMetricsService()

	ms.RecordToolSelected("execute_model")
	ms.RecordToolSelected("execute_model")
	ms.RecordStreamChunk()
	ms.RecordKeyCacheHit()
	ms.RecordKeyCacheMiss()
	ms.RecordKeyCacheMiss()
	ms.RecordUpstreamCall("catalog", 20*time.Millisecond, nil)
	ms.RecordUpstreamCall("catalog", 20*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(ms.toolsSelected.WithLabelValues("execute_model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ms.streamChunks))
	assert.Equal(t, 1.0, testutil.ToFloat64(ms.keyCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(ms.keyCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ms.upstreamErrs.WithLabelValues("catalog")))
	assert.Equal(t, 1, testutil.CollectAndCount(ms.upstream))
}

func TestHandlerExposesMetrics(t *testing.T) {
	ms := NewMetricsService()
	ms.RecordRequest(OutcomeOK, time.Second)
	ms.RecordToolSelected("list_models")

	rec := httptest.NewRecorder()
	ms.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `modelsagent_requests_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), `modelsagent_tools_selected_total{tool="list_models"} 1`)
	assert.Contains(t, string(body), "modelsagent_request_duration_seconds_bucket")
}

func TestConcurrentRecording(t *testing.T) {
	ms := NewMetricsService()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				ms.RecordRequest(OutcomeOK, time.Millisecond)
				ms.RecordStreamChunk()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1000, ms.GetRequestStats().TotalRequests)
	assert.Equal(t, 1000.0, testutil.ToFloat64(ms.streamChunks))
}
