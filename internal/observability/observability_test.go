package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordAndExpose(t *testing.T) {
	m := New()
	m.ObserveAPI("POST", "/api/scenarios/:id/decision", 200, 15*time.Millisecond)
	m.ObserveAggregateOperation("Learning.Progress.Complete", "success", time.Millisecond)
	m.IncAggregateConflict("Learning.Progress.Start")
	m.ObserveLLMRequest("gpt-4o", "coaching_feedback", "success", time.Second, 120, 40)
	m.ObserveWorkerTask("insights", "success", 2*time.Second)
	m.SetWorkerQueueDepth(3)
	m.RealtimeClientDelta(1)
	m.IncRealtimeEvent("insights_generated")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("POST", "/api/scenarios/:id/decision", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aggregateConflicts.WithLabelValues("Learning.Progress.Start")))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.llmTokens.WithLabelValues("gpt-4o", "input")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.workerQueue))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "agilecoach_api_requests_total"))
	assert.True(t, strings.Contains(body, "agilecoach_realtime_events_total"))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.ObserveLLMRequest("", "", "", 0, 0, 0)
	m.ObserveWorkerTask("t", "success", 0)
	m.RealtimeClientDelta(-1)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitTracingDisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), nil, TracingConfig{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestParseHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"x-api-key": "abc", "x-team": "coach"}, ParseHeaders("x-api-key=abc, bad ,x-team = coach"))
	assert.Nil(t, ParseHeaders(""))
	assert.Nil(t, ParseHeaders("novalue=,=nokey"))
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 1.0, ClampRatio(4))
	assert.Equal(t, 0.0, ClampRatio(-1))
	assert.Equal(t, 0.25, ClampRatio(0.25))
}
