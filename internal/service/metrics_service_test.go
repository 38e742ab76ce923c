package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceObserveAllocationRun(t *testing.T) {
	m := NewMetricsService()

	m.ObserveAllocationRun("completed", 2*time.Second, 8, 0)
	m.ObserveAllocationRun("partial", time.Second, 5, 3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.runTotal.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.runTotal.WithLabelValues("partial")))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.runStudents.WithLabelValues("allocated")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.runStudents.WithLabelValues("unallocated")))
}

func TestMetricsServiceCacheRatio(t *testing.T) {
	m := NewMetricsService()

	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheMisses))
	assert.InDelta(t, 2.0/3.0, testutil.ToFloat64(m.cacheHitRatio), 0.0001)
}

func TestMetricsServiceHandlerExposesAllocationSeries(t *testing.T) {
	m := NewMetricsService()
	m.ObserveAllocationRun("failed", time.Second, 0, 0)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/allocation/status", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `allocation_runs_total{status="failed"} 1`))
	assert.True(t, strings.Contains(body, "http_requests_total"))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveAllocationRun("completed", time.Second, 1, 0)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveDBQuery("q", time.Millisecond)
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}
