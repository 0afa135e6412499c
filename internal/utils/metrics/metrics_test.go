package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return New("test", prometheus.NewRegistry())
}

func TestRecordHTTPRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordHTTPRequest("POST", "/api/ai/generate-article", 200, 100*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/ai/generate-article", 402, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/ai/generate-article", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/ai/generate-article", "4xx")))
}

func TestRecordGeneration(t *testing.T) {
	m := newTestMetrics()

	m.RecordGeneration("article", "success")
	m.RecordGeneration("article", "success")
	m.RecordGeneration("image", "denied")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("article", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("image", "denied")))
}

func TestRecordDecision(t *testing.T) {
	m := newTestMetrics()

	m.RecordDecision("text", true)
	m.RecordDecision("text", false)
	m.RecordDecision("text", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntitlementDecisions.WithLabelValues("text", "allow")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntitlementDecisions.WithLabelValues("text", "deny")))
}

func TestRecordReconciliation(t *testing.T) {
	m := newTestMetrics()

	m.RecordReconciliation("image")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconciliationEvents.WithLabelValues("image")))
}

func TestRecordProviderCall(t *testing.T) {
	m := newTestMetrics()

	m.RecordProviderCall("gemini", nil, time.Second)
	m.RecordProviderCall("gemini", errors.New("boom"), time.Second)

	assert.Equal(t, 2, testutil.CollectAndCount(m.ProviderRequestDuration))
}

func TestSetBreakerState(t *testing.T) {
	m := newTestMetrics()

	m.SetBreakerState("clipdrop", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderBreakerState.WithLabelValues("clipdrop")))
}

func TestCacheCounters(t *testing.T) {
	m := newTestMetrics()

	m.RecordCacheHit("author")
	m.RecordCacheMiss("author")
	m.RecordCacheMiss("author")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("author")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("author")))
}

func TestStatusCodeToString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{402, "4xx"},
		{504, "5xx"},
		{100, "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusCodeToString(tt.code))
	}
}
