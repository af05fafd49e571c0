package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propcheck/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/session", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/session", http.NoBody))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	out := scrape(t, m)
	assert.Contains(t, out, `propcheck_http_requests_total{method="GET",path="/api/v1/session",status="200"} 1`)
	assert.Contains(t, out, `propcheck_http_requests_total{method="GET",path="unmatched",status="404"} 1`)
}

func TestRecordAnalysis(t *testing.T) {
	m := metrics.New()

	m.RecordAnalysis("success", 3*time.Second)
	m.RecordAnalysis("analysis", time.Second)
	m.RecordAnalysis("", time.Second)
	m.RecordStaleResult()
	m.RecordUpload("application/pdf", 2048)

	out := scrape(t, m)
	assert.Contains(t, out, `propcheck_analysis_completed_total{outcome="success"} 1`)
	assert.Contains(t, out, `propcheck_analysis_completed_total{outcome="unknown"} 1`)
	assert.Contains(t, out, `propcheck_analysis_duration_seconds_count 3`)
	assert.Contains(t, out, `propcheck_analysis_stale_results_total 1`)

	count, err := testutil.GatherAndCount(m.Registry(), "propcheck_upload_size_bytes")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
