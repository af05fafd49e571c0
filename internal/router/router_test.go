package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"propcheck/internal/handler"
	"propcheck/internal/metrics"
	"propcheck/internal/router"
	"propcheck/internal/service"
	"propcheck/mocks"
)

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockSessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mockSvc := new(mocks.MockSessionService)
	r := router.Setup(
		router.Options{
			Logger:         zerolog.Nop(),
			Metrics:        metrics.New(),
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		handler.NewSessionHandler(mockSvc, 1<<20),
		handler.NewSchemaHandler(),
		handler.NewHealthHandler("test", "gemini-2.5-flash"),
	)
	return r, mockSvc
}

func TestSetup_Routes(t *testing.T) {
	r, mockSvc := setupRouter(t)
	mockSvc.On("Snapshot").Return(service.Snapshot{Phase: service.PhaseIdle})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/api/v1/schema", http.StatusOK},
		{http.MethodGet, "/api/v1/session", http.StatusOK},
		{http.MethodGet, "/api/v1/session/report.md", http.StatusConflict},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, http.NoBody))
		assert.Equal(t, tt.want, w.Code, tt.path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), tt.path)
	}
}

func TestSetup_MetricsExposed(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `propcheck_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestSetup_CORSPreflight(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/session/upload", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
