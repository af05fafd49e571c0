package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propcheck/internal/handler"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		model      string
		path       string
		wantStatus int
		wantState  string
	}{
		{"liveness", "", "/healthz", http.StatusOK, "ok"},
		{"ready", "gemini-2.5-flash", "/readyz", http.StatusOK, "ok"},
		{"not ready", "", "/readyz", http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler("1.2.3", tt.model)
			r := gin.New()
			r.GET("/healthz", h.Liveness)
			r.GET("/readyz", h.Readiness)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body["status"])
		})
	}
}

func TestSchemaHandler_Get(t *testing.T) {
	r := gin.New()
	r.GET("/schema", handler.NewSchemaHandler().Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schema", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Type       interface{}            `json:"type"`
			Required   []string               `json:"required"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Data.Required, "riskAssessment")
	assert.Contains(t, body.Data.Properties, "ownershipHistory")
}
