package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	version string
	model   string
}

// NewHealthHandler creates a new HealthHandler. model is the analyzer model in use;
// an empty model means no analyzer is wired and the service is not ready.
func NewHealthHandler(version, model string) *HealthHandler {
	return &HealthHandler{version: version, model: model}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.model == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "analyzer not configured"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Model: h.model})
}
