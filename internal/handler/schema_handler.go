package handler

import (
	"github.com/gin-gonic/gin"

	"propcheck/internal/schema"
)

// SchemaHandler serves the report schema.
type SchemaHandler struct{}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

// Get handles GET /api/v1/schema
// @Summary Get the report JSON schema
// @Description The schema every analysis result is validated against.
// @Tags schema
// @Produce json
// @Success 200 {object} Response "OpenAPI schema object"
// @Router /schema [get]
func (h *SchemaHandler) Get(c *gin.Context) {
	RespondOK(c, schema.Report())
}
