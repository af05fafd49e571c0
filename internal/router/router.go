package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"propcheck/internal/handler"
	"propcheck/internal/metrics"
	"propcheck/internal/middleware"
)

// Options holds the router's cross-cutting settings.
type Options struct {
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	// MaxMultipartMemory caps the part of an upload held in memory; the rest
	// spills to temp files.
	MaxMultipartMemory int64
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	opts Options,
	sessionH *handler.SessionHandler,
	schemaH *handler.SchemaHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	// Global middleware
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.GET("/schema", schemaH.Get)

	session := v1.Group("/session")
	session.GET("", sessionH.Get)
	session.POST("/upload", sessionH.Upload)
	session.POST("/import", sessionH.Import)
	session.POST("/reset", sessionH.Reset)
	session.GET("/report.md", sessionH.ExportMarkdown)
	session.GET("/report.xlsx", sessionH.ExportXLSX)
	session.GET("/report.csv", sessionH.ExportCSV)

	return r
}
