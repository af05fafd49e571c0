package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"propcheck/internal/analyzer"
	"propcheck/internal/analyzer/gemini"
	"propcheck/internal/config"
	"propcheck/internal/handler"
	"propcheck/internal/logging"
	"propcheck/internal/metrics"
	"propcheck/internal/port"
	"propcheck/internal/router"
	"propcheck/internal/service"
	s3storage "propcheck/internal/storage/s3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize analyzer
	if cfg.Analyzer.Provider != "gemini" {
		return fmt.Errorf("unsupported analyzer provider %q", cfg.Analyzer.Provider)
	}
	geminiAnalyzer, err := gemini.NewAnalyzer(&cfg.Analyzer)
	if err != nil {
		return fmt.Errorf("failed to initialize analyzer: %w", err)
	}
	var docAnalyzer port.DocumentAnalyzer = geminiAnalyzer
	if cfg.Resilience.Enabled() {
		docAnalyzer = analyzer.NewResilientAnalyzer(geminiAnalyzer, cfg.Resilience, logger)
		logger.Info().
			Int("max_retries", cfg.Resilience.MaxRetries).
			Bool("breaker", cfg.Resilience.BreakerEnabled).
			Int("requests_per_minute", cfg.Resilience.RequestsPerMinute).
			Msg("analyzer resilience enabled")
	}

	// Initialize storage
	var source port.DocumentSource
	if cfg.S3.Enabled {
		s3Source, err := s3storage.NewS3Source(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 source: %w", err)
		}
		source = s3Source
		logger.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 import enabled")
	}

	m := metrics.New()

	// Initialize services
	sessionSvc := service.NewSessionService(docAnalyzer, source, service.SessionOptions{
		MaxBytes: cfg.Upload.MaxBytes(),
		Timeout:  cfg.Analyzer.Timeout(),
		Logger:   logger,
		Recorder: m,
	})

	// Initialize handlers
	sessionH := handler.NewSessionHandler(sessionSvc, cfg.Upload.MaxBytes())
	schemaH := handler.NewSchemaHandler()
	healthH := handler.NewHealthHandler(version, geminiAnalyzer.Model())

	// Setup router
	r := router.Setup(router.Options{
		Logger:             logger,
		Metrics:            m,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		MaxMultipartMemory: cfg.Upload.MaxBytes(),
	}, sessionH, schemaH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return serve(srv, cfg.Server, logger)
}

func serve(srv *http.Server, cfg config.ServerConfig, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", version).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
