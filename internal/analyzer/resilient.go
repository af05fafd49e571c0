package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"propcheck/internal/config"
	"propcheck/internal/domain"
	"propcheck/internal/port"
)

// ResilientAnalyzer wraps a DocumentAnalyzer with optional rate limiting,
// retries with exponential backoff and a circuit breaker.
type ResilientAnalyzer struct {
	next    port.DocumentAnalyzer
	cfg     config.ResilienceConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*domain.DueDiligenceReport]
	log     zerolog.Logger
}

// NewResilientAnalyzer wraps next with the policy in cfg.
func NewResilientAnalyzer(next port.DocumentAnalyzer, cfg config.ResilienceConfig, log zerolog.Logger) *ResilientAnalyzer {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}

	r := &ResilientAnalyzer{
		next: next,
		cfg:  cfg,
		log:  log.With().Str("component", "analyzer").Logger(),
	}

	if cfg.RequestsPerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	if cfg.BreakerEnabled {
		minRequests := cfg.BreakerMinRequests
		if minRequests == 0 {
			minRequests = 5
		}
		ratio := cfg.BreakerFailRatio
		if ratio <= 0 || ratio > 1 {
			ratio = 0.6
		}
		r.breaker = gobreaker.NewCircuitBreaker[*domain.DueDiligenceReport](gobreaker.Settings{
			Name:        "gemini",
			MaxRequests: 1,
			Timeout:     cfg.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < minRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
			},
			IsSuccessful: func(err error) bool {
				// only upstream failures count against the breaker
				var anErr *domain.AnalysisError
				return err == nil || !errors.As(err, &anErr) || !anErr.Retryable()
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				r.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
					Msg("circuit breaker state change")
			},
		})
	}

	return r
}

func (r *ResilientAnalyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*domain.DueDiligenceReport, error) {
	if r.breaker == nil {
		return r.analyzeWithRetry(ctx, input)
	}

	report, err := r.breaker.Execute(func() (*domain.DueDiligenceReport, error) {
		return r.analyzeWithRetry(ctx, input)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, domain.NewAnalysisError(domain.ReasonRequestFailed, err)
	}
	return report, err
}

func (r *ResilientAnalyzer) analyzeWithRetry(ctx context.Context, input port.AnalyzeInput) (*domain.DueDiligenceReport, error) {
	attempts := r.cfg.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	backoff := r.cfg.InitialBackoff

	for attempt := 1; ; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, domain.NewAnalysisError(domain.ReasonRateLimited, err)
			}
		}

		report, err := r.next.Analyze(ctx, input)
		if err == nil {
			return report, nil
		}

		var anErr *domain.AnalysisError
		if !errors.As(err, &anErr) || !anErr.Retryable() || attempt >= attempts || ctx.Err() != nil {
			return nil, err
		}

		wait := backoff
		if anErr.RetryAfter > wait {
			wait = anErr.RetryAfter
		}
		if wait > r.cfg.MaxBackoff {
			wait = r.cfg.MaxBackoff
		}
		r.log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", attempts).
			Dur("backoff", wait).Msg("retrying analysis")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}

		backoff *= 2
		if backoff > r.cfg.MaxBackoff {
			backoff = r.cfg.MaxBackoff
		}
	}
}
