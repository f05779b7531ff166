// Package generation decorates text generators with throttling and logging.
package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	"github.com/kailas-cloud/vidsynth/internal/metrics"
)

// DefaultCooldown is the pause after the provider answers 429.
const DefaultCooldown = 10 * time.Second

// InstrumentedGenerator throttles calls with a token bucket, backs off after
// provider rate limits and logs every call.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedGenerator struct {
	inner    domain.Generator
	model    string
	limiter  *rate.Limiter
	cooldown time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	retryAt time.Time
}

// NewInstrumentedGenerator wraps inner. requestsPerSecond <= 0 disables throttling.
func NewInstrumentedGenerator(
	inner domain.Generator, model string,
	requestsPerSecond float64, burst int, logger *zap.Logger,
) *InstrumentedGenerator {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedGenerator{
		inner:    inner,
		model:    model,
		limiter:  rate.NewLimiter(limit, burst),
		cooldown: DefaultCooldown,
		logger:   logger,
	}
}

// WithCooldown overrides the back-off applied after a provider 429.
func (g *InstrumentedGenerator) WithCooldown(d time.Duration) *InstrumentedGenerator {
	if d > 0 {
		g.cooldown = d
	}
	return g
}

// Generate waits for a slot and delegates. A slot that cannot be obtained before
// the context deadline yields ErrRateLimited without calling the provider.
func (g *InstrumentedGenerator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	if err := g.wait(ctx); err != nil {
		metrics.GenerationErrorsTotal.WithLabelValues(g.model, "throttled").Inc()
		g.logger.Warn("Generation throttled", zap.String("model", g.model), zap.Error(err))
		return domain.GenerationResult{}, fmt.Errorf("%w: %w: %w", domain.ErrGenerationFailure, domain.ErrRateLimited, err)
	}

	start := time.Now()
	res, err := g.inner.Generate(ctx, prompt)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			g.backoff()
		}
		g.logger.Error("Generation request failed",
			zap.String("model", g.model),
			zap.Duration("duration", duration),
			zap.Int("prompt_len", len(prompt)),
			zap.Error(err),
		)
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}

	g.logger.Debug("Generation request completed",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", res.PromptTokens),
		zap.Int("completion_tokens", res.CompletionTokens),
	)
	return res, nil
}

// HealthCheck forwards to the wrapped generator when it can be checked.
func (g *InstrumentedGenerator) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (g *InstrumentedGenerator) wait(ctx context.Context) error {
	g.mu.Lock()
	retryAt := g.retryAt
	g.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		if deadline, ok := ctx.Deadline(); ok && deadline.Before(retryAt) {
			return fmt.Errorf("provider cooldown until %s", retryAt.Format(time.RFC3339))
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // wrapped by caller
		case <-t.C:
		}
	}

	return g.limiter.Wait(ctx) //nolint:wrapcheck // wrapped by caller
}

func (g *InstrumentedGenerator) backoff() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retryAt = time.Now().Add(g.cooldown)
}
