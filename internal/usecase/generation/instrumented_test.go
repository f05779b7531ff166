package generation

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	"github.com/kailas-cloud/vidsynth/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterGenerationMetrics()
	os.Exit(m.Run())
}

type mockGenerator struct {
	res   domain.GenerationResult
	err   error
	calls int
}

func (m *mockGenerator) Generate(_ context.Context, _ string) (domain.GenerationResult, error) {
	m.calls++
	return m.res, m.err
}

func TestGenerate_Success(t *testing.T) {
	inner := &mockGenerator{res: domain.GenerationResult{Text: "ok", TotalTokens: 3}}
	g := NewInstrumentedGenerator(inner, "m", 0, 0, zap.NewNop())

	res, err := g.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "ok" || res.TotalTokens != 3 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestGenerate_InnerErrorPreserved(t *testing.T) {
	inner := &mockGenerator{err: domain.ErrGenerationFailure}
	g := NewInstrumentedGenerator(inner, "m", 0, 0, zap.NewNop())

	_, err := g.Generate(context.Background(), "p")
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}
}

func TestGenerate_ThrottledByDeadline(t *testing.T) {
	inner := &mockGenerator{res: domain.GenerationResult{Text: "ok"}}
	// One request per minute with burst 1: the second call cannot fit a 50ms deadline.
	g := NewInstrumentedGenerator(inner, "m", 1.0/60, 1, zap.NewNop())

	if _, err := g.Generate(context.Background(), "first"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx, "second")
	if !errors.Is(err, domain.ErrRateLimited) || !errors.Is(err, domain.ErrGenerationFailure) {
		t.Fatalf("expected rate-limited generation failure, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("provider must not be called when throttled, got %d calls", inner.calls)
	}
}

func TestGenerate_CooldownAfterProviderRateLimit(t *testing.T) {
	inner := &mockGenerator{err: domain.ErrRateLimited}
	g := NewInstrumentedGenerator(inner, "m", 0, 0, zap.NewNop()).WithCooldown(time.Hour)

	if _, err := g.Generate(context.Background(), "p"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	inner.err = nil
	_, err := g.Generate(ctx, "p")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected cooldown rejection, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected no provider call during cooldown, got %d", inner.calls)
	}
}

func TestGenerate_CooldownWaitsWithoutDeadline(t *testing.T) {
	inner := &mockGenerator{err: domain.ErrRateLimited}
	g := NewInstrumentedGenerator(inner, "m", 0, 0, zap.NewNop()).WithCooldown(20 * time.Millisecond)

	_, _ = g.Generate(context.Background(), "p")
	inner.err = nil
	inner.res = domain.GenerationResult{Text: "after"}

	start := time.Now()
	res, err := g.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "after" {
		t.Errorf("unexpected text %q", res.Text)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Error("expected the call to wait for the cooldown")
	}
}
