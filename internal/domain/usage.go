package domain

import (
	"context"
	"sync/atomic"
)

type requestUsageKey struct{}

// RequestUsage collects provider token usage for a single request.
// The transport puts a pointer into the context; use cases add to it; the transport
// reads it back for response headers and the request log line.
// Safe for concurrent use: the store builder embeds batches in parallel.
type RequestUsage struct {
	embeddingTokens  atomic.Int64
	generationTokens atomic.Int64
	embedded         atomic.Bool
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *RequestUsage) {
	u := &RequestUsage{}
	return context.WithValue(ctx, requestUsageKey{}, u), u
}

// UsageFromContext returns the collector or nil if none is set.
func UsageFromContext(ctx context.Context) *RequestUsage {
	u, _ := ctx.Value(requestUsageKey{}).(*RequestUsage)
	return u
}

// AddEmbeddingTokens records embedding tokens. A nil receiver is a no-op.
func (u *RequestUsage) AddEmbeddingTokens(n int) {
	if u == nil {
		return
	}
	u.embeddingTokens.Add(int64(n))
	u.embedded.Store(true)
}

// AddGenerationTokens records generation tokens. A nil receiver is a no-op.
func (u *RequestUsage) AddGenerationTokens(n int) {
	if u == nil {
		return
	}
	u.generationTokens.Add(int64(n))
}

// EmbeddingTokens returns the embedding tokens recorded so far.
func (u *RequestUsage) EmbeddingTokens() int64 {
	if u == nil {
		return 0
	}
	return u.embeddingTokens.Load()
}

// GenerationTokens returns the generation tokens recorded so far.
func (u *RequestUsage) GenerationTokens() int64 {
	if u == nil {
		return 0
	}
	return u.generationTokens.Load()
}

// Embedded reports whether any embedding call was made, cache hits with zero tokens included.
func (u *RequestUsage) Embedded() bool {
	return u != nil && u.embedded.Load()
}
