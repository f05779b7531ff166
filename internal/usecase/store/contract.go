package store

import (
	"context"

	"github.com/kailas-cloud/vidsynth/internal/domain"
)

// Embedder vectorizes transcript chunks.
// Implementations that also satisfy domain.BatchEmbedder are called in batches.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
