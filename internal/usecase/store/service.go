// Package store turns chunk lists into searchable vector-store handles.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	"github.com/kailas-cloud/vidsynth/internal/domain/chunk"
	"github.com/kailas-cloud/vidsynth/internal/index"
	"github.com/kailas-cloud/vidsynth/internal/logger"
)

const (
	defaultBatchSize   = 64
	defaultConcurrency = 4
)

// Builder embeds chunks and indexes them. Stateless and safe for concurrent use.
type Builder struct {
	embed       Embedder
	batchSize   int
	concurrency int
}

// New creates a store builder.
func New(embed Embedder) *Builder {
	return &Builder{
		embed:       embed,
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
	}
}

// WithBatching configures sub-batch size and how many sub-batches are embedded at once.
func (b *Builder) WithBatching(batchSize, concurrency int) *Builder {
	if batchSize > 0 {
		b.batchSize = batchSize
	}
	if concurrency > 0 {
		b.concurrency = concurrency
	}
	return b
}

// Build embeds every chunk and returns a read-only handle.
// Position i of the handle always holds chunks[i]. Any embedding problem aborts the whole build.
func (b *Builder) Build(ctx context.Context, chunks []chunk.Chunk) (*index.Handle, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("build store: %w", domain.ErrEmptyInput)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text()
	}

	vectors, err := b.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	h, err := index.New(chunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}

	logger.FromContext(ctx).Debug("Vector store built",
		zap.Int("chunks", h.Len()),
		zap.Int("dimensions", h.Dimensions()),
	)
	return h, nil
}

func (b *Builder) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	if _, ok := b.embed.(domain.BatchEmbedder); !ok {
		for i, text := range texts {
			res, err := b.embed.Embed(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d: %w", i, wrapEmbedding(err))
			}
			domain.UsageFromContext(ctx).AddEmbeddingTokens(res.TotalTokens)
			vectors[i] = res.Embedding
		}
		return vectors, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for lo := 0; lo < len(texts); lo += b.batchSize {
		hi := min(lo+b.batchSize, len(texts))
		g.Go(func() error {
			res, err := domain.EmbedAll(gctx, b.embed, texts[lo:hi])
			if err != nil {
				return fmt.Errorf("embed chunks [%d, %d): %w", lo, hi, wrapEmbedding(err))
			}
			if len(res.Embeddings) != hi-lo {
				return fmt.Errorf("embed chunks [%d, %d): got %d vectors: %w",
					lo, hi, len(res.Embeddings), domain.ErrEmbeddingFailure)
			}
			domain.UsageFromContext(ctx).AddEmbeddingTokens(res.TotalTokens)
			copy(vectors[lo:hi], res.Embeddings)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped inside the group
	}
	return vectors, nil
}

// wrapEmbedding tags provider errors with ErrEmbeddingFailure unless they already carry it.
// Quota and rate-limit errors keep their own kind as well.
func wrapEmbedding(err error) error {
	if errors.Is(err, domain.ErrEmbeddingFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
}
