package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	domanswer "github.com/kailas-cloud/vidsynth/internal/domain/answer"
	"github.com/kailas-cloud/vidsynth/internal/domain/prompt"
	"github.com/kailas-cloud/vidsynth/internal/logger"
)

// Service answers questions against a registered vector store.
type Service struct {
	stores StoreResolver
	embed  Embedder
	gen    Generator
	topK   int
}

// New creates an answer service.
func New(stores StoreResolver, embed Embedder, gen Generator) *Service {
	return &Service{
		stores: stores,
		embed:  embed,
		gen:    gen,
		topK:   domain.DefaultTopK,
	}
}

// WithTopK configures how many chunks are retrieved per question.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// TopK returns the configured retrieval depth.
func (s *Service) TopK() int { return s.topK }

// Answer retrieves the most relevant chunks of storeID and generates an answer from them.
func (s *Service) Answer(ctx context.Context, question, storeID string) (domanswer.Answer, error) {
	return s.AnswerTopK(ctx, question, storeID, s.topK)
}

// AnswerTopK is Answer with an explicit retrieval depth; k <= 0 falls back to the configured one.
func (s *Service) AnswerTopK(ctx context.Context, question, storeID string, k int) (domanswer.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domanswer.Answer{}, fmt.Errorf("question is required: %w", domain.ErrInvalidArgument)
	}
	if k <= 0 {
		k = s.topK
	}

	h, err := s.stores.Resolve(storeID)
	if err != nil {
		return domanswer.Answer{}, fmt.Errorf("resolve store: %w", err)
	}

	q, err := s.embed.Embed(ctx, question)
	if err != nil {
		return domanswer.Answer{}, fmt.Errorf("vectorize question: %w", tag(err, domain.ErrEmbeddingFailure))
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(q.TotalTokens)

	hits, err := h.Search(q.Embedding, k)
	if err != nil {
		return domanswer.Answer{}, fmt.Errorf("search store: %w: %w", domain.ErrEmbeddingFailure, err)
	}

	texts := make([]string, len(hits))
	sources := make([]domanswer.Source, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Chunk.Text()
		sources[i] = domanswer.Source{Chunk: hit.Chunk, Score: hit.Score}
	}

	res, err := s.gen.Generate(ctx, prompt.Answer(prompt.Context(texts), question))
	if err != nil {
		return domanswer.Answer{}, fmt.Errorf("generate answer: %w", tag(err, domain.ErrGenerationFailure))
	}
	domain.UsageFromContext(ctx).AddGenerationTokens(res.TotalTokens)

	logger.FromContext(ctx).Debug("Question answered",
		zap.String("vector_store_id", storeID),
		zap.Int("retrieved", len(hits)),
		zap.Int("answer_len", len(res.Text)),
	)
	return domanswer.New(res.Text, question, sources), nil
}

// tag adds kind to err unless err already carries it.
func tag(err, kind error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
