package vidsynth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	"github.com/kailas-cloud/vidsynth/internal/domain/chunk"
	"github.com/kailas-cloud/vidsynth/internal/repository/registry"
	answeruc "github.com/kailas-cloud/vidsynth/internal/usecase/answer"
	chunkinguc "github.com/kailas-cloud/vidsynth/internal/usecase/chunking"
	notesuc "github.com/kailas-cloud/vidsynth/internal/usecase/notes"
	storeuc "github.com/kailas-cloud/vidsynth/internal/usecase/store"
)

// Client is the vidsynth SDK entry point. It is safe for concurrent use.
type Client struct {
	chunker  *chunkinguc.Service
	builder  *storeuc.Builder
	registry *registry.Registry
	answers  *answeruc.Service
	notes    *notesuc.Service
	obs      *observer
}

// New creates a Client. Without WithEmbedder (or WithOpenAI / WithHashEmbedder)
// only Chunk works; without a generator Ask fails with ErrGenerationFailure.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		capacity:     domain.DefaultRegistryCapacity,
		topK:         domain.DefaultTopK,
		chunkSize:    domain.DefaultChunkSize,
		chunkOverlap: domain.DefaultChunkOverlap,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.chunkSize <= 0 || cfg.chunkOverlap < 0 || cfg.chunkOverlap >= cfg.chunkSize {
		return nil, fmt.Errorf("vidsynth: %w: chunk overlap must be in [0, size), got size=%d overlap=%d",
			ErrInvalidArgument, cfg.chunkSize, cfg.chunkOverlap)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var embedder domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		embedder = cfg.embedder
	}
	var generator domain.Generator = noopGenerator{}
	if cfg.generator != nil {
		generator = cfg.generator
	}

	reg := registry.New(cfg.capacity, zap.NewNop()).OnResize(obs.setStores)
	return &Client{
		chunker:  chunkinguc.New(cfg.chunkSize, cfg.chunkOverlap),
		builder:  storeuc.New(embedder).WithBatching(cfg.batchSize, cfg.concurrency),
		registry: reg,
		answers:  answeruc.New(reg, embedder, generator).WithTopK(cfg.topK),
		notes:    notesuc.New(generator),
		obs:      obs,
	}, nil
}

// Chunk splits a transcript into overlapping chunks. metadata is attached to every chunk.
// Empty or whitespace-only text yields no chunks.
func (c *Client) Chunk(text string, metadata map[string]string) (_ []Chunk, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chunk", start, err) }()

	chunks, err := c.chunker.Chunk(text, chunkinguc.Options{Metadata: metadata})
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}

	out := make([]Chunk, len(chunks))
	for i, ch := range chunks {
		out[i] = chunkFromDomain(ch)
	}
	return out, nil
}

// CreateStore embeds chunks into a new vector store and returns its id.
// May evict the oldest store when the client is at capacity.
func (c *Client) CreateStore(ctx context.Context, chunks []Chunk) (id string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("create_store", start, err, "chunks", len(chunks), "store_id", id) }()

	dcs := make([]chunk.Chunk, len(chunks))
	for i, ch := range chunks {
		if dcs[i], err = chunkToDomain(ch); err != nil {
			return "", fmt.Errorf("create store: %w: %w", ErrInvalidArgument, err)
		}
	}

	h, err := c.builder.Build(ctx, dcs)
	if err != nil {
		return "", fmt.Errorf("create store: %w", err)
	}

	if id, err = c.registry.Register(h); err != nil {
		return "", fmt.Errorf("create store: %w", err)
	}
	return id, nil
}

// Store describes a registered store. Returns ErrNotFound for unknown or evicted ids.
func (c *Client) Store(id string) (StoreInfo, error) {
	h, err := c.registry.Resolve(id)
	if err != nil {
		return StoreInfo{}, fmt.Errorf("store: %w", err)
	}
	return StoreInfo{ID: id, Chunks: h.Len(), Dimensions: h.Dimensions()}, nil
}

// Ask answers question from the chunks of store id.
func (c *Client) Ask(ctx context.Context, question, id string) (_ Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err, "store_id", id) }()

	ans, err := c.answers.Answer(ctx, question, id)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return answerFromDomain(ans), nil
}

// Notes writes study notes for a transcript.
func (c *Client) Notes(ctx context.Context, transcript string) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("notes", start, err) }()

	notes, err := c.notes.Notes(ctx, transcript)
	if err != nil {
		return "", fmt.Errorf("notes: %w", err)
	}
	return notes, nil
}

// Topics lists the key topics of a transcript.
func (c *Client) Topics(ctx context.Context, transcript string) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("topics", start, err) }()

	topics, err := c.notes.Topics(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("topics: %w", err)
	}
	return topics, nil
}
