package vidsynth

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	"github.com/kailas-cloud/vidsynth/internal/transport/hash"
	openaiTransport "github.com/kailas-cloud/vidsynth/internal/transport/openai"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder  domain.Embedder
	generator domain.Generator

	capacity     int
	topK         int
	chunkSize    int
	chunkOverlap int
	batchSize    int
	concurrency  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the text embedding provider. Required by CreateStore and Ask.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = newEmbedderAdapter(e)
	})
}

// WithGenerator sets the answer generation provider. Required by Ask.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = &generatorAdapter{inner: g}
	})
}

// OpenAIConfig configures WithOpenAI. Any OpenAI-compatible endpoint works,
// e.g. Gemini at https://generativelanguage.googleapis.com/v1beta/openai/.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	EmbeddingModel  string
	Dimensions      int
	GenerationModel string
	Temperature     float32
}

// WithOpenAI sets both providers to an OpenAI-compatible API.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.Dimensions,
			Provider:   "openai",
			Logger:     zap.NewNop(),
		})
		c.generator = openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.GenerationModel,
			Temperature: cfg.Temperature,
			Logger:      zap.NewNop(),
		})
	})
}

// WithHashEmbedder uses the offline feature-hashing embedder.
// Retrieval is lexical only; useful for tests and demos without network access.
func WithHashEmbedder(dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = hash.NewEmbedder(dimensions)
	})
}

// WithCapacity bounds the number of stores kept in memory. Default: 5.
// n <= 0 keeps every store until the Client is dropped.
func WithCapacity(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.capacity = n
	})
}

// WithTopK sets how many chunks Ask retrieves. Default: 4.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithChunking sets the chunk size and overlap, in characters, used by Chunk.
// Defaults: 1000 and 100.
func WithChunking(size, overlap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkSize = size
		c.chunkOverlap = overlap
	})
}

// WithBatching sets the embedding batch size and the number of batches embedded in parallel.
// Only used when the embedder implements BatchEmbedder. Defaults: 64 and 4.
func WithBatching(batchSize, concurrency int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = batchSize
		c.concurrency = concurrency
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
