package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vidsynth/internal/config"
	"github.com/kailas-cloud/vidsynth/internal/db"
	dbRedis "github.com/kailas-cloud/vidsynth/internal/db/redis"
	"github.com/kailas-cloud/vidsynth/internal/domain"
	logpkg "github.com/kailas-cloud/vidsynth/internal/logger"
	"github.com/kailas-cloud/vidsynth/internal/metrics"
	budgetrepo "github.com/kailas-cloud/vidsynth/internal/repository/budget"
	"github.com/kailas-cloud/vidsynth/internal/repository/embcache"
	"github.com/kailas-cloud/vidsynth/internal/repository/registry"
	"github.com/kailas-cloud/vidsynth/internal/transport/hash"
	openaiTransport "github.com/kailas-cloud/vidsynth/internal/transport/openai"
	answeruc "github.com/kailas-cloud/vidsynth/internal/usecase/answer"
	chunkinguc "github.com/kailas-cloud/vidsynth/internal/usecase/chunking"
	embeddinguc "github.com/kailas-cloud/vidsynth/internal/usecase/embedding"
	generationuc "github.com/kailas-cloud/vidsynth/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/vidsynth/internal/usecase/health"
	notesuc "github.com/kailas-cloud/vidsynth/internal/usecase/notes"
	storeuc "github.com/kailas-cloud/vidsynth/internal/usecase/store"
	usageuc "github.com/kailas-cloud/vidsynth/internal/usecase/usage"
)

// app is the composition root shared by serve and ask.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	cache    db.Store // nil when cache.driver is none
	registry *registry.Registry
	chunker  *chunkinguc.Service
	builder  *storeuc.Builder
	answers  *answeruc.Service
	notes    *notesuc.Service
	usage    *usageuc.Service
	health   *healthuc.Service
}

func loadApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()
	metrics.RegisterRegistryMetrics()

	cache, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	budget, err := newBudget(ctx, cfg.Embedding, cache, logger)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetChecker embeddinguc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	base := newBaseEmbedder(cfg.Embedding, logger)
	docEmbedder := decorateEmbedder(base, cfg, cfg.Embedding.DocumentInstruction, cache, budgetChecker, logger)
	queryEmbedder := decorateEmbedder(base, cfg, cfg.Embedding.QueryInstruction, cache, budgetChecker, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	gen := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Logger:      logger,
	})
	generator := generationuc.NewInstrumentedGenerator(
		gen, cfg.Generation.Model, cfg.Generation.RequestsPerSecond, cfg.Generation.Burst, logger,
	)

	reg := registry.New(cfg.Registry.Capacity, logger)

	var cachePinger healthuc.CachePinger
	if cache != nil {
		cachePinger = cache
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		cache:    cache,
		registry: reg,
		chunker:  chunkinguc.New(cfg.Chunking.Size, cfg.Chunking.Overlap),
		builder: storeuc.New(docEmbedder).
			WithBatching(cfg.Embedding.BatchSize, cfg.Embedding.Concurrency),
		answers: answeruc.New(reg, queryEmbedder, generator).WithTopK(cfg.Retrieval.TopK),
		notes:   notesuc.New(generator),
		usage:   usageuc.New(budgetReader),
		health:  healthuc.New(cachePinger, embeddingHealth{docEmbedder}, generator, reg),
	}, nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	_ = a.logger.Sync()
}

func openCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (db.Store, error) {
	if !cfg.Enabled() {
		logger.Info("Cache disabled, embeddings are not cached and budgets are not persisted")
		return nil, nil
	}

	// Valkey speaks the Redis protocol for every command the cache uses.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s cache: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s cache not ready: %w", cfg.Driver, err)
	}
	logger.Info("Connected to cache", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
	return store, nil
}

// newBudget returns nil when no limit is configured.
func newBudget(
	ctx context.Context, cfg config.EmbeddingConfig, cache db.Store, logger *zap.Logger,
) (*embeddinguc.BudgetTracker, error) {
	if cfg.Budget.DailyTokenLimit <= 0 && cfg.Budget.MonthlyTokenLimit <= 0 {
		return nil, nil
	}

	action, err := embeddinguc.ParseBudgetAction(cfg.Budget.Action)
	if err != nil {
		return nil, fmt.Errorf("embedding budget: %w", err)
	}

	budget := embeddinguc.NewBudgetTracker(
		cfg.Provider, cfg.Budget.DailyTokenLimit, cfg.Budget.MonthlyTokenLimit, action, logger,
	)
	if cache != nil {
		// Loads current counters from the cache.
		budget.WithStore(ctx, budgetrepo.New(cache))
	}
	return budget, nil
}

func newBaseEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	if cfg.Provider == config.ProviderHash {
		return hash.NewEmbedder(cfg.Dimensions)
	}
	return openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})
}

// decorateEmbedder assembles the chain: provider -> cache -> instrumented -> instruction.
func decorateEmbedder(
	base domain.Embedder,
	cfg config.Config,
	instruction string,
	cache db.Store,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if cache != nil {
		namespace := fmt.Sprintf("%s:%s:%d", cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Dimensions)
		embedder = embcache.New(
			embedder, cache, namespace,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, budget, logger,
	).WithMaxAPIBatchSize(cfg.Embedding.BatchSize)

	// Instruction prefix is outermost so the cache key includes it.
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// embeddingHealth exposes the HealthCheck of whichever decorator ends the chain.
type embeddingHealth struct {
	embedder domain.Embedder
}

func (h embeddingHealth) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
