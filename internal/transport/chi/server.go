package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	domanswer "github.com/kailas-cloud/vidsynth/internal/domain/answer"
	"github.com/kailas-cloud/vidsynth/internal/domain/chunk"
	domusage "github.com/kailas-cloud/vidsynth/internal/domain/usage"
	"github.com/kailas-cloud/vidsynth/internal/index"
	answeruc "github.com/kailas-cloud/vidsynth/internal/usecase/answer"
	chunkinguc "github.com/kailas-cloud/vidsynth/internal/usecase/chunking"
	healthuc "github.com/kailas-cloud/vidsynth/internal/usecase/health"
	notesuc "github.com/kailas-cloud/vidsynth/internal/usecase/notes"
	storeuc "github.com/kailas-cloud/vidsynth/internal/usecase/store"
	usageuc "github.com/kailas-cloud/vidsynth/internal/usecase/usage"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// StoreRegistry registers built handles and resolves them by id.
type StoreRegistry interface {
	Register(h *index.Handle) (string, error)
	Resolve(id string) (*index.Handle, error)
}

// Server implements ServerInterface on top of the use case services.
type Server struct {
	chunker       *chunkinguc.Service
	builder       *storeuc.Builder
	stores        StoreRegistry
	answers       *answeruc.Service
	notes         *notesuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	chunker *chunkinguc.Service,
	builder *storeuc.Builder,
	stores StoreRegistry,
	answers *answeruc.Service,
	notes *notesuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chunker: chunker,
		builder: builder,
		stores:  stores,
		answers: answers,
		notes:   notes,
		usage:   usage,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrEmptyInput, http.StatusBadRequest, ErrorResponseCodeEmptyInput),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeVectorStoreNotFound),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusPaymentRequired, ErrorResponseCodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorResponseCodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingFailure, http.StatusBadGateway, ErrorResponseCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrGenerationFailure, http.StatusBadGateway, ErrorResponseCodeGenerationProviderErr),
	}
	return s
}

// CreateChunks handles POST /api/chunks.
func (s *Server) CreateChunks(w http.ResponseWriter, r *http.Request) {
	var req ChunksRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "Transcript is required")
		return
	}

	chunks, err := s.chunker.Chunk(req.Transcript, chunkinguc.Options{
		Size:     req.ChunkSize,
		Overlap:  req.ChunkOverlap,
		Metadata: req.Metadata,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChunksResponse{
		Chunks:  chunksToPlain(chunks),
		Message: fmt.Sprintf("Successfully created %d chunks", len(chunks)),
	})
}

// CreateVectorStore handles POST /api/vectorstore.
func (s *Server) CreateVectorStore(w http.ResponseWriter, r *http.Request) {
	var req CreateVectorStoreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	chunks, err := chunksFromPlain(req.Chunks)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	h, err := s.builder.Build(ctx, chunks)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	id, err := s.stores.Register(h)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusCreated, VectorStoreResponse{
		VectorStoreID: id,
		Chunks:        h.Len(),
		Dimensions:    h.Dimensions(),
		Message:       "Vector store created successfully",
	})
}

// GetVectorStore handles GET /api/vectorstore/{storeID}.
func (s *Server) GetVectorStore(w http.ResponseWriter, _ *http.Request, storeID string) {
	h, err := s.stores.Resolve(storeID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, VectorStoreResponse{
		VectorStoreID: storeID,
		Chunks:        h.Len(),
		Dimensions:    h.Dimensions(),
	})
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.VectorStoreID) == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "vector_store_id is required")
		return
	}

	k := s.answers.TopK()
	if req.TopK != nil {
		if *req.TopK <= 0 {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "top_k must be positive")
			return
		}
		k = *req.TopK
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ans, err := s.answers.AnswerTopK(ctx, req.Question, req.VectorStoreID, k)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, answerToResponse(ans))
}

// CreateNotes handles POST /api/notes.
func (s *Server) CreateNotes(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	notes, err := s.notes.Notes(ctx, req.Transcript)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, NotesResponse{Notes: notes})
}

// CreateTopics handles POST /api/topics.
func (s *Server) CreateTopics(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	topics, err := s.notes.Topics(ctx, req.Transcript)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if topics == nil {
		topics = []string{}
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, TopicsResponse{Topics: topics})
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams) {
	raw := ""
	if params.Period != nil {
		raw = *params.Period
	}
	period, ok := domusage.ParsePeriod(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "period must be day or month")
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := UsageResponse{
		Period:        string(report.Period()),
		Provider:      report.Provider(),
		Tokens:        report.TokensUsed(),
		PeriodStartAt: formatMillis(report.PeriodStart()),
		PeriodEndAt:   formatMillis(report.PeriodEnd()),
		Budget: BudgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}
	if report.Budget().TokensLimit() > 0 && report.Budget().ResetsAt() > 0 {
		resp.Budget.ResetsAt = formatMillis(report.Budget().ResetsAt())
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /api/health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Stores:  report.Stores,
		Message: report.Message,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.RequestUsage) {
	if usage.Embedded() {
		w.Header().Set("X-Embedding-Tokens", strconv.FormatInt(usage.EmbeddingTokens(), 10))
	}
	if n := usage.GenerationTokens(); n > 0 {
		w.Header().Set("X-Generation-Tokens", strconv.FormatInt(n, 10))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrEmptyInput,
		domain.ErrNotFound,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrRateLimited,
		domain.ErrEmbeddingFailure,
		domain.ErrGenerationFailure,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func chunksToPlain(chunks []chunk.Chunk) []PlainChunk {
	out := make([]PlainChunk, len(chunks))
	for i, c := range chunks {
		out[i] = PlainChunk{PageContent: c.Text(), Metadata: c.Metadata()}
	}
	return out
}

func chunksFromPlain(items []PlainChunk) ([]chunk.Chunk, error) {
	out := make([]chunk.Chunk, len(items))
	for i, item := range items {
		c, err := chunk.FromPlain(item.PageContent, item.Metadata, i)
		if err != nil {
			return nil, fmt.Errorf("chunks[%d]: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

func answerToResponse(a domanswer.Answer) ChatResponse {
	sources := make([]ChatSource, len(a.Sources()))
	for i, src := range a.Sources() {
		sources[i] = ChatSource{
			PageContent: src.Chunk.Text(),
			Metadata:    src.Chunk.Metadata(),
			Score:       src.Score,
		}
	}
	return ChatResponse{
		Answer:   a.Text(),
		Question: a.Question(),
		Sources:  sources,
	}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
