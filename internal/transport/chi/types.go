package chi

// ErrorResponseCode is the machine-readable error kind in an ErrorResponse.
type ErrorResponseCode string

// ErrorResponseCode values.
const (
	ErrorResponseCodeBadRequest             ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed       ErrorResponseCode = "validation_failed"
	ErrorResponseCodeEmptyInput             ErrorResponseCode = "empty_input"
	ErrorResponseCodeVectorStoreNotFound    ErrorResponseCode = "vector_store_not_found"
	ErrorResponseCodeEmbeddingProviderError ErrorResponseCode = "embedding_provider_error"
	ErrorResponseCodeGenerationProviderErr  ErrorResponseCode = "generation_provider_error"
	ErrorResponseCodeEmbeddingQuotaExceeded ErrorResponseCode = "embedding_quota_exceeded"
	ErrorResponseCodeRateLimited            ErrorResponseCode = "rate_limited"
	ErrorResponseCodeInternalError          ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// PlainChunk is the transport form of a chunk.
type PlainChunk struct {
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ChunksRequest is the body of POST /api/chunks.
type ChunksRequest struct {
	Transcript   string            `json:"transcript"`
	ChunkSize    *int              `json:"chunk_size,omitempty"`
	ChunkOverlap *int              `json:"chunk_overlap,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ChunksResponse is the body returned by POST /api/chunks.
type ChunksResponse struct {
	Chunks  []PlainChunk `json:"chunks"`
	Message string       `json:"message"`
}

// CreateVectorStoreRequest is the body of POST /api/vectorstore.
type CreateVectorStoreRequest struct {
	Chunks []PlainChunk `json:"chunks"`
}

// VectorStoreResponse describes a registered vector store.
type VectorStoreResponse struct {
	VectorStoreID string `json:"vector_store_id"`
	Chunks        int    `json:"chunks"`
	Dimensions    int    `json:"dimensions"`
	Message       string `json:"message,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Question      string `json:"question"`
	VectorStoreID string `json:"vector_store_id"`
	TopK          *int   `json:"top_k,omitempty"`
}

// ChatSource is a retrieved chunk with its similarity score.
type ChatSource struct {
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata"`
	Score       float64        `json:"score"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Answer   string       `json:"answer"`
	Question string       `json:"question"`
	Sources  []ChatSource `json:"sources"`
}

// TranscriptRequest is the body of POST /api/notes and POST /api/topics.
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// NotesResponse is the body returned by POST /api/notes.
type NotesResponse struct {
	Notes string `json:"notes"`
}

// TopicsResponse is the body returned by POST /api/topics.
type TopicsResponse struct {
	Topics []string `json:"topics"`
}

// GetUsageParams holds the query parameters of GET /api/usage.
type GetUsageParams struct {
	Period *string `form:"period,omitempty" json:"period,omitempty"`
}

// BudgetStatus is the budget part of UsageResponse.
type BudgetStatus struct {
	TokensLimit     int64  `json:"tokens_limit"`
	TokensRemaining int64  `json:"tokens_remaining"`
	IsExhausted     bool   `json:"is_exhausted"`
	ResetsAt        string `json:"resets_at,omitempty"`
}

// UsageResponse is the body returned by GET /api/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider,omitempty"`
	Tokens        int64        `json:"tokens"`
	PeriodStartAt string       `json:"period_start_at"`
	PeriodEndAt   string       `json:"period_end_at"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthResponse is the body returned by GET /api/health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Stores  int               `json:"vector_stores"`
	Message string            `json:"message"`
}
