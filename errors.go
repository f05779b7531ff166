package vidsynth

import "github.com/kailas-cloud/vidsynth/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument        = domain.ErrInvalidArgument
	ErrEmptyInput             = domain.ErrEmptyInput
	ErrNotFound               = domain.ErrNotFound
	ErrEmbeddingFailure       = domain.ErrEmbeddingFailure
	ErrGenerationFailure      = domain.ErrGenerationFailure
	ErrRateLimited            = domain.ErrRateLimited
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
)
