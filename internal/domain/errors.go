package domain

import "errors"

var (
	// ErrInvalidArgument signals bad caller input (chunk parameters, empty question or transcript).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmptyInput signals an attempt to build an index over zero chunks.
	ErrEmptyInput = errors.New("empty input")
	// ErrNotFound signals an unknown or evicted vector store id.
	ErrNotFound = errors.New("not found")
	// ErrEmbeddingFailure signals an embedding provider failure.
	ErrEmbeddingFailure = errors.New("embedding failure")
	// ErrGenerationFailure signals a text generation provider failure.
	ErrGenerationFailure = errors.New("generation failure")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
)
