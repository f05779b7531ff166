// Package index is the in-memory similarity search engine behind a vector store.
// A Handle is built once from chunks and their vectors and never changes afterwards.
package index

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/vidsynth/internal/domain/chunk"
)

var (
	// ErrNoVectors signals an attempt to index nothing.
	ErrNoVectors = errors.New("index: no vectors")
	// ErrDimensionMismatch signals vectors of different lengths.
	ErrDimensionMismatch = errors.New("index: vector dimension mismatch")
	// ErrInvalidK signals a non-positive result count.
	ErrInvalidK = errors.New("index: k must be positive")
)

// Hit is one search result.
type Hit struct {
	Chunk chunk.Chunk
	// Score is the cosine similarity in [-1, 1]; higher is closer.
	Score float64
}

// Handle is a read-only cosine-similarity index over a fixed chunk set.
// Safe for concurrent Search calls.
type Handle struct {
	chunks  []chunk.Chunk
	vectors [][]float32
	dim     int
}

// New indexes chunks[i] under vectors[i]. Vectors are copied and L2-normalized.
func New(chunks []chunk.Chunk, vectors [][]float32) (*Handle, error) {
	if len(chunks) == 0 {
		return nil, ErrNoVectors
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("index: %d chunks but %d vectors", len(chunks), len(vectors))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector at position 0", ErrDimensionMismatch)
	}

	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: position %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(v), dim)
		}
		normalized[i] = normalize(v)
	}

	return &Handle{
		chunks:  slices.Clone(chunks),
		vectors: normalized,
		dim:     dim,
	}, nil
}

// Len returns the number of indexed chunks.
func (h *Handle) Len() int { return len(h.chunks) }

// Dimensions returns the vector length.
func (h *Handle) Dimensions() int { return h.dim }

// Chunks returns the indexed chunks in insertion order.
func (h *Handle) Chunks() []chunk.Chunk { return slices.Clone(h.chunks) }

// Search returns up to k chunks most similar to query, best first.
// Equal scores are ordered by chunk sequence index, lower first.
func (h *Handle) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(query) != h.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			ErrDimensionMismatch, len(query), h.dim)
	}

	q := normalize(query)
	hits := make([]Hit, len(h.chunks))
	for i, v := range h.vectors {
		hits[i] = Hit{Chunk: h.chunks[i], Score: dot(q, v)}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.Chunk.Index() - b.Chunk.Index()
		}
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// normalize returns a unit-length copy of v. A zero vector stays zero.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
