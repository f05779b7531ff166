// Package chunking splits transcripts into overlapping, position-tagged chunks.
//
// Sizes are counted in runes. A window of at most Size runes is cut at the last
// paragraph break, else line break, else sentence end, else whitespace, else hard
// at Size. The next window starts Overlap runes before the cut, so every chunk is
// a verbatim substring and the input is rebuilt by dropping the first Overlap
// runes of every chunk after the first.
package chunking

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	"github.com/kailas-cloud/vidsynth/internal/domain/chunk"
)

// Options overrides the service defaults for a single call. Nil fields use the defaults.
type Options struct {
	Size     *int
	Overlap  *int
	Metadata map[string]string
}

// Service chunks transcripts with configured defaults.
type Service struct {
	size    int
	overlap int
}

// New creates a chunking service. Non-positive size and negative overlap fall back to the domain defaults.
func New(size, overlap int) *Service {
	if size <= 0 {
		size = domain.DefaultChunkSize
	}
	if overlap < 0 {
		overlap = domain.DefaultChunkOverlap
	}
	return &Service{size: size, overlap: overlap}
}

// Defaults returns the configured size and overlap.
func (s *Service) Defaults() (size, overlap int) {
	return s.size, s.overlap
}

// Chunk splits text using the defaults overridden by opts.
func (s *Service) Chunk(text string, opts Options) ([]chunk.Chunk, error) {
	size, overlap := s.size, s.overlap
	if opts.Size != nil {
		size = *opts.Size
	}
	if opts.Overlap != nil {
		overlap = *opts.Overlap
	}
	return Split(text, size, overlap, opts.Metadata)
}

// Split cuts text into chunks of at most size runes overlapping by overlap runes.
// Empty or whitespace-only text yields an empty slice. Text that is not valid UTF-8
// is rejected, since chunks must stay verbatim substrings of it.
func Split(text string, size, overlap int, metadata map[string]string) ([]chunk.Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidArgument, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must be non-negative, got %d", domain.ErrInvalidArgument, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)",
			domain.ErrInvalidArgument, overlap, size)
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(text) == "" {
		return []chunk.Chunk{}, nil
	}

	runes := []rune(text)
	chunks := make([]chunk.Chunk, 0, len(runes)/(size-overlap)+1)

	start := 0
	for {
		end := len(runes)
		if end-start > size {
			end = cutPoint(runes, start, size, overlap)
		}

		c, err := chunk.New(string(runes[start:end]), len(chunks), start, end, metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %w", domain.ErrInvalidArgument, len(chunks), err)
		}
		chunks = append(chunks, c)

		if end == len(runes) {
			return chunks, nil
		}
		start = end - overlap
	}
}

// boundary reports whether a cut right before runes[i] lands on a separator of its kind.
type boundary func(runes []rune, start, i int) bool

// boundaries in priority order: paragraph, line, sentence, word.
var boundaries = []boundary{
	func(r []rune, start, i int) bool { return i-2 >= start && r[i-1] == '\n' && r[i-2] == '\n' },
	func(r []rune, start, i int) bool { return i-1 >= start && r[i-1] == '\n' },
	func(r []rune, start, i int) bool {
		return i-2 >= start && unicode.IsSpace(r[i-1]) && isSentenceEnd(r[i-2])
	},
	func(r []rune, start, i int) bool { return i-1 >= start && unicode.IsSpace(r[i-1]) },
}

// cutPoint picks the end of the window starting at start. Only cuts leaving more
// than overlap runes are eligible, so the next window always moves forward.
func cutPoint(runes []rune, start, size, overlap int) int {
	limit := start + size
	for _, isBoundary := range boundaries {
		for i := limit; i > start+overlap; i-- {
			if isBoundary(runes, start, i) {
				return i
			}
		}
	}
	return limit
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
