// Package chunk defines the transcript segment that is embedded and indexed.
package chunk

import (
	"fmt"
	"maps"
	"strconv"
)

// Reserved metadata keys of the plain representation.
const (
	KeyIndex = "index"
	KeyStart = "start"
	KeyEnd   = "end"
)

// Chunk is an immutable transcript segment with position metadata.
type Chunk struct {
	text  string
	index int
	start int
	end   int
	extra map[string]string
}

// New validates and creates a Chunk.
// index is the zero-based sequence number; [start, end) are rune offsets into the source text.
func New(text string, index, start, end int, extra map[string]string) (Chunk, error) {
	if text == "" {
		return Chunk{}, fmt.Errorf("chunk text is required")
	}
	if index < 0 {
		return Chunk{}, fmt.Errorf("chunk index must be non-negative, got %d", index)
	}
	if start < 0 || end < start {
		return Chunk{}, fmt.Errorf("invalid chunk offsets [%d, %d)", start, end)
	}
	for k := range extra {
		if isReserved(k) {
			return Chunk{}, fmt.Errorf("metadata key %q is reserved", k)
		}
	}
	return Chunk{
		text:  text,
		index: index,
		start: start,
		end:   end,
		extra: cloneExtra(extra),
	}, nil
}

// Text returns the segment text.
func (c Chunk) Text() string { return c.text }

// Index returns the zero-based sequence number.
func (c Chunk) Index() int { return c.index }

// Start returns the rune offset of the first character.
func (c Chunk) Start() int { return c.start }

// End returns the rune offset one past the last character.
func (c Chunk) End() int { return c.end }

// Extra returns a copy of the caller-supplied metadata.
func (c Chunk) Extra() map[string]string { return cloneExtra(c.extra) }

// Metadata returns the plain metadata map: reserved position keys plus extras.
func (c Chunk) Metadata() map[string]any {
	m := make(map[string]any, len(c.extra)+3)
	for k, v := range c.extra {
		m[k] = v
	}
	m[KeyIndex] = c.index
	m[KeyStart] = c.start
	m[KeyEnd] = c.end
	return m
}

// FromPlain rebuilds a Chunk from its transport representation.
// A missing index falls back to fallbackIndex; missing offsets default to [0, len(text)).
// Non-reserved values must be strings, numbers or booleans and are kept as strings.
func FromPlain(text string, metadata map[string]any, fallbackIndex int) (Chunk, error) {
	index, ok, err := intField(metadata, KeyIndex)
	if err != nil {
		return Chunk{}, err
	}
	if !ok {
		index = fallbackIndex
	}
	start, _, err := intField(metadata, KeyStart)
	if err != nil {
		return Chunk{}, err
	}
	end, ok, err := intField(metadata, KeyEnd)
	if err != nil {
		return Chunk{}, err
	}
	if !ok {
		end = start + len([]rune(text))
	}

	extra := make(map[string]string)
	for k, v := range metadata {
		if isReserved(k) {
			continue
		}
		s, err := scalarString(v)
		if err != nil {
			return Chunk{}, fmt.Errorf("metadata %q: %w", k, err)
		}
		extra[k] = s
	}

	return New(text, index, start, end, extra)
}

func intField(m map[string]any, key string) (int, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		if n != float64(int(n)) {
			return 0, false, fmt.Errorf("metadata %q must be an integer, got %v", key, n)
		}
		return int(n), true, nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false, fmt.Errorf("metadata %q must be an integer, got %q", key, n)
		}
		return i, true, nil
	default:
		return 0, false, fmt.Errorf("metadata %q must be an integer, got %T", key, v)
	}
}

func scalarString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case bool:
		return strconv.FormatBool(s), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(s), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func isReserved(k string) bool {
	return k == KeyIndex || k == KeyStart || k == KeyEnd
}

func cloneExtra(m map[string]string) map[string]string {
	if len(m) == 0 {
		return map[string]string{}
	}
	return maps.Clone(m)
}
