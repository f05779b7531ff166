// Package answer holds the result of a retrieval-augmented question.
package answer

import "github.com/kailas-cloud/vidsynth/internal/domain/chunk"

// Source is a retrieved chunk with its similarity score.
type Source struct {
	Chunk chunk.Chunk
	Score float64
}

// Answer pairs generated text with the question it answers.
type Answer struct {
	text     string
	question string
	sources  []Source
}

// New creates an Answer. sources are kept in retrieval order.
func New(text, question string, sources []Source) Answer {
	cp := make([]Source, len(sources))
	copy(cp, sources)
	return Answer{text: text, question: question, sources: cp}
}

// Text returns the generated answer.
func (a Answer) Text() string { return a.text }

// Question returns the original question.
func (a Answer) Question() string { return a.question }

// Sources returns the chunks the answer was conditioned on.
func (a Answer) Sources() []Source {
	cp := make([]Source, len(a.sources))
	copy(cp, a.sources)
	return cp
}
