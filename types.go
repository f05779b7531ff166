package vidsynth

import (
	"fmt"
	"maps"

	domanswer "github.com/kailas-cloud/vidsynth/internal/domain/answer"
	"github.com/kailas-cloud/vidsynth/internal/domain/chunk"
)

// Chunk is a transcript segment. Start and End are character offsets into the transcript.
type Chunk struct {
	Text     string
	Index    int
	Start    int
	End      int
	Metadata map[string]string
}

// Source is a retrieved chunk and its cosine similarity to the question.
type Source struct {
	Chunk Chunk
	Score float64
}

// Answer is a generated answer with the chunks it was grounded on, best match first.
type Answer struct {
	Text     string
	Question string
	Sources  []Source
}

// StoreInfo describes a registered vector store.
type StoreInfo struct {
	ID         string
	Chunks     int
	Dimensions int
}

func chunkFromDomain(c chunk.Chunk) Chunk {
	return Chunk{
		Text:     c.Text(),
		Index:    c.Index(),
		Start:    c.Start(),
		End:      c.End(),
		Metadata: c.Extra(),
	}
}

func chunkToDomain(c Chunk) (chunk.Chunk, error) {
	dc, err := chunk.New(c.Text, c.Index, c.Start, c.End, maps.Clone(c.Metadata))
	if err != nil {
		return chunk.Chunk{}, fmt.Errorf("chunk %d: %w", c.Index, err)
	}
	return dc, nil
}

func answerFromDomain(a domanswer.Answer) Answer {
	sources := make([]Source, len(a.Sources()))
	for i, s := range a.Sources() {
		sources[i] = Source{Chunk: chunkFromDomain(s.Chunk), Score: s.Score}
	}
	return Answer{Text: a.Text(), Question: a.Question(), Sources: sources}
}
