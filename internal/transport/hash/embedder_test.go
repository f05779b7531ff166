package hash

import (
	"context"
	"math"
	"testing"

	"github.com/kailas-cloud/vidsynth/internal/domain"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / math.Sqrt(na*nb)
}

func TestEmbed_DeterministicAndNormalized(t *testing.T) {
	e := NewEmbedder(64)
	a, err := e.Embed(context.Background(), "Leader election in Raft")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, _ := e.Embed(context.Background(), "leader ELECTION in raft!")

	if len(a.Embedding) != 64 {
		t.Fatalf("expected 64 dims, got %d", len(a.Embedding))
	}
	if c := cosine(a.Embedding, b.Embedding); math.Abs(c-1) > 1e-6 {
		t.Errorf("case and punctuation must not matter, cosine=%f", c)
	}

	var norm float64
	for _, v := range a.Embedding {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("expected unit vector, norm^2=%f", norm)
	}
	if a.TotalTokens != 4 {
		t.Errorf("expected 4 tokens, got %d", a.TotalTokens)
	}
}

func TestEmbed_SimilarTextsCloser(t *testing.T) {
	e := NewEmbedder(0)
	if e.Dimensions() != DefaultDimensions {
		t.Fatalf("expected default dimensions, got %d", e.Dimensions())
	}
	q, _ := e.Embed(context.Background(), "how does raft elect a leader")
	near, _ := e.Embed(context.Background(), "raft uses randomized timeouts to elect a leader")
	far, _ := e.Embed(context.Background(), "sourdough bread needs a long fermentation")

	if cosine(q.Embedding, near.Embedding) <= cosine(q.Embedding, far.Embedding) {
		t.Error("expected overlapping vocabulary to score higher")
	}
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	res, _ := NewEmbedder(8).Embed(context.Background(), "   ")
	for i, v := range res.Embedding {
		if v != 0 {
			t.Fatalf("vec[%d] = %f, want 0", i, v)
		}
	}
}

func TestBatchEmbed_MatchesSingle(t *testing.T) {
	e := NewEmbedder(32)
	texts := []string{"one", "two words", "three little words"}

	batch, err := e.BatchEmbed(context.Background(), texts)
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if batch.TotalTokens != 6 {
		t.Errorf("expected 6 tokens, got %d", batch.TotalTokens)
	}
	for i, text := range texts {
		single, _ := e.Embed(context.Background(), text)
		if cosine(single.Embedding, batch.Embeddings[i]) < 1-1e-6 {
			t.Errorf("batch vector %d differs from single embed", i)
		}
	}

	var _ domain.BatchEmbedder = e
	var _ domain.HealthChecker = e
}
