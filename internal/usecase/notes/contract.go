package notes

import (
	"context"

	"github.com/kailas-cloud/vidsynth/internal/domain"
)

// Generator writes text for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.GenerationResult, error)
}
