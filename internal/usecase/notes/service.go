// Package notes produces study notes and key topics from a whole transcript.
package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	"github.com/kailas-cloud/vidsynth/internal/domain/prompt"
)

const defaultTopicCount = 5

// Service generates transcript summaries.
type Service struct {
	gen    Generator
	topics int
}

// New creates a notes service.
func New(gen Generator) *Service {
	return &Service{gen: gen, topics: defaultTopicCount}
}

// WithTopicCount sets how many topics are requested from the model.
func (s *Service) WithTopicCount(n int) *Service {
	if n > 0 {
		s.topics = n
	}
	return s
}

// Notes returns Markdown study notes for transcript.
func (s *Service) Notes(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("transcript is required: %w", domain.ErrInvalidArgument)
	}

	res, err := s.generate(ctx, prompt.Notes(transcript))
	if err != nil {
		return "", fmt.Errorf("generate notes: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}

// Topics returns the key topics of transcript, most important first.
func (s *Service) Topics(ctx context.Context, transcript string) ([]string, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("transcript is required: %w", domain.ErrInvalidArgument)
	}

	res, err := s.generate(ctx, prompt.Topics(transcript, s.topics))
	if err != nil {
		return nil, fmt.Errorf("generate topics: %w", err)
	}
	return ParseTopics(res.Text), nil
}

func (s *Service) generate(ctx context.Context, p string) (domain.GenerationResult, error) {
	res, err := s.gen.Generate(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailure) {
			return domain.GenerationResult{}, err
		}
		return domain.GenerationResult{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}
	domain.UsageFromContext(ctx).AddGenerationTokens(res.TotalTokens)
	return res, nil
}

// ParseTopics splits line-oriented model output into topic names.
// Bullets ("-", "*", "•"), numbering ("1.", "2)") and Markdown emphasis are stripped; blank lines dropped.
func ParseTopics(text string) []string {
	var topics []string
	for line := range strings.Lines(text) {
		t := strings.TrimSpace(line)
		t = strings.TrimLeft(t, "-*• \t")
		t = stripNumbering(t)
		t = strings.Trim(t, "*_` \t")
		if t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}

func stripNumbering(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return s
	}
	if s[i] != '.' && s[i] != ')' {
		return s
	}
	return strings.TrimLeftFunc(s[i+1:], unicode.IsSpace)
}
