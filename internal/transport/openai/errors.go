package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/vidsynth/internal/domain"
)

// parseAPIError extracts a human-readable error from the API response.
// The result always wraps kind (embedding or generation failure) for 502 mapping;
// HTTP 429 additionally wraps domain.ErrRateLimited.
func parseAPIError(op string, kind, err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w",
			op, reqErr.HTTPStatusCode, detail, kindFor(reqErr.HTTPStatusCode, kind))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			op, apiErr.HTTPStatusCode, apiErr.Message, kindFor(apiErr.HTTPStatusCode, kind))
	}

	return fmt.Errorf("%s request failed: %w: %w", op, kind, err)
}

func kindFor(status int, kind error) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", kind, domain.ErrRateLimited)
	}
	return kind
}

// extractDetail reads the "detail" field some OpenAI-compatible gateways use instead of "error".
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
