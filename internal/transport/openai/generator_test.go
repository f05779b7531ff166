package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/vidsynth/internal/domain"
)

func chatServer(t *testing.T, status int, body string, gotReq *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if gotReq != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, gotReq)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func newTestGenerator(url string) *Generator {
	return NewGenerator(&GeneratorConfig{
		APIKey:      "test-key",
		BaseURL:     url,
		Model:       "gemini-2.0-flash",
		Temperature: 0.2,
		MaxTokens:   256,
	})
}

func TestGenerator_Generate(t *testing.T) {
	var req map[string]any
	server := chatServer(t, http.StatusOK, `{
		"id": "c1", "object": "chat.completion", "model": "gemini-2.0-flash",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Raft elects a leader."}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 120, "completion_tokens": 6, "total_tokens": 126}
	}`, &req)
	defer server.Close()

	res, err := newTestGenerator(server.URL).Generate(context.Background(), "Context: ...\nQuestion: what is raft?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Text != "Raft elects a leader." {
		t.Errorf("text = %q", res.Text)
	}
	if res.PromptTokens != 120 || res.CompletionTokens != 6 || res.TotalTokens != 126 {
		t.Errorf("usage = %+v", res)
	}

	if req["model"] != "gemini-2.0-flash" {
		t.Errorf("model = %v", req["model"])
	}
	if req["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v", req["max_tokens"])
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	msg, _ := msgs[0].(map[string]any)
	if msg["role"] != "user" || !strings.Contains(msg["content"].(string), "what is raft?") {
		t.Errorf("unexpected message %v", msg)
	}
}

func TestGenerator_EmptyChoice(t *testing.T) {
	server := chatServer(t, http.StatusOK, `{"choices": [], "usage": {}}`, nil)
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), "p")
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := chatServer(t, http.StatusTooManyRequests,
		`{"error": {"message": "Resource has been exhausted", "type": "rate_limit_error"}}`, nil)
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), "p")
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited for 429, got %v", err)
	}
	if errors.Is(err, domain.ErrEmbeddingFailure) {
		t.Error("generation errors must not be tagged as embedding failures")
	}
}

func TestGenerator_Model(t *testing.T) {
	if got := newTestGenerator("http://unused").Model(); got != "gemini-2.0-flash" {
		t.Errorf("Model() = %q", got)
	}
}
