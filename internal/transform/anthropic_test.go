package transform

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*AnthropicClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewAnthropicClient("test-key", "test-model", 5*time.Second, discardLogger())
	c.endpoint = server.URL
	return c, server
}

func TestGenerate_ReturnsTextContent(t *testing.T) {
	var gotBody anthropicRequest

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q, want \"test-key\"", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("anthropic-version header should be set")
		}

		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "generated output"},
			},
		})
	})

	got, err := c.Generate(context.Background(), "test prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "generated output" {
		t.Errorf("Generate = %q, want \"generated output\"", got)
	}

	if gotBody.Model != "test-model" {
		t.Errorf("request model = %q, want \"test-model\"", gotBody.Model)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Content != "test prompt" {
		t.Errorf("request messages = %+v", gotBody.Messages)
	}
}

func TestGenerate_APIErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "rate_limit_error", "message": "rate limited"},
		})
	})

	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestGenerate_NoTextContent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"content": []map[string]string{}})
	})

	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error when response has no text block")
	}
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	c := NewAnthropicClient("", "test-model", time.Second, discardLogger())

	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error when api key is not configured")
	}
}
