package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsCapsule/internal/config"
)

func TestGenerateChatShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxTokens int  `json:"max_tokens"`
			Stream    bool `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "the prompt" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.MaxTokens != 512 || req.Stream {
			t.Errorf("unexpected options: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "generated digest"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{Endpoint: srv.URL, Model: "m", Timeout: 5})
	out, err := c.Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "generated digest" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestGenerateStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{Endpoint: srv.URL, Timeout: 5})
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected status error")
	}
}

func TestGenerateNoEndpoint(t *testing.T) {
	t.Parallel()

	c := NewClient(config.LLMConfig{})
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestDecodeContent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"chat message", `{"choices":[{"message":{"content":" chat text "}}]}`, "chat text"},
		{"completion text", `{"choices":[{"text":"completion text"}]}`, "completion text"},
		{"bare text", `{"text":"bare"}`, "bare"},
		{"bare content", `{"content":"bare content"}`, "bare content"},
		{"ollama response", `{"response":"ollama style"}`, "ollama style"},
		{"unrecognized", `{"something":"else"}`, ""},
		{"empty choices", `{"choices":[]}`, ""},
		{"invalid json", `not json`, ""},
	}

	for _, tc := range cases {
		if got := DecodeContent([]byte(tc.payload)); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
