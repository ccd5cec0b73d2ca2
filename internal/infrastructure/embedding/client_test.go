package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsCapsule/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.EmbeddingConfig{Endpoint: url, Model: "test-model", Timeout: 5})
}

func TestEmbedOpenAIShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Input) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{1, 0, 0}},
				{"embedding": []float64{0, 1, 0}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	vectors, err := c.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 2 || vectors[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
	if c.Dimension() != 3 {
		t.Fatalf("expected probed dimension 3, got %d", c.Dimension())
	}
}

func TestEmbedOllamaShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float64{{0.5, 0.5}},
		})
	}))
	defer srv.Close()

	vectors, err := newTestClient(srv.URL).Embed(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 1 || vectors[0][0] != 0.5 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestEmbedEmptyInputSkipsNetwork(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("empty input must not hit the endpoint")
	}))
	defer srv.Close()

	vectors, err := newTestClient(srv.URL).Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 0 {
		t.Fatalf("expected empty result, got %v", vectors)
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{1}}},
		})
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected count mismatch error")
	}
}

func TestEmbedServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected status error")
	}
}
