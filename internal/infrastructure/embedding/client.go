// Package embedding talks to an OpenAI-compatible embeddings endpoint.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"NewsCapsule/internal/config"
	"NewsCapsule/internal/ports"
)

// Client implements ports.Embedder over HTTP. The remote model is loaded by
// the serving process once; this client amortizes its own setup by probing
// the vector dimensionality on the first successful call.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client

	mu        sync.Mutex
	dimension int
}

var _ ports.Embedder = (*Client)(nil)

// NewClient builds a reusable embeddings client from configuration.
func NewClient(cfg config.EmbeddingConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Dimension reports the vector dimensionality seen so far; zero before the
// first successful call.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns one vector per input text, in input order. An empty input
// returns an empty slice without touching the network. Any transport or
// shape failure surfaces as a single wrapped error.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings endpoint returned %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embeddings response: %w", err)
	}

	vectors, err := decodeVectors(payload)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}

	c.mu.Lock()
	if c.dimension == 0 && len(vectors[0]) > 0 {
		c.dimension = len(vectors[0])
	}
	c.mu.Unlock()

	return vectors, nil
}

// decodeVectors tries the known response shapes in priority order: the
// OpenAI data array, then the Ollama embeddings matrix.
func decodeVectors(payload []byte) ([][]float64, error) {
	var openAI struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openAI); err == nil && len(openAI.Data) > 0 {
		vectors := make([][]float64, len(openAI.Data))
		for i, d := range openAI.Data {
			vectors[i] = d.Embedding
		}
		return vectors, nil
	}

	var ollama struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.Unmarshal(payload, &ollama); err == nil && len(ollama.Embeddings) > 0 {
		return ollama.Embeddings, nil
	}

	return nil, fmt.Errorf("no embeddings in response")
}
