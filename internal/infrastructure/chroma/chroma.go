// Package chroma is a minimal REST client to a Chroma vector store. Each
// Collection value addresses one named collection; the pipeline holds two
// (previous-year questions and syllabus topics).
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"NewsCapsule/internal/config"
	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/ports"
)

// Collection is a handle to one Chroma collection, queried by name.
type Collection struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

var _ ports.VectorIndex = (*Collection)(nil)

// NewCollection builds a collection handle from the store config.
func NewCollection(cfg config.VectorStoreConfig, collection string) *Collection {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Collection{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.collection
}

type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// Query returns the top-K nearest snippets for one embedding, in the
// store's ascending-distance order.
func (c *Collection) Query(ctx context.Context, embedding []float64, topK int) ([]domain.RetrievalHit, error) {
	if topK <= 0 {
		topK = 3
	}

	body := map[string]any{
		"query_embeddings": [][]float64{embedding},
		"n_results":        topK,
		"include":          []string{"documents", "metadatas", "distances"},
	}

	var resp queryResponse
	if err := c.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/query", c.baseURL, c.collection), body, &resp); err != nil {
		return nil, err
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	ids := resp.IDs[0]
	hits := make([]domain.RetrievalHit, 0, len(ids))
	for i := range ids {
		hit := domain.RetrievalHit{ID: ids[i]}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hit.Document = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hit.Metadata = stringifyMeta(resp.Metadatas[0][i])
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			hit.Distance = resp.Distances[0][i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Upsert writes reference snippets into the collection; existing ids are
// overwritten, so reloading curated data is idempotent.
func (c *Collection) Upsert(ctx context.Context, ids, documents []string, metadatas []map[string]string, embeddings [][]float64) error {
	if len(ids) != len(documents) || len(ids) != len(embeddings) {
		return fmt.Errorf("ids, documents and embeddings length mismatch")
	}

	metas := make([]map[string]any, len(ids))
	for i := range ids {
		meta := map[string]any{}
		if i < len(metadatas) {
			for k, v := range metadatas[i] {
				meta[k] = v
			}
		}
		metas[i] = meta
	}

	body := map[string]any{
		"ids":        ids,
		"documents":  documents,
		"metadatas":  metas,
		"embeddings": embeddings,
	}
	return c.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/upsert", c.baseURL, c.collection), body, nil)
}

func (c *Collection) postJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("chroma %s returned %s", c.collection, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode chroma response: %w", err)
		}
	}
	return nil
}

func stringifyMeta(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			// JSON numbers arrive as float64; chunk indexes are integral.
			if val == float64(int64(val)) {
				out[k] = strconv.FormatInt(int64(val), 10)
			} else {
				out[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
