// Package classify assigns articles to a fixed category taxonomy by
// nearest-centroid cosine similarity.
package classify

import (
	"context"
	"fmt"
	"sync"

	"NewsCapsule/internal/ports"
	"NewsCapsule/internal/vec"
)

// Classifier holds the ordered category labels and their centroid
// embeddings. Centroids are computed once per process from a canonical
// prompt per category and are read-only afterwards.
type Classifier struct {
	embedder       ports.Embedder
	labels         []string
	promptTemplate string

	mu        sync.Mutex
	once      sync.Once
	centroids [][]float64
	initErr   error
}

// NewClassifier keeps the label order as given; it is significant for
// tie-breaking and must stay stable across a run.
func NewClassifier(embedder ports.Embedder, labels []string, promptTemplate string) *Classifier {
	if promptTemplate == "" {
		promptTemplate = "%s news"
	}
	return &Classifier{
		embedder:       embedder,
		labels:         append([]string(nil), labels...),
		promptTemplate: promptTemplate,
	}
}

// Labels returns the canonical category order.
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Init computes the category centroids. Safe for concurrent use; the
// embedding work runs at most once until Reset is called.
func (c *Classifier) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.once.Do(func() {
		c.centroids, c.initErr = c.computeCentroids(ctx)
	})
	return c.initErr
}

// Reset drops the cached centroids so the next Init recomputes them.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.once = sync.Once{}
	c.centroids = nil
	c.initErr = nil
}

func (c *Classifier) computeCentroids(ctx context.Context) ([][]float64, error) {
	if len(c.labels) == 0 {
		return nil, fmt.Errorf("no categories configured")
	}
	prompts := make([]string, len(c.labels))
	for i, label := range c.labels {
		prompts[i] = fmt.Sprintf(c.promptTemplate, label)
	}
	embs, err := c.embedder.Embed(ctx, prompts)
	if err != nil {
		return nil, fmt.Errorf("embed category prompts: %w", err)
	}
	if len(embs) != len(c.labels) {
		return nil, fmt.Errorf("expected %d centroids, got %d", len(c.labels), len(embs))
	}
	for i := range embs {
		embs[i] = vec.L2Normalize(embs[i])
	}
	return embs, nil
}

// Classify returns the label whose centroid is most similar to the article
// embedding. Ties break toward the first label in canonical order, and
// every input gets a label: there is no abstention bucket, so degenerate
// embeddings still land in the first category.
func (c *Classifier) Classify(ctx context.Context, embedding []float64) (string, error) {
	if err := c.Init(ctx); err != nil {
		return "", err
	}

	normalized := vec.L2Normalize(append([]float64(nil), embedding...))

	best := 0
	bestScore := vec.Dot(c.centroids[0], normalized)
	for i := 1; i < len(c.centroids); i++ {
		if score := vec.Dot(c.centroids[i], normalized); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return c.labels[best], nil
}
