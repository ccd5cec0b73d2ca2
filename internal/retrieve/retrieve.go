// Package retrieve queries the two reference vector collections for the
// snippets nearest to an article embedding.
package retrieve

import (
	"context"
	"log/slog"
	"sort"

	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/ports"
)

const defaultTopK = 3

// Context carries the hits from both reference collections for one article.
type Context struct {
	PYQ      []domain.RetrievalHit
	Syllabus []domain.RetrievalHit
}

// Retriever fans one embedding out to the PYQ and syllabus collections.
// A failure on either side is isolated: that side's hit list stays empty
// while the other still returns results.
type Retriever struct {
	pyq      ports.VectorIndex
	syllabus ports.VectorIndex
	topK     int
	logger   *slog.Logger
}

// NewRetriever accepts nil indexes; a nil side always yields zero hits.
func NewRetriever(pyq, syllabus ports.VectorIndex, topK int, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Retriever{pyq: pyq, syllabus: syllabus, topK: topK, logger: logger}
}

// Retrieve never returns an error: retrieval must not abort article
// processing. Hits come back ordered by ascending distance; ties keep the
// store's native order.
func (r *Retriever) Retrieve(ctx context.Context, embedding []float64) Context {
	return Context{
		PYQ:      r.query(ctx, r.pyq, embedding),
		Syllabus: r.query(ctx, r.syllabus, embedding),
	}
}

func (r *Retriever) query(ctx context.Context, index ports.VectorIndex, embedding []float64) []domain.RetrievalHit {
	if index == nil {
		return nil
	}
	hits, err := index.Query(ctx, embedding, r.topK)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("vector collection query failed", "collection", index.Name(), "error", err)
		}
		return nil
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > r.topK {
		hits = hits[:r.topK]
	}
	return hits
}
