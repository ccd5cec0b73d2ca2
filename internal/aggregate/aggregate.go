// Package aggregate merges embedded chunks back into per-source articles.
package aggregate

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/vec"
)

// Aggregator groups chunks by source identity and pools their embeddings.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator wires an optional logger for contract-break warnings.
func NewAggregator(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate returns one article per source identity, in first-seen order.
// Chunks lacking an identity receive a fresh unique one and form a size-1
// article. Chunk texts are concatenated in sequence order with a blank-line
// separator; the pooled embedding is the L2-normalized mean of the chunk
// embeddings, replaced by a zero vector when dimensionalities disagree.
func (a *Aggregator) Aggregate(chunks []domain.Chunk) []domain.Article {
	type group struct {
		chunks []domain.Chunk
	}

	order := make([]string, 0, len(chunks))
	groups := make(map[string]*group, len(chunks))

	for _, ch := range chunks {
		identity := ch.SourceIdentity
		if identity == "" {
			identity = uuid.NewString()
		}
		g, ok := groups[identity]
		if !ok {
			g = &group{}
			groups[identity] = g
			order = append(order, identity)
		}
		ch.SourceIdentity = identity
		g.chunks = append(g.chunks, ch)
	}

	articles := make([]domain.Article, 0, len(order))
	for _, identity := range order {
		g := groups[identity]
		articles = append(articles, a.build(identity, g.chunks))
	}
	return articles
}

func (a *Aggregator) build(identity string, chunks []domain.Chunk) domain.Article {
	texts := make([]string, len(chunks))
	embeddings := make([][]float64, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
		embeddings[i] = ch.Embedding
	}

	pooled, ok := vec.Mean(embeddings)
	if ok {
		pooled = vec.L2Normalize(pooled)
	} else {
		// Dimensionality mismatch means an upstream contract break; keep
		// the article alive with a zero vector instead of failing the run.
		if a.logger != nil {
			a.logger.Error("embedding dimensionality mismatch, substituting zero vector",
				"source_identity", identity, "chunks", len(chunks))
		}
		pooled = vec.Zero(expectedDim(embeddings))
	}

	first := chunks[0]
	return domain.Article{
		SourceIdentity:  identity,
		Title:           first.Title,
		Source:          first.Source,
		Text:            strings.Join(texts, "\n\n"),
		PooledEmbedding: pooled,
		ChunkCount:      len(chunks),
	}
}

func expectedDim(embeddings [][]float64) int {
	for _, e := range embeddings {
		if len(e) > 0 {
			return len(e)
		}
	}
	return 0
}
