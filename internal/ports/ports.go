package ports

import (
	"context"
	"time"

	"NewsCapsule/internal/domain"
)

// ArticleSource pulls fresh raw articles from upstream providers.
type ArticleSource interface {
	FetchDaily(ctx context.Context, day time.Time) ([]domain.RawArticle, error)
}

// Embedder maps text to fixed-length vectors. Implementations load their
// model once and reuse it; identical input must produce identical output.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
}

// VectorIndex is one named vector collection supporting nearest-neighbor
// queries and idempotent writes.
type VectorIndex interface {
	Name() string
	Query(ctx context.Context, embedding []float64, topK int) ([]domain.RetrievalHit, error)
	Upsert(ctx context.Context, ids, documents []string, metadatas []map[string]string, embeddings [][]float64) error
}

// Generator produces free-form text for a prompt. Transport or protocol
// failures surface as errors; callers degrade to the extractive fallback.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ReportStore persists the structured capsule report keyed by date and
// capsule type with idempotent upsert semantics.
type ReportStore interface {
	SaveReport(ctx context.Context, capsuleType string, report domain.Report) error
}

// ReportExporter writes the rendered report for downstream consumers.
type ReportExporter interface {
	Export(report domain.Report, markdown string) error
}

// Notifier announces a finished run to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
