package domain

import "time"

// RawArticle is the unprocessed payload fetched from a news provider.
type RawArticle struct {
	URL         string
	Title       string
	Source      string
	Description string
	Text        string
	PublishedAt time.Time
}

// Chunk is a bounded contiguous span of article text with its own embedding.
// Immutable once created.
type Chunk struct {
	ID             string
	Text           string
	SourceIdentity string
	Title          string
	Source         string
	SequenceIndex  int
	Embedding      []float64
}

// Article aggregates every chunk sharing one source identity.
type Article struct {
	SourceIdentity  string
	Title           string
	Source          string
	Text            string
	PooledEmbedding []float64
	ChunkCount      int
}

// RetrievalHit is a single nearest-neighbor result from a vector collection.
type RetrievalHit struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float64
}

// Similarity converts a normalized cosine distance into a similarity score.
func (h RetrievalHit) Similarity() float64 {
	return 1 - h.Distance
}

// Digest is the structured per-article summary. Summary always carries the
// canonical four-block shape: title line, summary block, and the two labeled
// reference sections.
type Digest struct {
	Title        string
	URL          string
	Source       string
	Category     string
	Summary      string
	PYQHits      []RetrievalHit
	SyllabusHits []RetrievalHit
	ChunkCount   int
}

// CategorySection groups the digests assigned to one category label.
type CategorySection struct {
	Label   string
	Digests []Digest
}

// Report is the final per-run aggregate across the whole taxonomy. Every
// configured category appears exactly once, in canonical order.
type Report struct {
	Date       string
	Categories []CategorySection
}

// Section returns the section for the given label, if present.
func (r Report) Section(label string) (CategorySection, bool) {
	for _, sec := range r.Categories {
		if sec.Label == label {
			return sec, true
		}
	}
	return CategorySection{}, false
}
