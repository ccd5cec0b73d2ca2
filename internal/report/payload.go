package report

import (
	"NewsCapsule/internal/domain"
)

// ArticlePayload is the machine-readable form of one digest.
type ArticlePayload struct {
	Title        string       `json:"title"`
	URL          string       `json:"url"`
	Source       string       `json:"source"`
	ChunkCount   int          `json:"chunk_count"`
	Summary      string       `json:"summary"`
	PYQHits      []HitPayload `json:"pyq_hits"`
	SyllabusHits []HitPayload `json:"syllabus_hits"`
}

// HitPayload serializes a retrieval hit.
type HitPayload struct {
	ID       string            `json:"id"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata"`
	Distance float64           `json:"distance"`
}

// SectionPayload keeps the category order explicit in serialized output.
type SectionPayload struct {
	Category string           `json:"category"`
	Articles []ArticlePayload `json:"articles"`
}

// Payload is the structured mapping form of a report. Together with the
// Markdown rendering it is derived from the same digest list, so the two
// forms carry the same information.
type Payload struct {
	Date     string           `json:"date"`
	Sections []SectionPayload `json:"sections"`
}

// BuildPayload converts a report into its serializable form.
func BuildPayload(r domain.Report) Payload {
	sections := make([]SectionPayload, 0, len(r.Categories))
	for _, sec := range r.Categories {
		articles := make([]ArticlePayload, 0, len(sec.Digests))
		for _, d := range sec.Digests {
			articles = append(articles, ArticlePayload{
				Title:        d.Title,
				URL:          d.URL,
				Source:       d.Source,
				ChunkCount:   d.ChunkCount,
				Summary:      d.Summary,
				PYQHits:      hitPayloads(d.PYQHits),
				SyllabusHits: hitPayloads(d.SyllabusHits),
			})
		}
		sections = append(sections, SectionPayload{Category: sec.Label, Articles: articles})
	}
	return Payload{Date: r.Date, Sections: sections}
}

func hitPayloads(hits []domain.RetrievalHit) []HitPayload {
	out := make([]HitPayload, 0, len(hits))
	for _, h := range hits {
		out = append(out, HitPayload{
			ID:       h.ID,
			Document: h.Document,
			Metadata: h.Metadata,
			Distance: h.Distance,
		})
	}
	return out
}
