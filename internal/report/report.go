// Package report aggregates composed digests into the final per-category
// capsule document, in Markdown and structured form.
package report

import (
	"strconv"
	"strings"

	"NewsCapsule/internal/domain"
)

// Builder groups digests under a fixed, ordered category taxonomy.
type Builder struct {
	categories []string
}

// NewBuilder keeps the taxonomy order; it is the report's section order.
func NewBuilder(categories []string) *Builder {
	return &Builder{categories: append([]string(nil), categories...)}
}

// Build groups digests by assigned category, preserving insertion order
// inside each section. Every configured category is represented even when
// it received no digests. Digests carrying an unknown label are appended
// under their own trailing section rather than dropped.
func (b *Builder) Build(date string, digests []domain.Digest) domain.Report {
	sections := make([]domain.CategorySection, 0, len(b.categories))
	index := make(map[string]int, len(b.categories))
	for i, label := range b.categories {
		sections = append(sections, domain.CategorySection{Label: label})
		index[label] = i
	}

	for _, d := range digests {
		i, ok := index[d.Category]
		if !ok {
			index[d.Category] = len(sections)
			sections = append(sections, domain.CategorySection{Label: d.Category})
			i = index[d.Category]
		}
		sections[i].Digests = append(sections[i].Digests, d)
	}

	return domain.Report{Date: date, Categories: sections}
}

// Markdown renders the report as the capsule document: one heading per
// category, one block per digest followed by its metadata lines. The
// rendering is a pure function of the report, so the structured form and
// the Markdown form never diverge.
func Markdown(r domain.Report) string {
	var b strings.Builder
	b.WriteString("# News Capsule — Date: " + r.Date + "\n\n")

	for _, sec := range r.Categories {
		b.WriteString("## " + sec.Label + "\n\n")
		if len(sec.Digests) == 0 {
			b.WriteString("_No articles in this category_\n\n")
			continue
		}
		for _, d := range sec.Digests {
			b.WriteString(strings.TrimSpace(d.Summary) + "\n\n")
			b.WriteString("- Source: " + d.Source + "\n")
			b.WriteString("- URL: " + d.URL + "\n")
			b.WriteString("- Chunks: " + strconv.Itoa(d.ChunkCount) + "\n\n")
			b.WriteString("---\n\n")
		}
	}
	return b.String()
}
