package compose

import (
	"strconv"
	"strings"

	"NewsCapsule/internal/domain"
)

const (
	summaryPlaceholder = "Summary not available."
	noneFound          = "None found"
	maxBullets         = 3
)

// EnforceStructure normalizes arbitrary model output into the canonical
// capsule shape: a title line, a Summary block, and the two labeled
// reference sections with at most three bullets each. It is unconditional
// and idempotent: feeding its own output back yields the same document.
func EnforceStructure(raw, title string) string {
	var summary, pyq, syl []string
	// Everything before an explicit section switch belongs to the summary.
	section := "summary"

	for _, line := range strings.Split(raw, "\n") {
		ln := strings.TrimSpace(line)
		if ln == "" || ln == "---" {
			continue
		}

		lower := strings.ToLower(ln)
		switch {
		case strings.HasPrefix(lower, "**relevant pyq"):
			section = "pyq"
			continue
		case strings.HasPrefix(lower, "**relevant syllabus"):
			section = "syl"
			continue
		case strings.HasPrefix(ln, "###"):
			section = "summary"
			continue
		case strings.HasPrefix(lower, "**summary"):
			section = "summary"
			continue
		}

		switch section {
		case "summary":
			summary = append(summary, strings.TrimSpace(strings.TrimPrefix(ln, "-")))
		case "pyq":
			if strings.HasPrefix(ln, "-") {
				pyq = append(pyq, strings.TrimSpace(strings.TrimPrefix(ln, "-")))
			}
		case "syl":
			if strings.HasPrefix(ln, "-") {
				syl = append(syl, strings.TrimSpace(strings.TrimPrefix(ln, "-")))
			}
		}
	}

	if len(summary) == 0 {
		summary = []string{summaryPlaceholder}
	}
	pyq = capBullets(pyq)
	syl = capBullets(syl)

	lines := []string{
		"---",
		"### " + title + " — Summary",
		"",
		"**Summary**",
	}
	for _, s := range summary {
		lines = append(lines, "- "+s)
	}
	lines = append(lines, "", "**Relevant PYQ**")
	for _, p := range pyq {
		lines = append(lines, "- "+p)
	}
	lines = append(lines, "", "**Relevant Syllabus**")
	for _, s := range syl {
		lines = append(lines, "- "+s)
	}
	lines = append(lines, "---")

	return strings.Join(lines, "\n")
}

func capBullets(items []string) []string {
	if len(items) == 0 {
		return []string{noneFound}
	}
	if len(items) > maxBullets {
		items = items[:maxBullets]
	}
	return items
}

// FormatSnippets renders retrieval hits as numbered prompt blocks. An empty
// hit list renders as the literal "None".
func FormatSnippets(hits []domain.RetrievalHit, maxCharsEach int) string {
	if len(hits) == 0 {
		return "None"
	}

	parts := make([]string, 0, len(hits))
	for i, h := range hits {
		preview := truncate(flatten(h.Document), maxCharsEach)
		parts = append(parts, strings.Join([]string{
			strconv.Itoa(i+1) + ") " + preview,
			"-- meta: " + formatMeta(h.Metadata),
		}, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// promptMetaKeys selects the metadata fields worth surfacing to the model,
// in a fixed order so prompts stay deterministic.
var promptMetaKeys = []string{"pdf_name", "pdf_stem", "chunk_index", "title", "url", "source"}

func formatMeta(meta map[string]string) string {
	parts := make([]string, 0, len(promptMetaKeys))
	for _, key := range promptMetaKeys {
		if v, ok := meta[key]; ok && v != "" {
			parts = append(parts, key+":"+v)
		}
	}
	return strings.Join(parts, ", ")
}
