// Package compose builds the per-article digest: prompt assembly, one
// generative attempt, structural normalization of the output, and the
// deterministic extractive fallback when the model is unavailable.
package compose

import (
	"context"
	"log/slog"
	"strings"

	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/ports"
	"NewsCapsule/internal/retrieve"
	"NewsCapsule/internal/textprep"
)

// DefaultPromptTemplate mirrors the capsule generation prompt; placeholders
// are substituted verbatim.
const DefaultPromptTemplate = `You are creating a concise exam-focused news summary.

Article: {title}
Source: {source}
Date: {date}

Content:
{article_text}

Most relevant PYQ questions found:
{pyq_snippets}

Most relevant Syllabus topics found:
{syllabus_snippets}

IMPORTANT: Output ONLY in this exact format:

---
### {title} — Summary

[3–5 sentence summary — exam-focused]

**Relevant PYQ**
- bullet 1
- bullet 2
- bullet 3

**Relevant Syllabus**
- bullet 1
- bullet 2
- bullet 3
---

RULES:
- Keep summary factual
- Max 3 bullet points each for PYQ/Syllabus
- If none found, write "- None found"
`

// Options bound every size used while composing.
type Options struct {
	PromptTemplate       string
	MaxExcerptChars      int
	SnippetChars         int
	FallbackSnippetChars int
	MinAcceptChars       int
}

func (o *Options) applyDefaults() {
	if o.PromptTemplate == "" {
		o.PromptTemplate = DefaultPromptTemplate
	}
	if o.MaxExcerptChars <= 0 {
		o.MaxExcerptChars = 4000
	}
	if o.SnippetChars <= 0 {
		o.SnippetChars = 700
	}
	if o.FallbackSnippetChars <= 0 {
		o.FallbackSnippetChars = 200
	}
	if o.MinAcceptChars <= 0 {
		o.MinAcceptChars = 10
	}
}

// Composer turns an article plus its retrieval context into a Digest.
type Composer struct {
	generator ports.Generator
	opts      Options
	logger    *slog.Logger
}

// NewComposer accepts a nil generator; composition then always falls back.
func NewComposer(generator ports.Generator, opts Options, logger *slog.Logger) *Composer {
	opts.applyDefaults()
	return &Composer{generator: generator, opts: opts, logger: logger}
}

// Compose produces exactly one structurally valid digest per article. The
// generative path is attempted once; rejection or any failure degrades to
// the extractive fallback, and both paths pass through EnforceStructure so
// they are indistinguishable in shape.
func (c *Composer) Compose(ctx context.Context, article domain.Article, date string, rc retrieve.Context) domain.Digest {
	excerpt := truncate(article.Text, c.opts.MaxExcerptChars)
	prompt := c.buildPrompt(article, date, excerpt, rc)

	raw := ""
	if c.generator != nil {
		out, err := c.generator.Generate(ctx, prompt)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("generator unavailable, using fallback", "url", article.SourceIdentity, "error", err)
			}
		} else {
			raw = out
		}
	}

	var summary string
	if c.accept(raw) {
		summary = EnforceStructure(raw, article.Title)
	} else {
		summary = c.fallback(article.Title, excerpt, rc)
	}

	return domain.Digest{
		Title:        article.Title,
		URL:          article.SourceIdentity,
		Source:       article.Source,
		Summary:      summary,
		PYQHits:      rc.PYQ,
		SyllabusHits: rc.Syllabus,
		ChunkCount:   article.ChunkCount,
	}
}

// accept gates raw model output: non-empty after trimming and longer than
// the minimal threshold. Acceptance says nothing about structure.
func (c *Composer) accept(raw string) bool {
	return len(strings.TrimSpace(raw)) > c.opts.MinAcceptChars
}

func (c *Composer) buildPrompt(article domain.Article, date, excerpt string, rc retrieve.Context) string {
	r := strings.NewReplacer(
		"{title}", article.Title,
		"{source}", article.Source,
		"{date}", date,
		"{article_text}", excerpt,
		"{pyq_snippets}", FormatSnippets(rc.PYQ, c.opts.SnippetChars),
		"{syllabus_snippets}", FormatSnippets(rc.Syllabus, c.opts.SnippetChars),
	)
	return r.Replace(c.opts.PromptTemplate)
}

// fallback composes the model-free digest: the first two excerpt sentences
// as the summary and up to three flattened snippet bullets per reference
// section. The draft runs through the same normalizer as model output.
func (c *Composer) fallback(title, excerpt string, rc retrieve.Context) string {
	sentences := textprep.SplitSentences(excerpt)
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}

	var b strings.Builder
	b.WriteString("### " + title + " — Summary\n")
	b.WriteString(strings.Join(sentences, " "))
	b.WriteString("\n\n**Relevant PYQ**\n")
	b.WriteString(fallbackBullets(rc.PYQ, c.opts.FallbackSnippetChars))
	b.WriteString("\n\n**Relevant Syllabus**\n")
	b.WriteString(fallbackBullets(rc.Syllabus, c.opts.FallbackSnippetChars))

	return EnforceStructure(b.String(), title)
}

func fallbackBullets(hits []domain.RetrievalHit, maxChars int) string {
	if len(hits) == 0 {
		return "- None"
	}
	if len(hits) > 3 {
		hits = hits[:3]
	}
	lines := make([]string, len(hits))
	for i, h := range hits {
		lines[i] = "- " + truncate(flatten(h.Document), maxChars)
	}
	return strings.Join(lines, "\n")
}

func flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
