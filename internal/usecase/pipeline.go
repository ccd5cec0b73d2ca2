package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsCapsule/internal/aggregate"
	"NewsCapsule/internal/classify"
	"NewsCapsule/internal/compose"
	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/ports"
	"NewsCapsule/internal/report"
	"NewsCapsule/internal/retrieve"
	"NewsCapsule/internal/textprep"
)

// PipelineDeps wires all collaborators into the capsule pipeline.
type PipelineDeps struct {
	Source      ports.ArticleSource
	Embedder    ports.Embedder
	Preparer    *textprep.Preparer
	Aggregator  *aggregate.Aggregator
	Classifier  *classify.Classifier
	Retriever   *retrieve.Retriever
	Composer    *compose.Composer
	Reporter    *report.Builder
	Store       ports.ReportStore
	Exporter    ports.ReportExporter
	Notifier    ports.Notifier
	Workers     int
	CapsuleType string
	Logger      *slog.Logger
}

// Pipeline implements the daily capsule workflow: fetch, chunk, embed,
// aggregate, classify, retrieve, compose, report.
type Pipeline struct {
	deps PipelineDeps
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Workers <= 0 {
		deps.Workers = 1
	}
	if deps.CapsuleType == "" {
		deps.CapsuleType = "news"
	}
	return &Pipeline{deps: deps}
}

// ProcessDay runs one capsule generation for the given day. The worst-case
// outcome for any single article is its exclusion or a fallback digest;
// the report is always produced from whatever articles succeeded.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) error {
	d := p.deps
	date := day.UTC().Format("2006-01-02")

	if d.Source == nil {
		return fmt.Errorf("article source is not configured")
	}

	raws, err := d.Source.FetchDaily(ctx, day)
	if err != nil {
		return fmt.Errorf("fetch daily: %w", err)
	}
	p.info("articles fetched", "count", len(raws), "date", date)

	chunks := p.collectChunks(ctx, raws)
	p.info("chunks embedded", "count", len(chunks))

	articles := d.Aggregator.Aggregate(chunks)
	p.info("articles aggregated", "count", len(articles))

	// Centroids are shared read-only state; compute them before fan-out so
	// a failure aborts the run instead of surfacing per article.
	if err := d.Classifier.Init(ctx); err != nil {
		return fmt.Errorf("init category centroids: %w", err)
	}

	digests := p.composeAll(ctx, articles, date)

	rep := d.Reporter.Build(date, digests)
	p.deliver(ctx, rep)
	return nil
}

// collectChunks prepares and embeds every raw article. An article whose
// text is too short, or whose embedding call fails, is dropped rather than
// carried forward as garbage.
func (p *Pipeline) collectChunks(ctx context.Context, raws []domain.RawArticle) []domain.Chunk {
	d := p.deps
	var chunks []domain.Chunk

	for _, raw := range raws {
		texts := d.Preparer.Prepare(raw.Text)
		if len(texts) == 0 {
			p.debug("article text too short, dropping", "url", raw.URL)
			continue
		}

		embeddings, err := d.Embedder.Embed(ctx, texts)
		if err != nil {
			p.warn("embedding failed, dropping article", "url", raw.URL, "error", err)
			continue
		}
		if len(embeddings) != len(texts) {
			p.warn("embedding count mismatch, dropping article", "url", raw.URL)
			continue
		}

		for i, text := range texts {
			chunks = append(chunks, domain.Chunk{
				ID:             uuid.NewString(),
				Text:           text,
				SourceIdentity: raw.URL,
				Title:          raw.Title,
				Source:         raw.Source,
				SequenceIndex:  i,
				Embedding:      embeddings[i],
			})
		}
	}
	return chunks
}

// composeAll fans articles out to a bounded worker pool. Results land in
// an index-addressed slice so the report keeps source order, never
// completion order.
func (p *Pipeline) composeAll(ctx context.Context, articles []domain.Article, date string) []domain.Digest {
	d := p.deps
	results := make([]domain.Digest, len(articles))
	ok := make([]bool, len(articles))

	var wg sync.WaitGroup
	sem := make(chan struct{}, d.Workers)

	for i := range articles {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			digest, composed := p.composeOne(ctx, articles[i], date)
			if composed {
				results[i] = digest
				ok[i] = true
			}
		}(i)
	}
	wg.Wait()

	digests := make([]domain.Digest, 0, len(articles))
	for i := range results {
		if ok[i] {
			digests = append(digests, results[i])
		}
	}
	return digests
}

func (p *Pipeline) composeOne(ctx context.Context, article domain.Article, date string) (domain.Digest, bool) {
	d := p.deps

	category, err := d.Classifier.Classify(ctx, article.PooledEmbedding)
	if err != nil {
		p.warn("classification failed, dropping article", "url", article.SourceIdentity, "error", err)
		return domain.Digest{}, false
	}

	rc := d.Retriever.Retrieve(ctx, article.PooledEmbedding)
	digest := d.Composer.Compose(ctx, article, date, rc)
	digest.Category = category

	p.debug("digest composed",
		"url", article.SourceIdentity,
		"category", category,
		"pyq_hits", len(rc.PYQ),
		"syllabus_hits", len(rc.Syllabus))
	return digest, true
}

// deliver pushes the finished report to every configured sink. Sink
// failures are logged, not propagated: the run already succeeded.
func (p *Pipeline) deliver(ctx context.Context, rep domain.Report) {
	d := p.deps
	markdown := report.Markdown(rep)

	if d.Store != nil {
		if err := d.Store.SaveReport(ctx, d.CapsuleType, rep); err != nil {
			p.warn("capsule store failed", "error", err)
		}
	}

	if d.Exporter != nil {
		if err := d.Exporter.Export(rep, markdown); err != nil {
			p.warn("capsule export failed", "error", err)
		}
	}

	if d.Notifier != nil {
		if err := d.Notifier.PublishDigest(ctx, runSummary(rep)); err != nil {
			p.warn("capsule notification failed", "error", err)
		}
	}
}

func runSummary(rep domain.Report) string {
	var b strings.Builder
	b.WriteString("News Capsule " + rep.Date + "\n")
	total := 0
	for _, sec := range rep.Categories {
		if len(sec.Digests) == 0 {
			continue
		}
		total += len(sec.Digests)
		fmt.Fprintf(&b, "- %s: %d\n", sec.Label, len(sec.Digests))
	}
	if total == 0 {
		b.WriteString("No articles collected.\n")
	}
	return b.String()
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Debug(msg, args...)
	}
}
