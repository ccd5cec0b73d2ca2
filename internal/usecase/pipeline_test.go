package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"NewsCapsule/internal/aggregate"
	"NewsCapsule/internal/classify"
	"NewsCapsule/internal/compose"
	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/report"
	"NewsCapsule/internal/retrieve"
	"NewsCapsule/internal/textprep"
)

// keywordEmbedder assigns axis-aligned vectors by keyword so category
// assignment in tests is fully deterministic.
type keywordEmbedder struct {
	err error
}

func (e *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "econom"):
			out[i] = []float64{1, 0}
		case strings.Contains(lower, "secur"):
			out[i] = []float64{0, 1}
		default:
			out[i] = []float64{0.7, 0.3}
		}
	}
	return out, nil
}

func (e *keywordEmbedder) Dimension() int { return 2 }

type stubSource struct {
	articles []domain.RawArticle
	err      error
}

func (s *stubSource) FetchDaily(context.Context, time.Time) ([]domain.RawArticle, error) {
	return s.articles, s.err
}

type stubIndex struct {
	hits []domain.RetrievalHit
}

func (s *stubIndex) Name() string { return "stub" }

func (s *stubIndex) Query(context.Context, []float64, int) ([]domain.RetrievalHit, error) {
	return append([]domain.RetrievalHit(nil), s.hits...), nil
}

func (s *stubIndex) Upsert(context.Context, []string, []string, []map[string]string, [][]float64) error {
	return nil
}

type captureStore struct {
	capsuleType string
	report      domain.Report
	calls       int
	err         error
}

func (c *captureStore) SaveReport(_ context.Context, capsuleType string, r domain.Report) error {
	c.calls++
	c.capsuleType = capsuleType
	c.report = r
	return c.err
}

type captureExporter struct {
	markdown string
	calls    int
}

func (c *captureExporter) Export(_ domain.Report, markdown string) error {
	c.calls++
	c.markdown = markdown
	return nil
}

type captureNotifier struct {
	message string
}

func (c *captureNotifier) PublishDigest(_ context.Context, digest string) error {
	c.message = digest
	return nil
}

var testLabels = []string{"Economy", "Security"}

func pad(s string) string {
	return s + " " + strings.Repeat("Further reporting adds detail. ", 4)
}

func testDeps(source *stubSource, emb *keywordEmbedder) (PipelineDeps, *captureStore, *captureExporter, *captureNotifier) {
	store := &captureStore{}
	exporter := &captureExporter{}
	notifier := &captureNotifier{}

	deps := PipelineDeps{
		Source:     source,
		Embedder:   emb,
		Preparer:   textprep.NewPreparer(1500, 200, 50),
		Aggregator: aggregate.NewAggregator(nil),
		Classifier: classify.NewClassifier(emb, testLabels, "%s news"),
		Retriever: retrieve.NewRetriever(
			&stubIndex{hits: []domain.RetrievalHit{{ID: "q1", Document: "Old econ question.", Distance: 0.2}}},
			&stubIndex{},
			3, nil),
		Composer:    compose.NewComposer(nil, compose.Options{}, nil),
		Reporter:    report.NewBuilder(testLabels),
		Store:       store,
		Exporter:    exporter,
		Notifier:    notifier,
		Workers:     4,
		CapsuleType: "news",
	}
	return deps, store, exporter, notifier
}

func TestProcessDayFullRun(t *testing.T) {
	t.Parallel()

	source := &stubSource{articles: []domain.RawArticle{
		{URL: "https://n.example/markets", Title: "Markets rally", Source: "Wire",
			Text: pad("The economy grew strongly this quarter according to new economic data.")},
		{URL: "https://n.example/border", Title: "Border talks", Source: "Wire",
			Text: pad("Security forces completed a joint border security exercise.")},
	}}
	deps, store, exporter, notifier := testDeps(source, &keywordEmbedder{})

	err := NewPipeline(deps).ProcessDay(context.Background(), time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, 1, store.calls)
	require.Equal(t, "news", store.capsuleType)
	require.Equal(t, "2026-08-28", store.report.Date)

	econ, ok := store.report.Section("Economy")
	require.True(t, ok)
	require.Len(t, econ.Digests, 1)
	require.Equal(t, "Markets rally", econ.Digests[0].Title)
	require.Len(t, econ.Digests[0].PYQHits, 1)

	sec, ok := store.report.Section("Security")
	require.True(t, ok)
	require.Len(t, sec.Digests, 1)
	require.Equal(t, "Border talks", sec.Digests[0].Title)

	require.Equal(t, 1, exporter.calls)
	require.Contains(t, exporter.markdown, "# News Capsule — Date: 2026-08-28")
	require.Contains(t, exporter.markdown, "## Economy")
	require.Contains(t, exporter.markdown, "### Markets rally — Summary")

	require.Contains(t, notifier.message, "News Capsule 2026-08-28")
	require.Contains(t, notifier.message, "- Economy: 1")
	require.Contains(t, notifier.message, "- Security: 1")
}

func TestProcessDayKeepsSourceOrder(t *testing.T) {
	t.Parallel()

	// Many articles in one category; worker completion order must not leak
	// into the report.
	var raws []domain.RawArticle
	for _, name := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		raws = append(raws, domain.RawArticle{
			URL:   "https://n.example/" + name,
			Title: name,
			Text:  pad("Economic update " + name + " covers economy figures."),
		})
	}
	deps, store, _, _ := testDeps(&stubSource{articles: raws}, &keywordEmbedder{})

	err := NewPipeline(deps).ProcessDay(context.Background(), time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	econ, ok := store.report.Section("Economy")
	require.True(t, ok)
	require.Len(t, econ.Digests, 5)
	for i, name := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		require.Equal(t, name, econ.Digests[i].Title)
	}
}

func TestProcessDayFetchErrorAborts(t *testing.T) {
	t.Parallel()

	deps, store, _, _ := testDeps(&stubSource{err: errors.New("all sources down")}, &keywordEmbedder{})

	err := NewPipeline(deps).ProcessDay(context.Background(), time.Now())
	require.Error(t, err)
	require.Zero(t, store.calls)
}

func TestProcessDayEmbedderFailureYieldsEmptyReport(t *testing.T) {
	t.Parallel()

	source := &stubSource{articles: []domain.RawArticle{
		{URL: "https://n.example/a", Title: "A", Text: pad("Some economy text here.")},
	}}
	emb := &keywordEmbedder{err: errors.New("endpoint down")}
	deps, store, _, _ := testDeps(source, emb)

	// Chunk embedding fails per article, then centroid init fails too.
	err := NewPipeline(deps).ProcessDay(context.Background(), time.Now())
	require.Error(t, err)
	require.Zero(t, store.calls)
}

func TestProcessDayShortArticlesDropped(t *testing.T) {
	t.Parallel()

	source := &stubSource{articles: []domain.RawArticle{
		{URL: "https://n.example/short", Title: "Too short", Text: "tiny"},
		{URL: "https://n.example/ok", Title: "Long enough", Text: pad("Security news with plenty of security detail.")},
	}}
	deps, store, _, notifier := testDeps(source, &keywordEmbedder{})

	err := NewPipeline(deps).ProcessDay(context.Background(), time.Now())
	require.NoError(t, err)

	sec, _ := store.report.Section("Security")
	require.Len(t, sec.Digests, 1)
	econ, _ := store.report.Section("Economy")
	require.Empty(t, econ.Digests)
	require.NotContains(t, notifier.message, "Too short")
}

func TestProcessDaySinkFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	source := &stubSource{articles: []domain.RawArticle{
		{URL: "https://n.example/a", Title: "A", Text: pad("Economy piece about economic growth.")},
	}}
	deps, store, exporter, _ := testDeps(source, &keywordEmbedder{})
	store.err = errors.New("database down")

	err := NewPipeline(deps).ProcessDay(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)
	require.Equal(t, 1, exporter.calls)
}

func TestRunSummaryEmptyRun(t *testing.T) {
	t.Parallel()

	rep := report.NewBuilder(testLabels).Build("2026-08-28", nil)
	msg := runSummary(rep)
	require.Contains(t, msg, "No articles collected.")
}
