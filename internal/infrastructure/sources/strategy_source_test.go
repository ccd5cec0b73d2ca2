package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"NewsCapsule/internal/config"
	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/scanner"
)

type fakeScanner struct {
	name     string
	articles []domain.RawArticle
	err      error
	lastReq  scanner.Request
}

func (f *fakeScanner) Name() string { return f.name }

func (f *fakeScanner) Scan(_ context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	f.lastReq = req
	return f.articles, f.err
}

func TestFetchDailyMergesSources(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	api := &fakeScanner{name: "newsapi", articles: []domain.RawArticle{{URL: "u1", Source: "Wire"}}}
	feed := &fakeScanner{name: "rss", articles: []domain.RawArticle{{URL: "u2"}}}
	reg.Register(api)
	reg.Register(feed)

	src := NewStrategySource(reg, []config.SourceConfig{
		{Name: "main", Scanner: "newsapi"},
		{Name: "pib-feed", Scanner: "rss", Options: map[string]string{"url": "https://pib.example/rss"}},
	}, config.NewsConfig{Query: "current affairs", FetchLimit: 30}, nil)

	articles, err := src.FetchDaily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("fetch daily: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 merged articles, got %d", len(articles))
	}
	if articles[0].Source != "Wire" {
		t.Fatalf("scanner-provided source must win: %q", articles[0].Source)
	}
	if articles[1].Source != "pib-feed" {
		t.Fatalf("missing source must default to the config name: %q", articles[1].Source)
	}

	if api.lastReq.Query != "current affairs" || api.lastReq.FetchLimit != 30 {
		t.Fatalf("news settings not propagated: %+v", api.lastReq)
	}
	if feed.lastReq.Options["url"] != "https://pib.example/rss" {
		t.Fatalf("source options not propagated: %+v", feed.lastReq)
	}
}

func TestFetchDailySkipsFailingSource(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(&fakeScanner{name: "broken", err: errors.New("upstream 500")})
	reg.Register(&fakeScanner{name: "healthy", articles: []domain.RawArticle{{URL: "ok"}}})

	src := NewStrategySource(reg, []config.SourceConfig{
		{Name: "a", Scanner: "broken"},
		{Name: "b", Scanner: "healthy"},
	}, config.NewsConfig{}, nil)

	articles, err := src.FetchDaily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("one failing source must not abort the fetch: %v", err)
	}
	if len(articles) != 1 || articles[0].URL != "ok" {
		t.Fatalf("healthy source must still contribute: %+v", articles)
	}
}

func TestFetchDailyUnknownScanner(t *testing.T) {
	t.Parallel()

	src := NewStrategySource(scanner.NewRegistry(), []config.SourceConfig{
		{Name: "a", Scanner: "missing"},
	}, config.NewsConfig{}, nil)

	if _, err := src.FetchDaily(context.Background(), time.Now()); err == nil {
		t.Fatal("unregistered scanner must fail the fetch configuration")
	}
}
