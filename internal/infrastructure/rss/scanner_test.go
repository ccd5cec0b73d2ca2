package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsCapsule/internal/scanner"
)

func feedXML(now time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0">
<channel>
<title>Example Current Affairs</title>
<item>
  <title>Fresh item</title>
  <link>https://feed.example/fresh</link>
  <description>Short blurb.</description>
  <content:encoded xmlns:content="http://purl.org/rss/1.0/modules/content/">Full inline body of the fresh item.</content:encoded>
  <pubDate>%s</pubDate>
</item>
<item>
  <title>Stale item</title>
  <link>https://feed.example/stale</link>
  <description>Old blurb.</description>
  <pubDate>%s</pubDate>
</item>
</channel>
</rss>`,
		now.Format(time.RFC1123Z),
		now.AddDate(0, 0, -10).Format(time.RFC1123Z))
}

func TestScanParsesFeed(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML(now))
	}))
	defer srv.Close()

	s := NewScanner(nil)
	articles, err := s.Scan(context.Background(), scanner.Request{
		Day:        now,
		SourceName: "example-feed",
		Options:    map[string]string{"url": srv.URL},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("stale items must be filtered, got %d articles", len(articles))
	}

	a := articles[0]
	if a.Title != "Fresh item" || a.URL != "https://feed.example/fresh" {
		t.Fatalf("unexpected article: %+v", a)
	}
	if a.Text != "Full inline body of the fresh item." {
		t.Fatalf("content:encoded must win over description: %q", a.Text)
	}
	if a.Source != "Example Current Affairs" {
		t.Fatalf("feed title must become the source: %q", a.Source)
	}
}

func TestScanDescriptionFallback(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	xml := fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
<item><title>No body</title><link>https://feed.example/x</link>
<description>Only the description.</description>
<pubDate>%s</pubDate></item>
</channel></rss>`, now.Format(time.RFC1123Z))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, xml)
	}))
	defer srv.Close()

	articles, err := NewScanner(nil).Scan(context.Background(), scanner.Request{
		Day:     now,
		Options: map[string]string{"url": srv.URL},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(articles) != 1 || articles[0].Text != "Only the description." {
		t.Fatalf("expected description fallback: %+v", articles)
	}
}

func TestScanMissingURLOption(t *testing.T) {
	t.Parallel()

	if _, err := NewScanner(nil).Scan(context.Background(), scanner.Request{SourceName: "broken"}); err == nil {
		t.Fatal("expected error for missing url option")
	}
}
