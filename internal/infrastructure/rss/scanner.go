// Package rss provides an RSS/Atom source strategy for feeds that expose
// full article text inline.
package rss

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/scanner"
)

// Scanner pulls items from the feed URL given in the source options.
type Scanner struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewScanner builds a gofeed-backed strategy.
func NewScanner(logger *slog.Logger) *Scanner {
	return &Scanner{parser: gofeed.NewParser(), logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *Scanner) Name() string {
	return "rss"
}

// Scan parses the configured feed and keeps items published on or after
// the requested day. Item content falls back to the description.
func (s *Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	feedURL := req.Options["url"]
	if feedURL == "" {
		return nil, fmt.Errorf("rss source %s has no url option", req.SourceName)
	}

	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	cutoff := req.Day.UTC().Truncate(24 * time.Hour)
	articles := make([]domain.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed.UTC()
		}
		if published.Before(cutoff.AddDate(0, 0, -1)) {
			continue
		}

		text := item.Content
		if strings.TrimSpace(text) == "" {
			text = item.Description
		}

		source := req.SourceName
		if feed.Title != "" {
			source = feed.Title
		}

		articles = append(articles, domain.RawArticle{
			URL:         item.Link,
			Title:       item.Title,
			Source:      source,
			Description: item.Description,
			Text:        text,
			PublishedAt: published,
		})
	}

	if s.logger != nil {
		s.logger.Debug("rss feed parsed", "feed", feedURL, "items", len(articles))
	}
	return articles, nil
}
