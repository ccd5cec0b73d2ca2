package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/scanner"
	"NewsCapsule/internal/textprep"
)

const (
	defaultBaseURL    = "https://newsapi.org/v2/everything"
	defaultFetchLimit = 30
	userAgent         = "NewsCapsule/1.0"
)

// Scanner fetches article listings from a NewsAPI-compatible endpoint and
// scrapes each article page for its full text.
type Scanner struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	extraURLs []string
	logger    *slog.Logger
}

// NewScanner wires an HTTP client; a nil client gets a 20s-timeout default.
func NewScanner(client *http.Client, apiKey string, extraURLs []string, logger *slog.Logger) *Scanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Scanner{
		client:    client,
		baseURL:   defaultBaseURL,
		apiKey:    apiKey,
		extraURLs: extraURLs,
		logger:    logger,
	}
}

// Name identifies the strategy inside the registry.
func (s *Scanner) Name() string {
	return "newsapi"
}

type listing struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Scan lists articles in the yesterday-to-today window and scrapes each.
// A failed scrape degrades to the listing description; a scrape failure
// never fails the whole scan.
func (s *Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	var results []domain.RawArticle

	if s.apiKey == "" {
		if s.logger != nil {
			s.logger.Warn("newsapi key missing, skipping API fetch")
		}
	} else {
		listed, err := s.fetchListing(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("newsapi listing: %w", err)
		}
		results = append(results, listed...)
	}

	for _, extra := range s.extraURLs {
		text := s.scrape(ctx, extra)
		if text == "" {
			continue
		}
		results = append(results, domain.RawArticle{
			URL:    extra,
			Title:  lastPathSegment(extra),
			Source: "manual",
			Text:   text,
		})
	}

	return results, nil
}

func (s *Scanner) fetchListing(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	limit := req.FetchLimit
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	day := req.Day.UTC().Truncate(24 * time.Hour)

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("from", day.AddDate(0, 0, -1).Format("2006-01-02"))
	params.Set("to", day.Format("2006-01-02"))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("apiKey", s.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned %s", resp.Status)
	}

	var payload listing
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q", payload.Status)
	}

	results := make([]domain.RawArticle, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		if item.URL == "" {
			continue
		}

		text := s.scrape(ctx, item.URL)
		if text == "" {
			text = textprep.Clean(item.Description)
			if text == "" {
				text = item.Title
			}
		}

		source := item.Source.Name
		if source == "" {
			source = "newsapi"
		}

		publishedAt, _ := time.Parse(time.RFC3339, item.PublishedAt)
		results = append(results, domain.RawArticle{
			URL:         item.URL,
			Title:       item.Title,
			Source:      source,
			Description: item.Description,
			Text:        text,
			PublishedAt: publishedAt,
		})
	}

	if s.logger != nil {
		s.logger.Debug("newsapi listing fetched", "articles", len(results))
	}
	return results, nil
}

func (s *Scanner) scrape(ctx context.Context, pageURL string) string {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("page fetch failed", "url", pageURL, "error", err)
		}
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	text, err := ExtractArticleText(resp.Body)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("page parse failed", "url", pageURL, "error", err)
		}
		return ""
	}
	return text
}

func lastPathSegment(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return rawURL
	}
	segments := parsed.Path
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == '/' {
			return segments[i+1:]
		}
	}
	return segments
}
