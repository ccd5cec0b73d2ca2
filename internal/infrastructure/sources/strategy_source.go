package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsCapsule/internal/config"
	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/ports"
	"NewsCapsule/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	news     config.NewsConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, news config.NewsConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		news:     news,
		logger:   log,
	}
}

// FetchDaily iterates over configured sources and executes their scanners.
// One broken source degrades to zero articles from that source; the others
// still contribute to the run.
func (s *StrategySource) FetchDaily(ctx context.Context, day time.Time) ([]domain.RawArticle, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch daily", "sources", len(s.sources), "day", day.Format("2006-01-02"))

	var aggregated []domain.RawArticle
	for _, src := range s.sources {
		strategy, err := s.registry.Resolve(src.Scanner)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		req := scanner.Request{
			Day:        day,
			SourceName: src.Name,
			Query:      s.news.Query,
			FetchLimit: s.news.FetchLimit,
			Options:    src.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			s.warn("scan source failed", "source", src.Name, "error", err)
			continue
		}

		for i := range results {
			if results[i].Source == "" {
				results[i].Source = src.Name
			}
		}
		s.debug("source produced articles", "source", src.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
