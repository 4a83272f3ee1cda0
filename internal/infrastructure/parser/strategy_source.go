package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ApagonScanner/internal/config"
	"ApagonScanner/internal/domain"
	"ApagonScanner/internal/ports"
	"ApagonScanner/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner
// strategies. A failing site is logged and skipped so one unreachable
// provider never starves the rest of the run.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	keywords []string
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, keywords []string, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		keywords: keywords,
		logger:   log,
		now:      time.Now,
	}
}

// FetchRecent iterates over configured sites and executes their
// scanners with a shared lookback window and known-link set.
func (s *StrategySource) FetchRecent(ctx context.Context, lookbackDays int, known map[string]bool) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	minDate := s.now().AddDate(0, 0, -lookbackDays).Format("2006-01-02")
	s.debug("fetch recent", "sites", len(s.sites), "min_date", minDate)

	var aggregated []domain.Article
	seen := map[string]struct{}{}

	for _, site := range s.sites {
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			s.warn("site skipped", "site", site.Name, "error", err)
			continue
		}

		req := scanner.Request{
			SiteName:   site.Name,
			URL:        site.URL,
			MinDate:    minDate,
			Keywords:   s.keywords,
			KnownLinks: known,
			Options:    site.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			s.warn("scan failed", "site", site.Name, "error", err)
		}

		for _, article := range results {
			if _, ok := seen[article.URL]; ok {
				continue
			}
			seen[article.URL] = struct{}{}
			aggregated = append(aggregated, article)
		}
		s.debug("site produced articles", "site", site.Name, "count", len(results))
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
