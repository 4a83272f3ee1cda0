package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"ApagonScanner/internal/domain"
	"ApagonScanner/internal/scanner"
)

// RSSScanner reads a category feed instead of crawling listing pages.
// Feed items carry their full content, so no per-article fetch is
// needed.
type RSSScanner struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewRSSScanner builds the feed-based strategy.
func NewRSSScanner(logger *slog.Logger) *RSSScanner {
	return &RSSScanner{parser: gofeed.NewParser(), logger: logger}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Scan parses the configured feed and keeps keyword-matching items
// published on or after req.MinDate.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no feed URL provided for site %s", req.SiteName)
	}

	feed, err := r.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.URL, err)
	}

	var results []domain.Article
	for _, item := range feed.Items {
		if item.Link == "" || req.KnownLinks[item.Link] {
			continue
		}
		if !MatchesKeywords(req.Keywords, item.Title, item.Description) {
			continue
		}

		var reportDate string
		if item.PublishedParsed != nil {
			reportDate = item.PublishedParsed.Format("2006-01-02")
		}
		if reportDate < req.MinDate {
			if r.logger != nil {
				r.logger.Debug("feed item too old", "titulo", item.Title, "fecha", reportDate)
			}
			continue
		}

		body := item.Content
		if strings.TrimSpace(body) == "" {
			body = item.Description
		}

		results = append(results, domain.Article{
			URL:        item.Link,
			Title:      strings.TrimSpace(item.Title),
			Excerpt:    strings.TrimSpace(item.Description),
			Body:       strings.TrimSpace(body),
			ReportDate: reportDate,
			Source:     req.SiteName,
		})
	}

	return results, nil
}
