package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"ApagonScanner/internal/config"
	"ApagonScanner/internal/domain"
	"ApagonScanner/internal/scanner"
)

// CubadebateScanner crawls category listing pages and extracts full
// article text for items matching the outage keyword filter.
type CubadebateScanner struct {
	client     *http.Client
	userAgent  string
	maxPages   int
	fetchDelay time.Duration
	pageDelay  time.Duration
	logger     *slog.Logger
}

// NewCubadebateScanner wires an HTTP client; maxPages defaults to 5.
func NewCubadebateScanner(client *http.Client, cfg config.ScraperConfig, logger *slog.Logger) *CubadebateScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	return &CubadebateScanner{
		client:     client,
		userAgent:  cfg.UserAgent,
		maxPages:   maxPages,
		fetchDelay: time.Second,
		pageDelay:  2 * time.Second,
		logger:     logger,
	}
}

// Name identifies the strategy inside the registry.
func (c *CubadebateScanner) Name() string {
	return "cubadebate"
}

// Scan walks listing pages newest-first and returns the matching
// articles whose report date falls on or after req.MinDate. A failing
// page is logged and skipped; only a fully unusable request aborts.
func (c *CubadebateScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no listing URL provided for site %s", req.SiteName)
	}

	base := strings.TrimSuffix(req.URL, "/")
	var results []domain.Article

	for page := 1; page <= c.maxPages; page++ {
		pageURL := fmt.Sprintf("%s/page/%d/", base, page)
		c.debug("scanning listing page", "url", pageURL)

		doc, err := c.fetchDocument(ctx, pageURL)
		if err != nil {
			c.warn("listing page skipped", "url", pageURL, "error", err)
			continue
		}

		pageArticles, foundRecent := c.collectFromListing(ctx, doc, req)
		results = append(results, pageArticles...)

		// Past page 1, a page with nothing recent means everything
		// further back is older still.
		if !foundRecent && page > 1 {
			c.debug("no recent articles on page, stopping", "page", page)
			break
		}

		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return results, err
		}
	}

	return results, nil
}

func (c *CubadebateScanner) collectFromListing(ctx context.Context, doc *goquery.Document, req scanner.Request) ([]domain.Article, bool) {
	var (
		collected   []domain.Article
		foundRecent bool
	)

	doc.Find("div.bigimage_post, div.image_post").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}

		titleDiv := sel.Find("div.title").First()
		title := strings.TrimSpace(titleDiv.Text())
		link, ok := titleDiv.Find("a").First().Attr("href")
		if !ok || link == "" {
			return true
		}

		if req.KnownLinks[link] {
			c.debug("article already processed", "titulo", title)
			return true
		}

		excerpt := strings.TrimSpace(sel.Find("div.excerpt").First().Text())
		if !MatchesKeywords(req.Keywords, title, excerpt) {
			return true
		}
		c.info("candidate article found", "titulo", title)

		article, err := c.fetchArticle(ctx, link, title, excerpt)
		if err != nil {
			c.warn("article fetch failed", "enlace", link, "error", err)
			return true
		}
		article.Source = req.SiteName

		if article.ReportDate >= req.MinDate {
			foundRecent = true
			collected = append(collected, article)
			c.info("article added", "titulo", title, "fecha", article.ReportDate)
		} else {
			c.debug("article too old", "titulo", title, "fecha", article.ReportDate)
		}

		if err := sleepCtx(ctx, c.fetchDelay); err != nil {
			return false
		}
		return true
	})

	return collected, foundRecent
}

// fetchArticle downloads one article page, distills its body text with
// readability and resolves the report date from page metadata.
func (c *CubadebateScanner) fetchArticle(ctx context.Context, link, title, excerpt string) (domain.Article, error) {
	raw, err := c.fetchBytes(ctx, link)
	if err != nil {
		return domain.Article{}, err
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return domain.Article{}, fmt.Errorf("invalid article url %s: %w", link, err)
	}

	parser := readability.NewParser()
	distilled, err := parser.Parse(bytes.NewReader(raw), pageURL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("distill article: %w", err)
	}

	reportDate := publishedDate(raw, distilled.PublishedTime)

	return domain.Article{
		URL:        link,
		Title:      title,
		Excerpt:    excerpt,
		Body:       strings.TrimSpace(distilled.TextContent),
		ReportDate: reportDate,
	}, nil
}

func (c *CubadebateScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	raw, err := c.fetchBytes(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (c *CubadebateScanner) fetchBytes(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("site returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return raw, nil
}

// publishedDate prefers the article:published_time meta tag and falls
// back to the readability-extracted timestamp. Returns YYYY-MM-DD or "".
func publishedDate(raw []byte, fromReadability *time.Time) string {
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw)); err == nil {
		if content, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
			if idx := strings.Index(content, "T"); idx > 0 {
				return content[:idx]
			}
			if content != "" {
				return content
			}
		}
	}
	if fromReadability != nil {
		return fromReadability.Format("2006-01-02")
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CubadebateScanner) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *CubadebateScanner) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *CubadebateScanner) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
