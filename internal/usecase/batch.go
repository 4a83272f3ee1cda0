package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ApagonScanner/internal/domain"
	"ApagonScanner/internal/ports"
)

// RateLimiter spaces consecutive extraction calls by a fixed delay,
// regardless of individual call latency. The upstream API enforces a
// practical request-rate ceiling.
type RateLimiter struct {
	Delay time.Duration
}

// Wait blocks for the configured delay or until the context is done.
func (r RateLimiter) Wait(ctx context.Context) error {
	if r.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(r.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BatchProcessor drives the extractor over an ordered collection of
// articles with continue-on-error semantics: one article's failure
// never aborts the batch.
type BatchProcessor struct {
	extractor   ports.Extractor
	limiter     RateLimiter
	artifactDir string
	logger      *slog.Logger
}

// NewBatchProcessor wires the extractor and rate-limit policy. When
// artifactDir is non-empty every successful record is additionally
// written there as an individual audit file.
func NewBatchProcessor(extractor ports.Extractor, limiter RateLimiter, artifactDir string, logger *slog.Logger) *BatchProcessor {
	return &BatchProcessor{
		extractor:   extractor,
		limiter:     limiter,
		artifactDir: artifactDir,
		logger:      logger,
	}
}

// Process extracts every article in order and returns the records that
// succeeded. Failed articles are dropped with a logged reason and are
// not retried within the run; their URLs stay out of the known set so
// the next run picks them up again. Only context cancellation stops the
// batch early, returning what was completed so far.
func (b *BatchProcessor) Process(ctx context.Context, articles []domain.Article) ([]domain.Record, error) {
	records := make([]domain.Record, 0, len(articles))

	for i, article := range articles {
		if i > 0 {
			if err := b.limiter.Wait(ctx); err != nil {
				return records, err
			}
		}
		b.info("processing report", "numero", i+1, "total", len(articles), "enlace", article.URL)

		datos, err := b.extractor.Extract(ctx, article.Body)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			b.warn("extraction failed, article dropped", "enlace", article.URL, "error", err)
			continue
		}

		record := domain.Record{
			Link: article.URL,
			Date: article.ReportDate,
			Data: datos,
		}
		records = append(records, record)

		if b.artifactDir != "" {
			if err := b.saveArtifact(record); err != nil {
				b.warn("audit artifact not written", "enlace", record.Link, "error", err)
			}
		}
	}

	return records, nil
}

func (b *BatchProcessor) saveArtifact(record domain.Record) error {
	if err := os.MkdirAll(b.artifactDir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	path := filepath.Join(b.artifactDir, fmt.Sprintf("extracted_row_%s.json", record.Date))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

func (b *BatchProcessor) info(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}

func (b *BatchProcessor) warn(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}
