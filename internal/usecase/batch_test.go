package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ApagonScanner/internal/domain"
)

// stubExtractor fails for any body listed in failing and counts calls.
type stubExtractor struct {
	calls   int
	failing map[string]bool
}

func (s *stubExtractor) Extract(ctx context.Context, text string) (domain.Datos, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.calls++
	if s.failing[text] {
		return nil, fmt.Errorf("model API 500 Internal Server Error")
	}
	return domain.Datos{"impacto": map[string]any{"horas_totales": 10.0}}.Normalize(), nil
}

func articlesForBatch(n int) []domain.Article {
	out := make([]domain.Article, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Article{
			URL:        fmt.Sprintf("https://x/%d", i),
			ReportDate: fmt.Sprintf("2024-05-%02d", i),
			Body:       fmt.Sprintf("informe %d", i),
		})
	}
	return out
}

func TestProcessIsolatesSingleFailure(t *testing.T) {
	t.Parallel()

	extractor := &stubExtractor{failing: map[string]bool{"informe 3": true}}
	batch := NewBatchProcessor(extractor, RateLimiter{}, "", nil)

	records, err := batch.Process(context.Background(), articlesForBatch(5))

	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, 5, extractor.calls)

	var links []string
	for _, rec := range records {
		links = append(links, rec.Link)
	}
	assert.Equal(t, []string{"https://x/1", "https://x/2", "https://x/4", "https://x/5"}, links)
}

func TestProcessWritesAuditArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	extractor := &stubExtractor{}
	batch := NewBatchProcessor(extractor, RateLimiter{}, dir, nil)

	records, err := batch.Process(context.Background(), articlesForBatch(2))
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, rec := range records {
		path := filepath.Join(dir, fmt.Sprintf("extracted_row_%s.json", rec.Date))
		_, err := os.Stat(path)
		assert.NoError(t, err, "artifact for %s", rec.Link)
	}
}

func TestProcessStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := &stubExtractor{}
	batch := NewBatchProcessor(extractor, RateLimiter{}, "", nil)

	records, err := batch.Process(ctx, articlesForBatch(3))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records)
}

func TestRateLimiterZeroDelayDoesNotBlock(t *testing.T) {
	t.Parallel()

	require.NoError(t, RateLimiter{}.Wait(context.Background()))
}
