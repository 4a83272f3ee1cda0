package ports

import (
	"context"

	"ApagonScanner/internal/domain"
	"ApagonScanner/internal/store"
)

// ArticleSource pulls fresh candidate articles from upstream providers.
// Links already present in known are skipped during scraping so their
// full text is never fetched twice.
type ArticleSource interface {
	FetchRecent(ctx context.Context, lookbackDays int, known map[string]bool) ([]domain.Article, error)
}

// Extractor turns one article's raw text into a structured grid report.
type Extractor interface {
	Extract(ctx context.Context, text string) (domain.Datos, error)
}

// HistoryRepository indexes processed articles for deduplication and
// audit.
type HistoryRepository interface {
	AlreadyProcessed(ctx context.Context, links []string) (map[string]bool, error)
	SaveProcessed(ctx context.Context, rec domain.Record, title string) error
	KnownLinks(ctx context.Context) (map[string]bool, error)
	Close() error
}

// StoreRepository loads and saves the accumulated year/month document.
type StoreRepository interface {
	Load() (store.Store, error)
	Save(store.Store) error
}

// CorpusRepository reads and extends the flat raw-article corpus.
type CorpusRepository interface {
	ReadAll() ([]domain.Article, error)
	Append(articles []domain.Article) error
	KnownLinks() (map[string]bool, error)
}
