package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ApagonScanner/internal/domain"
	"ApagonScanner/internal/ports"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS processed_articles (
    link         TEXT PRIMARY KEY,
    title        TEXT NOT NULL DEFAULT '',
    fecha        TEXT NOT NULL DEFAULT '',
    extracted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteRepository indexes processed articles in a local SQLite file
// for deduplication and audit.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.HistoryRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (or creates) the database and bootstraps
// the schema.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure history db: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// AlreadyProcessed returns a map with the links that already exist in
// the history.
func (r *SQLiteRepository) AlreadyProcessed(ctx context.Context, links []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if r.db == nil || len(links) == 0 {
		return result, nil
	}

	query, args, err := sq.Select("link").
		From("processed_articles").
		Where(sq.Eq{"link": links}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		result[link] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// KnownLinks returns every link in the history.
func (r *SQLiteRepository) KnownLinks(ctx context.Context) (map[string]bool, error) {
	known := make(map[string]bool)
	if r.db == nil {
		return known, nil
	}

	query, args, err := sq.Select("link").From("processed_articles").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		known[link] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return known, nil
}

// SaveProcessed upserts the processed-article snapshot.
func (r *SQLiteRepository) SaveProcessed(ctx context.Context, rec domain.Record, title string) error {
	if r.db == nil {
		return nil
	}

	query, args, err := sq.Insert("processed_articles").
		Columns("link", "title", "fecha").
		Values(rec.Link, title, rec.Date).
		Suffix("ON CONFLICT(link) DO UPDATE SET fecha = excluded.fecha, extracted_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert processed: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
