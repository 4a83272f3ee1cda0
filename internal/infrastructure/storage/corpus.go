package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ApagonScanner/internal/domain"
	"ApagonScanner/internal/ports"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// corpusHeader is the fixed column layout of the flat corpus file.
var corpusHeader = []string{"Titulo", "Enlace", "Fecha", "Contenido"}

// CSVCorpus is the flat pre-extraction corpus: every raw article ever
// scraped, newest first. It doubles as the known-URL manifest for
// deduplication and as the backfill input.
type CSVCorpus struct {
	path   string
	logger *slog.Logger
}

var _ ports.CorpusRepository = (*CSVCorpus)(nil)

// NewCSVCorpus wires the file path.
func NewCSVCorpus(path string, logger *slog.Logger) *CSVCorpus {
	return &CSVCorpus{path: path, logger: logger}
}

// ReadAll loads the whole corpus. A missing file is an empty corpus.
// The file historically carries a UTF-8 BOM; it is tolerated on read.
func (c *CSVCorpus) ReadAll() ([]domain.Article, error) {
	raw, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		if c.logger != nil {
			c.logger.Info("no corpus file, starting empty", "path", c.path)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[name] = i
	}

	articles := make([]domain.Article, 0, len(rows)-1)
	for _, row := range rows[1:] {
		articles = append(articles, domain.Article{
			Title:      field(row, columns, "Titulo"),
			URL:        field(row, columns, "Enlace"),
			ReportDate: field(row, columns, "Fecha"),
			Body:       field(row, columns, "Contenido"),
		})
	}
	return articles, nil
}

// Append prepends the new articles to the corpus and rewrites the file,
// keeping the newest rows first as the scraper always has.
func (c *CSVCorpus) Append(articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	existing, err := c.ReadAll()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create corpus directory: %w", err)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create corpus file: %w", err)
	}
	if _, err := f.Write(utf8BOM); err != nil {
		_ = f.Close()
		return fmt.Errorf("write corpus: %w", err)
	}

	writer := csv.NewWriter(f)
	rows := [][]string{corpusHeader}
	for _, art := range append(append([]domain.Article{}, articles...), existing...) {
		rows = append(rows, []string{art.Title, art.URL, art.ReportDate, art.Body})
	}
	if err := writer.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write corpus: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close corpus file: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("corpus updated", "path", c.path, "added", len(articles), "total", len(rows)-1)
	}
	return nil
}

// KnownLinks returns the set of URLs already present in the corpus.
func (c *CSVCorpus) KnownLinks() (map[string]bool, error) {
	articles, err := c.ReadAll()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(articles))
	for _, art := range articles {
		if art.URL != "" {
			known[art.URL] = true
		}
	}
	return known, nil
}

func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
