package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ApagonScanner/internal/ports"
	"ApagonScanner/internal/store"
)

// JSONStore persists the accumulated year/month document as a single
// JSON file, the authoritative dataset the dashboard reads.
type JSONStore struct {
	path   string
	logger *slog.Logger
}

var _ ports.StoreRepository = (*JSONStore)(nil)

// NewJSONStore wires the file path.
func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	return &JSONStore{path: path, logger: logger}
}

// Load reads the store from disk. A missing, unreadable or corrupt file
// yields an empty store with a loud log instead of an error: the
// pipeline's availability wins over strict state protection, and the
// per-day exports remain the recovery path.
func (j *JSONStore) Load() (store.Store, error) {
	raw, err := os.ReadFile(j.path)
	if os.IsNotExist(err) {
		j.info("no existing store, starting empty", "path", j.path)
		return store.New(), nil
	}
	if err != nil {
		j.errorLog("store unreadable, proceeding with empty store", "path", j.path, "error", err)
		return store.New(), nil
	}

	var s store.Store
	if err := json.Unmarshal(raw, &s); err != nil {
		j.errorLog("store corrupt, proceeding with empty store", "path", j.path, "error", err)
		return store.New(), nil
	}
	return s, nil
}

// Save overwrites the whole document. This is the one write whose
// failure is fatal to a run.
func (j *JSONStore) Save(s store.Store) error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	f, err := os.Create(j.path)
	if err != nil {
		return fmt.Errorf("create store file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close store file: %w", err)
	}

	j.info("store saved", "path", j.path, "records", s.Len())
	return nil
}

func (j *JSONStore) info(msg string, args ...any) {
	if j.logger != nil {
		j.logger.Info(msg, args...)
	}
}

func (j *JSONStore) errorLog(msg string, args ...any) {
	if j.logger != nil {
		j.logger.Error(msg, args...)
	}
}
