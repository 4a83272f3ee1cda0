package app

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"ApagonScanner/internal/config"
	"ApagonScanner/internal/infrastructure/llm"
	"ApagonScanner/internal/infrastructure/parser"
	"ApagonScanner/internal/infrastructure/storage"
	"ApagonScanner/internal/logging"
	"ApagonScanner/internal/scanner"
	"ApagonScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	history  *storage.SQLiteRepository
}

// New builds a runnable application instance. A missing API key is a
// configuration failure: no network call is ever attempted without it.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.File)
	}

	if cfg.LLM.APIKey == "" {
		return nil, errors.New("FIREWORKS_API_KEY is not set")
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewCubadebateScanner(nil, cfg.Scraper, baseLogger.With("component", "scanner.cubadebate")))
	registry.Register(parser.NewRSSScanner(baseLogger.With("component", "scanner.rss")))

	source := parser.NewStrategySource(registry, cfg.Sites, cfg.Scraper.Keywords, baseLogger.With("component", "source"))
	extractor := llm.NewExtractor(cfg.LLM, baseLogger.With("component", "extractor"))

	corpus := storage.NewCSVCorpus(filepath.Join(cfg.Data.Dir, cfg.Data.CorpusFile), baseLogger.With("component", "corpus"))
	storeRepo := storage.NewJSONStore(filepath.Join(cfg.Data.Dir, cfg.Data.StoreFile), baseLogger.With("component", "store"))

	history, err := storage.NewSQLiteRepository(filepath.Join(cfg.Data.Dir, cfg.Data.HistoryDB))
	if err != nil {
		return nil, err
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:         source,
		Extractor:      extractor,
		Corpus:         corpus,
		Store:          storeRepo,
		History:        history,
		Logger:         baseLogger.With("component", "pipeline"),
		DataDir:        cfg.Data.Dir,
		Delay:          time.Duration(cfg.LLM.DelaySeconds) * time.Second,
		SaveIndividual: cfg.Data.SaveIndividual,
		MinYear:        cfg.Partition.MinYear,
		MaxYear:        cfg.Partition.MaxYear,
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, history: history}, nil
}

// RunDaily executes one daily pipeline run.
func (a *Application) RunDaily(ctx context.Context, lookbackDays int) error {
	return a.pipeline.RunDaily(ctx, lookbackDays)
}

// RunBackfill re-extracts the entire corpus.
func (a *Application) RunBackfill(ctx context.Context) error {
	return a.pipeline.RunBackfill(ctx)
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}
