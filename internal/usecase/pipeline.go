package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ApagonScanner/internal/domain"
	"ApagonScanner/internal/ports"
	"ApagonScanner/internal/store"
)

// ErrNothingToDo signals a daily run that found no new articles and no
// staged extraction to recover. It maps to a clean exit, not a failure.
var ErrNothingToDo = errors.New("no new articles to process")

// stagedFileName is the day partition written under data/daily/<date>/
// before the final merge, the recovery point for interrupted runs.
const stagedFileName = "datos_electricos_organizados.json"

// PipelineDeps wires all driven adapters into the orchestration
// pipeline.
type PipelineDeps struct {
	Source         ports.ArticleSource
	Extractor      ports.Extractor
	Corpus         ports.CorpusRepository
	Store          ports.StoreRepository
	History        ports.HistoryRepository
	Logger         *slog.Logger
	DataDir        string
	Delay          time.Duration
	SaveIndividual bool
	MinYear        int
	MaxYear        int
	Now            func() time.Time
}

// Pipeline implements the extraction-and-accumulation workflow. A run
// owns the data directory for its duration; there is no internal
// parallelism, which doubles as a rate limit on the site and the model
// API.
type Pipeline struct {
	source         ports.ArticleSource
	extractor      ports.Extractor
	corpus         ports.CorpusRepository
	store          ports.StoreRepository
	history        ports.HistoryRepository
	logger         *slog.Logger
	dataDir        string
	delay          time.Duration
	saveIndividual bool
	minYear        int
	maxYear        int
	now            func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:         deps.Source,
		extractor:      deps.Extractor,
		corpus:         deps.Corpus,
		store:          deps.Store,
		history:        deps.History,
		logger:         deps.Logger,
		dataDir:        deps.DataDir,
		delay:          deps.Delay,
		saveIndividual: deps.SaveIndividual,
		minYear:        deps.MinYear,
		maxYear:        deps.MaxYear,
		now:            now,
	}
}

// RunDaily scrapes recent candidates within the lookback window,
// deduplicates them against everything already known, extracts,
// partitions and merges. With zero new candidates it still tries to
// merge a staged partition a prior interrupted run may have left.
func (p *Pipeline) RunDaily(ctx context.Context, lookbackDays int) error {
	p.info("starting daily run", "lookback_days", lookbackDays)

	known := p.knownLinks(ctx)

	articles, err := p.source.FetchRecent(ctx, lookbackDays, known)
	if err != nil {
		// Scraping trouble is transient by definition; whatever was
		// collected before the failure still gets processed.
		p.warn("scraping finished with errors", "error", err)
	}

	fresh := FilterNew(articles, known)
	if len(fresh) == 0 {
		p.info("no new articles found", "lookback_days", lookbackDays)
		merged, err := p.mergeStaged()
		if err != nil {
			return err
		}
		if merged {
			p.info("staged extraction from a previous run merged")
			return nil
		}
		return ErrNothingToDo
	}
	p.info("new articles to process", "count", len(fresh))

	dailyDir := p.dailyDir()
	records, err := p.extract(ctx, fresh, dailyDir)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		// Nothing extracted; the URLs stay out of the known set so the
		// next run retries them.
		p.warn("no article could be extracted this run")
		return nil
	}

	partition := p.partitioner().Partition(records)
	p.stagePartition(dailyDir, partition)

	if err := p.merge(partition); err != nil {
		return err
	}

	if err := p.corpus.Append(extractedArticles(fresh, records)); err != nil {
		p.warn("corpus not updated", "error", err)
	}
	p.saveHistory(ctx, fresh, records)

	p.info("daily run completed")
	return nil
}

// RunBackfill skips scraping and (re)extracts the entire flat corpus,
// rebuilding the store from scratch if needed. The merge stays
// idempotent, so records already present are untouched.
func (p *Pipeline) RunBackfill(ctx context.Context) error {
	p.info("starting backfill over the whole corpus")

	articles, err := p.corpus.ReadAll()
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}
	if len(articles) == 0 {
		return ErrNothingToDo
	}
	p.info("corpus loaded", "articles", len(articles))

	records, err := p.extract(ctx, articles, filepath.Join(p.dataDir, "processed"))
	if err != nil {
		return err
	}

	partition := p.partitioner().Partition(records)
	if err := p.merge(partition); err != nil {
		return err
	}
	p.saveHistory(ctx, articles, records)

	p.info("backfill completed", "extracted", len(records))
	return nil
}

func (p *Pipeline) extract(ctx context.Context, articles []domain.Article, dailyDir string) ([]domain.Record, error) {
	artifactDir := ""
	if p.saveIndividual {
		artifactDir = dailyDir
	}
	batch := NewBatchProcessor(p.extractor, RateLimiter{Delay: p.delay}, artifactDir, p.logger)
	return batch.Process(ctx, articles)
}

func (p *Pipeline) merge(partition store.Partition) error {
	current, err := p.store.Load()
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	added := current.Merge(partition)
	if err := p.store.Save(current); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	p.info("store merged", "added", added, "total", current.Len())
	return nil
}

// mergeStaged looks for a day partition a previous interrupted run left
// under today's daily directory and merges it. Returns whether a staged
// file was found and merged.
func (p *Pipeline) mergeStaged() (bool, error) {
	dailyDir := p.dailyDir()
	path := filepath.Join(dailyDir, stagedFileName)

	if _, err := os.Stat(path); err != nil {
		// The extractor may have written under a different name; take
		// any day-level JSON as the original pipeline did.
		matches, _ := filepath.Glob(filepath.Join(dailyDir, "*.json"))
		if len(matches) == 0 {
			return false, nil
		}
		path = matches[0]
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		p.warn("staged partition unreadable", "path", path, "error", err)
		return false, nil
	}

	var partition store.Partition
	if err := json.Unmarshal(raw, &partition); err != nil {
		p.warn("staged partition corrupt", "path", path, "error", err)
		return false, nil
	}

	p.info("staged partition found", "path", path)
	if err := p.merge(partition); err != nil {
		return false, err
	}
	return true, nil
}

// stagePartition writes the freshly partitioned batch under the daily
// directory before the merge, so a crash between extraction and merge
// loses nothing. Best effort: staging trouble never fails the run.
func (p *Pipeline) stagePartition(dailyDir string, partition store.Partition) {
	if err := os.MkdirAll(dailyDir, 0o755); err != nil {
		p.warn("daily directory not created", "path", dailyDir, "error", err)
		return
	}

	raw, err := json.MarshalIndent(partition, "", "  ")
	if err != nil {
		p.warn("day partition not staged", "error", err)
		return
	}
	path := filepath.Join(dailyDir, stagedFileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		p.warn("day partition not staged", "path", path, "error", err)
	}
}

// knownLinks unions every URL the system has already seen: the flat
// corpus, the store itself and the history index.
func (p *Pipeline) knownLinks(ctx context.Context) map[string]bool {
	known := make(map[string]bool)

	if p.corpus != nil {
		fromCorpus, err := p.corpus.KnownLinks()
		if err != nil {
			p.warn("corpus links unavailable", "error", err)
		}
		for link := range fromCorpus {
			known[link] = true
		}
	}

	if current, err := p.store.Load(); err == nil {
		for link := range current.KnownLinks() {
			known[link] = true
		}
	}

	if p.history != nil {
		fromHistory, err := p.history.KnownLinks(ctx)
		if err != nil {
			p.warn("history links unavailable", "error", err)
		}
		for link := range fromHistory {
			known[link] = true
		}
	}

	return known
}

func (p *Pipeline) saveHistory(ctx context.Context, articles []domain.Article, records []domain.Record) {
	if p.history == nil {
		return
	}

	titles := make(map[string]string, len(articles))
	for _, article := range articles {
		titles[article.URL] = article.Title
	}

	for _, record := range records {
		if err := p.history.SaveProcessed(ctx, record, titles[record.Link]); err != nil {
			p.warn("history not updated", "enlace", record.Link, "error", err)
		}
	}
}

func (p *Pipeline) partitioner() store.Partitioner {
	return store.Partitioner{MinYear: p.minYear, MaxYear: p.maxYear, Logger: p.logger}
}

func (p *Pipeline) dailyDir() string {
	return filepath.Join(p.dataDir, "daily", p.now().Format("2006-01-02"))
}

// extractedArticles keeps only the raw articles whose extraction
// succeeded, so failed ones never enter the known set and are retried
// on the next run.
func extractedArticles(articles []domain.Article, records []domain.Record) []domain.Article {
	succeeded := make(map[string]bool, len(records))
	for _, record := range records {
		succeeded[record.Link] = true
	}

	kept := make([]domain.Article, 0, len(records))
	for _, article := range articles {
		if succeeded[article.URL] {
			kept = append(kept, article)
		}
	}
	return kept
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
