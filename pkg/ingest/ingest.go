// Package ingest turns lexicon dumps into dictionary rows: each configured
// word list is loaded, resolved, optionally exported to CSV and written to
// the database.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/japaniel/bananadict/pkg/config"
	"github.com/japaniel/bananadict/pkg/db"
	"github.com/japaniel/bananadict/pkg/lexicon"
	"github.com/japaniel/bananadict/pkg/resolve"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close() error
}

// Ingester resolves word lists and stores the resulting rows.
type Ingester struct {
	DB *sql.DB
	// Logger receives progress and summary records. nil means no logging.
	Logger *slog.Logger

	// Concurrency settings
	Workers   int
	BatchSize int

	// CSVDir, when set, receives <slug>-preprocessed.csv for every list.
	CSVDir string
	// DryRun resolves and exports without touching the database.
	DryRun bool

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates a new Ingester.
func NewIngester(conn *sql.DB, logger *slog.Logger) *Ingester {
	return &Ingester{
		DB:        conn,
		Logger:    logger,
		Workers:   2,
		BatchSize: 500,
	}
}

// ListResult reports what happened to one word list.
type ListResult struct {
	List         config.WordList
	DictionaryID int64
	Stats        resolve.Stats
	// Rows is the number of rows produced by resolution.
	Rows int
	// Written is the number of rows committed to the database.
	Written  int
	CSVPath  string
	Duration time.Duration
	Err      error
}

func (ig *Ingester) logger() *slog.Logger {
	if ig.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return ig.Logger
}

// Ingest processes every list. Dictionaries are registered in list order
// before any work starts, so ids follow configuration order; in dry-run mode
// a list's id is its position plus one. Lists are then resolved concurrently.
// Results are returned in list order; the error joins every per-list failure.
func (ig *Ingester) Ingest(ctx context.Context, lists []config.WordList) ([]ListResult, error) {
	runID := uuid.NewString()
	log := ig.logger().With(slog.String("run_id", runID))
	log.InfoContext(ctx, "ingest started", slog.Int("lists", len(lists)), slog.Bool("dry_run", ig.DryRun))

	results := make([]ListResult, len(lists))
	for i, wl := range lists {
		results[i].List = wl
		if ig.DryRun {
			results[i].DictionaryID = int64(i + 1)
			continue
		}
		id, err := db.EnsureDictionary(ig.DB, wl.Name, wl.Description, wl.Selected)
		if err != nil {
			return nil, fmt.Errorf("register dictionary %s: %w", wl.Name, err)
		}
		results[i].DictionaryID = id
	}

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(ig.Workers, len(lists))
	} else {
		wp = NewWorkerPool(ig.Workers, len(lists))
	}
	wp.Start(ctx)

	processed := make([]bool, len(results))
	for i := range results {
		res := &results[i]
		job := func(ctx context.Context) error {
			processed[i] = true
			ig.processList(ctx, log, res)
			return res.Err
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			for j := i; j < len(results); j++ {
				results[j].Err = fmt.Errorf("submit %s: %w", results[j].List.Name, err)
			}
			break
		}
	}

	// Per-list errors are collected from results below.
	_ = wp.Close()

	var errs []error
	for i := range results {
		if !processed[i] && results[i].Err == nil {
			// Workers stop picking up jobs once ctx is done.
			cause := ctx.Err()
			if cause == nil {
				cause = ErrPoolClosed
			}
			results[i].Err = fmt.Errorf("%s: not processed: %w", results[i].List.Name, cause)
		}
		if results[i].Err != nil {
			errs = append(errs, results[i].Err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		log.ErrorContext(ctx, "ingest finished with errors", slog.Int("failed", len(errs)), slog.Any("error", err))
	} else {
		log.InfoContext(ctx, "ingest finished")
	}
	return results, err
}

// processList runs one list through download, resolution, export and
// storage, filling in res.
func (ig *Ingester) processList(ctx context.Context, log *slog.Logger, res *ListResult) {
	start := time.Now()
	wl := res.List
	log = log.With(slog.String("list", wl.Slug))
	defer func() { res.Duration = time.Since(start) }()

	fail := func(stage string, err error) {
		res.Err = fmt.Errorf("%s: %s: %w", wl.Name, stage, err)
		log.ErrorContext(ctx, "list failed", slog.String("stage", stage), slog.Any("error", err))
	}

	if err := lexicon.EnsureWordList(ctx, wl.Path, wl.URL); err != nil {
		fail("fetch", err)
		return
	}
	entries, err := lexicon.LoadWordList(wl.Path)
	if err != nil {
		fail("load", err)
		return
	}
	out, err := resolve.Transform(entries)
	if err != nil {
		fail("resolve", err)
		return
	}
	res.Stats = out.Stats
	res.Rows = len(out.Rows)
	logStats(ctx, log, out.Stats)

	rows := toWordRows(out.Rows, res.DictionaryID)

	if ig.CSVDir != "" {
		path := filepath.Join(ig.CSVDir, wl.Slug+"-preprocessed.csv")
		if err := WriteCSVFile(path, rows); err != nil {
			fail("export", err)
			return
		}
		res.CSVPath = path
		log.InfoContext(ctx, "csv written", slog.String("path", path))
	}

	if ig.DryRun {
		return
	}
	written, err := ig.replace(ctx, []int64{res.DictionaryID}, rows)
	res.Written = written
	if err != nil {
		fail("store", err)
		return
	}
	log.InfoContext(ctx, "list stored",
		slog.Int64("dictid", res.DictionaryID),
		slog.Int("written", written),
		slog.Duration("elapsed", time.Since(start)),
	)
}

func logStats(ctx context.Context, log *slog.Logger, s resolve.Stats) {
	log.InfoContext(ctx, "list resolved",
		slog.Int("entries", s.Input),
		slog.Int("roots", s.Roots),
		slog.Int("unresolved", s.Unresolved),
		slog.Int("single", s.Single),
		slog.Int("multi", s.Multi),
		slog.Int("multi_unresolved", s.MultiUnresolved),
	)
	if len(s.UnresolvedRoots) > 0 {
		sample := s.UnresolvedRoots
		if len(sample) > 10 {
			sample = sample[:10]
		}
		log.WarnContext(ctx, "roots missing from lexicon",
			slog.Int("count", len(s.UnresolvedRoots)),
			slog.Any("sample", sample),
		)
	}
	for rule, n := range s.Rules {
		log.DebugContext(ctx, "multi-root rule", slog.String("rule", string(rule)), slog.Int("count", n))
	}
}

func toWordRows(rows []resolve.Row, dictID int64) []db.WordRow {
	out := make([]db.WordRow, len(rows))
	for i, r := range rows {
		out[i] = db.WordRow{Word: r.Word, Definition: r.Definition, POS: r.POS, DictionaryID: dictID}
	}
	return out
}

// replace clears the given dictionaries and writes rows in one transaction,
// so a failed reload leaves the previous rows untouched. It returns the
// number of rows committed.
func (ig *Ingester) replace(ctx context.Context, dictIDs []int64, rows []db.WordRow) (int, error) {
	tx, err := ig.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reload tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, id := range dictIDs {
		if _, err := db.ClearWords(tx, id); err != nil {
			return 0, err
		}
	}

	bw := NewTxBatchWriter(tx, ig.BatchSize)
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			_ = bw.Close()
			return 0, err
		}
		if err := bw.Add(r); err != nil {
			_ = bw.Close()
			return 0, err
		}
	}
	if err := bw.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reload: %w", err)
	}
	return bw.Written(), nil
}

// ImportCSV loads a preprocessed CSV into the database. A positive dictID
// overrides the dictid column of every row; existing rows of each target
// dictionary are replaced. The import is all or nothing.
func (ig *Ingester) ImportCSV(ctx context.Context, path string, dictID int64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", path, err)
	}

	var targets []int64
	seen := make(map[int64]bool)
	for i := range rows {
		if dictID > 0 {
			rows[i].DictionaryID = dictID
		}
		if id := rows[i].DictionaryID; !seen[id] {
			seen[id] = true
			targets = append(targets, id)
		}
	}

	written, err := ig.replace(ctx, targets, rows)
	if err != nil {
		return written, fmt.Errorf("import %s: %w", path, err)
	}
	ig.logger().InfoContext(ctx, "csv imported", slog.String("path", path), slog.Int("written", written))
	return written, nil
}
