package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/japaniel/bananadict/pkg/config"
	"github.com/japaniel/bananadict/pkg/db"
	"github.com/japaniel/bananadict/pkg/ingest"
	"github.com/japaniel/bananadict/pkg/logging"
)

type options struct {
	configPath string
	dbPath     string
	csvDir     string
	dryRun     bool
	workers    int
	listPath   string
	listName   string
	importCSV  string
	dictID     int64
	lookup     string
	random     int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to YAML config (default $CONFIG_PATH or ./bananadict.yaml)")
	flag.StringVar(&opts.dbPath, "db", "", "Path to SQLite database (overrides config)")
	flag.StringVar(&opts.csvDir, "csv-dir", "", "Directory for <list>-preprocessed.csv exports (overrides config)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Resolve and export without writing the database")
	flag.IntVar(&opts.workers, "workers", 0, "Number of word lists processed concurrently (overrides config)")
	flag.StringVar(&opts.listPath, "list", "", "Process only this lexicon JSON file instead of the configured lists")
	flag.StringVar(&opts.listName, "name", "", "Dictionary name for -list (default derived from the file name)")
	flag.StringVar(&opts.importCSV, "import-csv", "", "Load a preprocessed CSV into the database")
	flag.Int64Var(&opts.dictID, "dict-id", 0, "Dictionary id for -import-csv, -lookup and -random (0 = CSV column / selected dictionaries)")
	flag.StringVar(&opts.lookup, "lookup", "", "Print the definitions of a word")
	flag.IntVar(&opts.random, "random", 0, "Print a random word of this many letters")
	flag.Parse()

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("bananadict failed", slog.Any("error", err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}

	logger := logging.New(cfg.Log)

	if cfg.Ingest.DryRun && opts.importCSV == "" && opts.lookup == "" && opts.random == 0 {
		ig := newIngester(cfg, nil, logger)
		results, err := ig.Ingest(ctx, cfg.WordLists)
		printResults(results)
		return err
	}

	conn, err := db.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Debug("database ready", slog.String("path", cfg.Database.Path))

	switch {
	case opts.importCSV != "":
		n, err := newIngester(cfg, conn, logger).ImportCSV(ctx, opts.importCSV, opts.dictID)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d rows from %s.\n", n, opts.importCSV)
		return nil

	case opts.lookup != "":
		w, err := db.LookupWord(conn, opts.lookup, opts.dictID)
		if errors.Is(err, db.ErrNotFound) {
			fmt.Printf("%s: no definitions found.\n", strings.ToLower(opts.lookup))
			return nil
		}
		if err != nil {
			return err
		}
		printWord(w)
		return nil

	case opts.random > 0:
		w, err := db.RandomWord(conn, opts.random, opts.dictID)
		if err != nil {
			return err
		}
		printWord(w)
		return nil
	}

	results, err := newIngester(cfg, conn, logger).Ingest(ctx, cfg.WordLists)
	printResults(results)
	if err != nil {
		return err
	}
	fmt.Println("Processing complete.")
	return nil
}

// applyFlags lets explicitly set flags override the loaded configuration.
func applyFlags(cfg *config.Config, opts options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.Database.Path = opts.dbPath
		case "csv-dir":
			cfg.Ingest.CSVDir = opts.csvDir
		case "dry-run":
			cfg.Ingest.DryRun = opts.dryRun
		case "workers":
			cfg.Ingest.Workers = opts.workers
		}
	})

	if opts.listPath != "" {
		name := opts.listName
		if name == "" {
			name = config.Slugify(opts.listPath)
		}
		cfg.WordLists = []config.WordList{{
			Name:     name,
			Slug:     config.Slugify(opts.listPath),
			Path:     opts.listPath,
			Selected: true,
		}}
	}
}

func newIngester(cfg *config.Config, conn *sql.DB, logger *slog.Logger) *ingest.Ingester {
	ig := ingest.NewIngester(conn, logger)
	ig.Workers = cfg.Ingest.Workers
	ig.BatchSize = cfg.Ingest.BatchSize
	ig.CSVDir = cfg.Ingest.CSVDir
	ig.DryRun = cfg.Ingest.DryRun
	return ig
}

func printResults(results []ingest.ListResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%-32s FAILED: %v\n", r.List.Name, r.Err)
			continue
		}
		fmt.Printf("%-32s dict %d: %d rows (%d roots, %d single, %d multi, %d unresolved), %d written in %v\n",
			r.List.Name, r.DictionaryID, r.Rows,
			r.Stats.Roots, r.Stats.Single, r.Stats.Multi, r.Stats.Unresolved+r.Stats.MultiUnresolved,
			r.Written, r.Duration.Round(time.Millisecond))
		if r.CSVPath != "" {
			fmt.Printf("%-32s csv: %s\n", "", r.CSVPath)
		}
	}
}

func printWord(w db.Word) {
	fmt.Println(w.Name)
	for _, d := range w.Definitions {
		fmt.Printf("  %s: %s\n", d.LongPOS(), d.DisplayText())
	}
}
