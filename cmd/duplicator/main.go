// CLAUDE:SUMMARY CLI entry point for duplicator — batch website duplication with inspect, history, and stats modes.
// Command duplicator duplicates packaged websites under fresh domains.
//
// Usage:
//
//	duplicator -copies 3 -zone .info -out ./out site1.zip site2.rar
//	duplicator -inspect site.zip                # detection report and exit
//	duplicator -db runs.db -history             # recent runs and exit
//	duplicator -db runs.db -stats               # aggregate stats and exit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vvve011/duplicator/batch"
	"github.com/vvve011/duplicator/domsynth"
	"github.com/vvve011/duplicator/runlog"
)

func main() {
	zoneFlag := flag.String("zone", ".com", "target zone for synthesized domains: .com or .info")
	copies := flag.Int("copies", 1, "copies to produce per archive")
	outDir := flag.String("out", ".", "directory for the master bundle")
	workDir := flag.String("work", "", "working directory for temp extraction (default system temp)")
	lexicon := flag.String("lexicon", "", "path to YAML lexicon for domain synthesis")
	dbPath := flag.String("db", "", "path to run history SQLite database")
	inspect := flag.String("inspect", "", "inspect one archive and exit")
	history := flag.Bool("history", false, "print recent runs and exit (requires -db)")
	stats := flag.Bool("stats", false, "print run statistics and exit (requires -db)")
	limit := flag.Int("limit", 20, "max runs for -history")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, options{
		zone:    *zoneFlag,
		copies:  *copies,
		outDir:  *outDir,
		workDir: *workDir,
		lexicon: *lexicon,
		dbPath:  *dbPath,
		inspect: *inspect,
		history: *history,
		stats:   *stats,
		limit:   *limit,
	}, flag.Args()); err != nil {
		logger.Error("duplicator: fatal", "error", err)
		os.Exit(1)
	}
}

type options struct {
	zone    string
	copies  int
	outDir  string
	workDir string
	lexicon string
	dbPath  string
	inspect string
	history bool
	stats   bool
	limit   int
}

func run(ctx context.Context, logger *slog.Logger, opts options, archives []string) error {
	// One-shot: history / stats from the run log.
	if opts.history || opts.stats {
		if opts.dbPath == "" {
			return fmt.Errorf("-history/-stats require -db")
		}
		store, err := runlog.Open(opts.dbPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		if opts.history {
			runs, err := store.History(ctx, opts.limit)
			if err != nil {
				return err
			}
			return printJSON(runs)
		}
		st, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(st)
	}

	orch, err := batch.New(batch.Config{
		WorkDir:     opts.workDir,
		LexiconPath: opts.lexicon,
		Logger:      logger,
		Progress:    func(msg string) { fmt.Fprintln(os.Stderr, msg) },
	})
	if err != nil {
		return err
	}

	// One-shot: inspect.
	if opts.inspect != "" {
		report, err := orch.Inspect(ctx, opts.inspect)
		if err != nil {
			return fmt.Errorf("inspect: %w", err)
		}
		return printJSON(report)
	}

	if len(archives) == 0 {
		fmt.Fprintln(os.Stderr, "usage: duplicator [-zone .com|.info] [-copies N] [-out dir] archive.zip ...")
		os.Exit(1)
	}
	zone, err := domsynth.ParseZone(opts.zone)
	if err != nil {
		return err
	}
	if opts.copies < 1 {
		return fmt.Errorf("-copies must be >= 1")
	}

	started := time.Now()
	result := orch.ProcessMany(ctx, archives, opts.copies, zone, opts.outDir)
	finished := time.Now()

	if opts.dbPath != "" {
		store, err := runlog.Open(opts.dbPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Record(ctx, result, started, finished)
		if err != nil {
			logger.Warn("run not recorded", "error", err)
		} else {
			logger.Info("run recorded", "run_id", id)
		}
	}

	if err := printJSON(result); err != nil {
		return err
	}
	fmt.Fprint(os.Stderr, result.Summary())

	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
