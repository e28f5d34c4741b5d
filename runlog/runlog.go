// CLAUDE:SUMMARY SQLite-backed history of duplication runs: record, history, stats, bundle lookup.
// Package runlog persists the outcome of every duplication run so the CLI
// and service can answer "what ran, when, and what did it produce".
package runlog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/vvve011/duplicator/batch"
	"github.com/vvve011/duplicator/dbopen"
	"github.com/vvve011/duplicator/idgen"
)

// ErrNotFound is returned when a run ID has no row.
var ErrNotFound = errors.New("runlog: run not found")

// Schema creates the run history tables. Idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    started_at    TEXT NOT NULL,
    finished_at   TEXT NOT NULL,
    success       INTEGER NOT NULL,
    processed     INTEGER NOT NULL,
    failed        INTEGER NOT NULL,
    total_copies  INTEGER NOT NULL,
    master_path   TEXT NOT NULL DEFAULT '',
    master_sha256 TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS run_archives (
    run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    archive_name    TEXT NOT NULL,
    success         INTEGER NOT NULL,
    original_domain TEXT NOT NULL DEFAULT '',
    original_name   TEXT NOT NULL DEFAULT '',
    copies          INTEGER NOT NULL,
    error           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS run_errors (
    run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    archive TEXT NOT NULL,
    reason  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_run_archives_run ON run_archives(run_id);
`

// Run is one recorded duplication run.
type Run struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Success      bool      `json:"success"`
	Processed    int       `json:"processed"`
	Failed       int       `json:"failed"`
	TotalCopies  int       `json:"total_copies"`
	MasterPath   string    `json:"master_path,omitempty"`
	MasterSHA256 string    `json:"master_sha256,omitempty"`
}

// Stats aggregates the whole history.
type Stats struct {
	TotalRuns      int       `json:"total_runs"`
	SuccessfulRuns int       `json:"successful_runs"`
	TotalArchives  int       `json:"total_archives"`
	TotalCopies    int       `json:"total_copies"`
	LastRunAt      time.Time `json:"last_run_at,omitzero"`
}

// Store records and queries run history.
type Store struct {
	db     *sql.DB
	newID  idgen.Generator
	logger *slog.Logger
}

// Open opens (creating if needed) the run history database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	return NewStore(db, logger), nil
}

// NewStore wraps an already-opened database; the schema must be applied.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, newID: idgen.Prefixed("run_", idgen.UUIDv7()), logger: logger}
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Record persists one run and returns its ID. When the run produced a
// master bundle, its content hash is recorded alongside the path.
func (s *Store) Record(ctx context.Context, res *batch.BatchResult, startedAt, finishedAt time.Time) (string, error) {
	id := s.newID()

	sum := ""
	if res.MasterPath != "" {
		h, err := hashFile(res.MasterPath)
		if err != nil {
			s.logger.Warn("bundle hash failed", "path", res.MasterPath, "error", err)
		} else {
			sum = h
		}
	}

	err := dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, started_at, finished_at, success, processed, failed, total_copies, master_path, master_sha256)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, startedAt.UTC().Format(time.RFC3339Nano), finishedAt.UTC().Format(time.RFC3339Nano),
			boolToInt(res.Success), res.Processed, res.Failed, res.TotalCopies, res.MasterPath, sum,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, a := range res.Results {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO run_archives (run_id, archive_name, success, original_domain, original_name, copies, error)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, a.ArchiveName, boolToInt(a.Success), a.OriginalDomain, a.OriginalName, len(a.Copies), a.Error,
			); err != nil {
				return fmt.Errorf("insert archive: %w", err)
			}
		}
		for _, e := range res.Errors {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO run_errors (run_id, archive, reason) VALUES (?, ?, ?)`,
				id, e.Archive, e.Reason,
			); err != nil {
				return fmt.Errorf("insert error: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("runlog: record: %w", err)
	}
	return id, nil
}

// History returns the most recent runs, newest first. limit <= 0 means 50.
func (s *Store) History(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, success, processed, failed, total_copies, master_path, master_sha256
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("runlog: history: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run by ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, success, processed, failed, total_copies, master_path, master_sha256
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("runlog: get: %w", err)
	}
	return &r, nil
}

// Stats returns aggregate counters over the full history.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	var last sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(success), 0), COALESCE(SUM(processed + failed), 0),
		       COALESCE(SUM(total_copies), 0), MAX(started_at)
		FROM runs`).Scan(&st.TotalRuns, &st.SuccessfulRuns, &st.TotalArchives, &st.TotalCopies, &last)
	if err != nil {
		return nil, fmt.Errorf("runlog: stats: %w", err)
	}
	if last.Valid {
		if t, err := time.Parse(time.RFC3339Nano, last.String); err == nil {
			st.LastRunAt = t
		}
	}
	return st, nil
}

func scanRun(scan func(...any) error) (Run, error) {
	var r Run
	var started, finished string
	var success int
	if err := scan(&r.ID, &started, &finished, &success, &r.Processed, &r.Failed,
		&r.TotalCopies, &r.MasterPath, &r.MasterSHA256); err != nil {
		return r, err
	}
	r.Success = success != 0
	var err error
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return r, fmt.Errorf("parse started_at: %w", err)
	}
	if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return r, fmt.Errorf("parse finished_at: %w", err)
	}
	return r, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
