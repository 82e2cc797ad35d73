package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wordfetch/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "wordfetch.db"

// HistoryDB provides SQLite-based storage for finished runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw prevents creating new files, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per saved run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed_url TEXT NOT NULL,
		host TEXT NOT NULL,
		depth INTEGER NOT NULL,
		min_length INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages_visited INTEGER NOT NULL,
		pages_failed INTEGER NOT NULL,
		total_words INTEGER NOT NULL,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_host ON runs(host);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Ranked words of each run
	CREATE TABLE IF NOT EXISTS words (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		rank INTEGER NOT NULL,
		word TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, rank)
	);

	CREATE INDEX IF NOT EXISTS idx_words_word ON words(word);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a run and its ranking in one transaction.
// Saving a run with an existing ID replaces the earlier copy.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (err error) {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM words WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to clear words: %w", err)
	}

	query := `
	INSERT INTO runs (id, seed_url, host, depth, min_length, started_at, finished_at,
		pages_visited, pages_failed, total_words, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		seed_url = excluded.seed_url,
		host = excluded.host,
		depth = excluded.depth,
		min_length = excluded.min_length,
		started_at = excluded.started_at,
		finished_at = excluded.finished_at,
		pages_visited = excluded.pages_visited,
		pages_failed = excluded.pages_failed,
		total_words = excluded.total_words,
		run_json = excluded.run_json
	`
	_, err = tx.ExecContext(ctx, query,
		run.ID,
		run.SeedURL,
		run.Host,
		run.Depth,
		run.MinLength,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		len(run.Pages),
		len(run.Failures),
		run.TotalWords,
		string(runJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO words (run_id, rank, word, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare word insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range run.Ranking {
		if _, err = stmt.ExecContext(ctx, run.ID, i+1, e.Word, e.Count); err != nil {
			return fmt.Errorf("failed to save word %q: %w", e.Word, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a saved run by ID.
// It returns nil without error when no run has that ID.
// The raw word sequence is not archived, so the returned run has no Words;
// TotalWords and Ranking are intact.
func (hdb *HistoryDB) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var runJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT run_json FROM runs WHERE id = ?`, id).Scan(&runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run model.Run
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}

	return &run, nil
}

// RunSummary contains summary information about a saved run.
// This is used for listing history without loading the full run.
type RunSummary struct {
	ID           string
	SeedURL      string
	Host         string
	Depth        int
	MinLength    int
	StartedAt    time.Time
	FinishedAt   time.Time
	PagesVisited int
	PagesFailed  int
	TotalWords   int
}

// Duration returns how long the run took.
func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// ListRuns returns summaries of saved runs, newest first.
// An empty host lists every host. A non-positive limit returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, host string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, seed_url, host, depth, min_length, started_at, finished_at,
		pages_visited, pages_failed, total_words
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if host != "" {
		query += " AND host = ?"
		args = append(args, host)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	results := make([]RunSummary, 0)
	for rows.Next() {
		var s RunSummary
		var startedAt, finishedAt string

		err := rows.Scan(
			&s.ID,
			&s.SeedURL,
			&s.Host,
			&s.Depth,
			&s.MinLength,
			&startedAt,
			&finishedAt,
			&s.PagesVisited,
			&s.PagesFailed,
			&s.TotalWords,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		s.StartedAt = parseTimestamp(startedAt)
		s.FinishedAt = parseTimestamp(finishedAt)
		results = append(results, s)
	}

	return results, rows.Err()
}

// ListHosts returns every host with at least one saved run, sorted.
func (hdb *HistoryDB) ListHosts(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT host FROM runs ORDER BY host`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	hosts := make([]string, 0)
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, host)
	}

	return hosts, rows.Err()
}

// TopWords returns the highest ranked words of a saved run.
// A non-positive limit returns the whole ranking.
func (hdb *HistoryDB) TopWords(ctx context.Context, id string, limit int) ([]model.RankedEntry, error) {
	query := `SELECT word, count FROM words WHERE run_id = ? ORDER BY rank`
	args := []any{id}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top words: %w", err)
	}
	defer rows.Close()

	entries := make([]model.RankedEntry, 0)
	for rows.Next() {
		var e model.RankedEntry
		if err := rows.Scan(&e.Word, &e.Count); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// DeleteRun removes a saved run and its words.
// It reports whether a run was deleted.
func (hdb *HistoryDB) DeleteRun(ctx context.Context, id string) (bool, error) {
	if _, err := hdb.db.ExecContext(ctx, `DELETE FROM words WHERE run_id = ?`, id); err != nil {
		return false, fmt.Errorf("failed to delete words: %w", err)
	}
	result, err := hdb.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// timestampFormat is how run times are stored. It sorts lexically in
// chronological order for UTC times.
const timestampFormat = "2006-01-02T15:04:05.000000000Z"

// formatTimestamp renders t in UTC for storage.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampFormat)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampFormat,
	"2006-01-02 15:04:05", // SQLite default datetime format
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
