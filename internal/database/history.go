package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/fomapcheck/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "history.db"

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// HistoryDB provides SQLite-based storage for run history.
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

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the given directory.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping os.ErrNotExist is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("failed to open history database %s: %w", dbPath, err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
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

// Path returns the database file path.
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
	-- One row per check run; summary_json holds the totals without files
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		maps_dir TEXT NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		files_found INTEGER NOT NULL DEFAULT 0,
		changes INTEGER NOT NULL DEFAULT 0,
		invalid_objects INTEGER NOT NULL DEFAULT 0,
		files_failed INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per map file processed in a run
	CREATE TABLE IF NOT EXISTS run_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		objects INTEGER NOT NULL DEFAULT 0,
		applied INTEGER NOT NULL DEFAULT 0,
		digest_before TEXT,
		digest_after TEXT,
		error TEXT,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		changes_json TEXT,
		invalid_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
	CREATE INDEX IF NOT EXISTS idx_run_files_path ON run_files(path);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a run and its per-file results in one transaction.
func (hdb *HistoryDB) SaveRun(ctx context.Context, summary *model.RunSummary) (err error) {
	totals := *summary
	totals.Files = nil
	summaryJSON, err := json.Marshal(totals)
	if err != nil {
		return fmt.Errorf("failed to serialize run summary: %w", err)
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

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, started_at, maps_dir, dry_run, files_found, changes, invalid_objects, files_failed, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		summary.ID,
		summary.StartedAt.UTC().Format(timeLayout),
		summary.MapsDir,
		summary.DryRun,
		summary.FilesFound,
		summary.Changes,
		summary.InvalidObjects,
		summary.FilesFailed,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO run_files (run_id, path, objects, applied, digest_before, digest_after, error, duration_ns, changes_json, invalid_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range summary.Files {
		changesJSON, err := marshalOptional(f.Changes)
		if err != nil {
			return fmt.Errorf("failed to serialize changes of %s: %w", f.Path, err)
		}
		invalidJSON, err := marshalOptional(f.Invalid)
		if err != nil {
			return fmt.Errorf("failed to serialize invalid objects of %s: %w", f.Path, err)
		}

		if _, err := stmt.ExecContext(ctx,
			summary.ID,
			f.Path,
			f.Objects,
			f.Applied,
			f.DigestBefore,
			f.DigestAfter,
			f.ErrorMessage,
			int64(f.Duration),
			changesJSON,
			invalidJSON,
		); err != nil {
			return fmt.Errorf("failed to save file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, without per-file
// results. A limit of zero or less returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]*model.RunSummary, error) {
	query := `SELECT summary_json FROM runs ORDER BY started_at DESC, rowid DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.RunSummary
	for rows.Next() {
		var summaryJSON string
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		var s model.RunSummary
		if err := json.Unmarshal([]byte(summaryJSON), &s); err != nil {
			continue // Skip malformed rows
		}
		runs = append(runs, &s)
	}

	return runs, rows.Err()
}

// GetRun returns a run with its per-file results. id may be a unique
// prefix of the run ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id string) (*model.RunSummary, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT id, summary_json FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`,
		escapeLike(id)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var runID, summaryJSON string
	matches := 0
	for rows.Next() {
		matches++
		if matches > 1 {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, id)
		}
		if err := rows.Scan(&runID, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if matches == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	var s model.RunSummary
	if err := json.Unmarshal([]byte(summaryJSON), &s); err != nil {
		return nil, fmt.Errorf("failed to parse run %s: %w", runID, err)
	}

	files, err := hdb.runFiles(ctx, runID)
	if err != nil {
		return nil, err
	}
	s.Files = files

	return &s, nil
}

// runFiles loads the per-file results of a run in insertion order.
func (hdb *HistoryDB) runFiles(ctx context.Context, runID string) ([]*model.FileResult, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT path, objects, applied, digest_before, digest_after, error, duration_ns, changes_json, invalid_json
	FROM run_files
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get files of run %s: %w", runID, err)
	}
	defer rows.Close()

	var files []*model.FileResult
	for rows.Next() {
		var (
			f                        model.FileResult
			before, after, errMsg    sql.NullString
			changesJSON, invalidJSON sql.NullString
			durationNS               int64
		)
		if err := rows.Scan(&f.Path, &f.Objects, &f.Applied, &before, &after, &errMsg,
			&durationNS, &changesJSON, &invalidJSON); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}

		f.DigestBefore = before.String
		f.DigestAfter = after.String
		f.ErrorMessage = errMsg.String
		f.Duration = time.Duration(durationNS)

		if changesJSON.Valid && changesJSON.String != "" {
			if err := json.Unmarshal([]byte(changesJSON.String), &f.Changes); err != nil {
				return nil, fmt.Errorf("failed to parse changes of %s: %w", f.Path, err)
			}
		}
		if invalidJSON.Valid && invalidJSON.String != "" {
			if err := json.Unmarshal([]byte(invalidJSON.String), &f.Invalid); err != nil {
				return nil, fmt.Errorf("failed to parse invalid objects of %s: %w", f.Path, err)
			}
		}

		files = append(files, &f)
	}

	return files, rows.Err()
}

// DeleteRunsBefore removes runs started before t and returns how many
// were removed.
func (hdb *HistoryDB) DeleteRunsBefore(ctx context.Context, t time.Time) (int64, error) {
	cutoff := t.UTC().Format(timeLayout)

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM run_files WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to delete run files: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletion: %w", err)
	}
	return n, nil
}

// marshalOptional returns the JSON encoding of a slice, or NULL when empty.
func marshalOptional[T any](items []T) (sql.NullString, error) {
	if len(items) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// escapeLike escapes LIKE wildcards in s.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
