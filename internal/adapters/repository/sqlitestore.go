package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register the sqlite driver

	"github.com/okian/rumorboard/internal/domain/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS mentions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  player TEXT NOT NULL,
  date TEXT NOT NULL,
  snippet TEXT NOT NULL,
  source_url TEXT NOT NULL DEFAULT '',
  outlet TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_mentions_player ON mentions(player);
CREATE TABLE IF NOT EXISTS dataset (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  saved_at TEXT NOT NULL,
  records INTEGER NOT NULL
);`

// SQLiteStore keeps records in a SQLite database in WAL mode. Save replaces
// the dataset inside one transaction.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	o := newOptions(opts)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create dir %s: %w", ErrUnavailable, dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnavailable, path, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, p, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: init schema: %w", ErrUnavailable, err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Backend implements Store.
func (s *SQLiteStore) Backend() string { return BackendSQLite }

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, records []model.MentionRecord) (err error) {
	start := time.Now()
	defer func() { observe(BackendSQLite, "save", start, len(records), err) }()

	if err := validate(records); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM mentions`); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrUnavailable, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO mentions (player, date, snippet, source_url, outlet) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare: %w", ErrUnavailable, err)
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Player, model.FormatDate(model.Day(r.Date)), r.Snippet, r.SourceURL, r.Outlet); err != nil {
			return fmt.Errorf("%w: insert: %w", ErrUnavailable, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dataset (id, saved_at, records) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at, records = excluded.records`,
		time.Now().UTC().Format(time.RFC3339), len(records),
	); err != nil {
		return fmt.Errorf("%w: mark dataset: %w", ErrUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrUnavailable, err)
	}
	return nil
}

// Load implements Store. The read runs in one transaction so it sees a
// single committed dataset.
func (s *SQLiteStore) Load(ctx context.Context) (records []model.MentionRecord, err error) {
	start := time.Now()
	defer func() { observe(BackendSQLite, "load", start, len(records), err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	var saved string
	err = tx.QueryRowContext(ctx, `SELECT saved_at FROM dataset WHERE id = 1`).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read dataset: %w", ErrUnavailable, err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT player, date, snippet, source_url, outlet FROM mentions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.MentionRecord, 0)
	for rows.Next() {
		var r model.MentionRecord
		var date string
		if err := rows.Scan(&r.Player, &date, &r.Snippet, &r.SourceURL, &r.Outlet); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrMalformed, err)
		}
		if r.Date, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %w", ErrUnavailable, err)
	}
	return out, nil
}
