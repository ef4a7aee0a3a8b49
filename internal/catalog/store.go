// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite record of downloaded datasets under the
// data root, so a user can see what was fetched, when, and by which run.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/darus-fetch/pkg/types"
)

const (
	catalogDir = ".darus"
	dbFile     = "catalog.db"
)

// Store manages the catalog database.
type Store struct {
	db    *sql.DB
	path  string
	runID string
}

// Path returns the catalog location for dataRoot.
func Path(dataRoot string) string {
	return filepath.Join(dataRoot, catalogDir, dbFile)
}

// Open opens or creates the catalog at dataRoot/.darus/catalog.db and makes
// sure the schema exists.
func Open(dataRoot string) (*Store, error) {
	path := Path(dataRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file backing the store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			dataverse_url TEXT NOT NULL,
			authenticated INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS datasets (
			identifier TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id),
			title TEXT,
			slug TEXT,
			folder TEXT NOT NULL,
			file_count INTEGER NOT NULL,
			total_bytes INTEGER NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			identifier TEXT NOT NULL REFERENCES datasets(identifier) ON DELETE CASCADE,
			file_id INTEGER NOT NULL,
			path TEXT NOT NULL,
			size INTEGER NOT NULL,
			md5 TEXT,
			PRIMARY KEY (identifier, file_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_slug ON datasets(slug)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// StartRun registers a new fetch run and returns its id. Records written
// afterwards are attributed to this run.
func (s *Store) StartRun(ctx context.Context, dataverseURL string, authenticated bool) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, dataverse_url, authenticated) VALUES (?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano), dataverseURL, authenticated)
	if err != nil {
		return "", fmt.Errorf("registering run: %w", err)
	}
	s.runID = id
	return id, nil
}

// Record stores rec, replacing an earlier record of the same identifier.
func (s *Store) Record(ctx context.Context, rec types.DatasetRecord) error {
	if s.runID == "" {
		return fmt.Errorf("no run started")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE identifier = ?`, rec.Identifier); err != nil {
		return fmt.Errorf("clearing files: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (identifier, run_id, title, slug, folder, file_count, total_bytes, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(identifier) DO UPDATE SET
			run_id = excluded.run_id,
			title = excluded.title,
			slug = excluded.slug,
			folder = excluded.folder,
			file_count = excluded.file_count,
			total_bytes = excluded.total_bytes,
			fetched_at = excluded.fetched_at`,
		rec.Identifier, s.runID, rec.Title, rec.Slug, rec.Folder,
		len(rec.Files), rec.TotalBytes(), rec.FetchedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("upserting dataset: %w", err)
	}

	for _, f := range rec.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (identifier, file_id, path, size, md5) VALUES (?, ?, ?, ?, ?)`,
			rec.Identifier, f.FileID, f.Path, f.Size, f.MD5,
		); err != nil {
			return fmt.Errorf("inserting file %d: %w", f.FileID, err)
		}
	}
	return tx.Commit()
}

// Entry is a catalogued dataset together with the run that fetched it.
type Entry struct {
	RunID      string `json:"run_id" yaml:"run_id"`
	FileCount  int    `json:"file_count" yaml:"file_count"`
	TotalBytes int64  `json:"total_bytes" yaml:"total_bytes"`

	types.DatasetRecord `yaml:",inline"`
}

// List returns all catalogued datasets, most recently fetched first. File
// rows are included when withFiles is set.
func (s *Store) List(ctx context.Context, withFiles bool) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, run_id, title, slug, folder, file_count, total_bytes, fetched_at
		 FROM datasets ORDER BY fetched_at DESC, identifier`)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			fetchedAt string
		)
		if err := rows.Scan(&e.Identifier, &e.RunID, &e.Title, &e.Slug, &e.Folder,
			&e.FileCount, &e.TotalBytes, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
			e.FetchedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if withFiles {
		for i := range entries {
			files, err := s.files(ctx, entries[i].Identifier)
			if err != nil {
				return nil, err
			}
			entries[i].Files = files
		}
	}
	return entries, nil
}

func (s *Store) files(ctx context.Context, identifier string) ([]types.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_id, path, size, COALESCE(md5, '') FROM files WHERE identifier = ? ORDER BY rowid`, identifier)
	if err != nil {
		return nil, fmt.Errorf("querying files of %s: %w", identifier, err)
	}
	defer rows.Close()

	var files []types.FileRecord
	for rows.Next() {
		var f types.FileRecord
		if err := rows.Scan(&f.FileID, &f.Path, &f.Size, &f.MD5); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Deferred opens the catalog and starts a run on the first Record, so that
// nothing is created below the data root before a dataset was downloaded.
// A run that downloads nothing leaves no catalog behind.
type Deferred struct {
	DataRoot      string
	DataverseURL  string
	Authenticated bool

	store *Store
}

// Record opens the store if needed and records rec.
func (d *Deferred) Record(ctx context.Context, rec types.DatasetRecord) error {
	if d.store == nil {
		store, err := Open(d.DataRoot)
		if err != nil {
			return err
		}
		if _, err := store.StartRun(ctx, d.DataverseURL, d.Authenticated); err != nil {
			store.Close()
			return err
		}
		d.store = store
	}
	return d.store.Record(ctx, rec)
}

// Close closes the store if it was opened.
func (d *Deferred) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}
