// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists export history in SQLite and provides full-text
// search over exported Markdown.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/meshintel/larkdown/pkg/types"
)

const (
	dbFile            = "history.db"
	defaultMaxItems   = 100
	defaultMaxResults = 20
)

// Store manages the export history SQLite database.
type Store struct {
	db         *sql.DB
	maxItems   int
	maxResults int
}

// NewStore opens or creates the history database at dir/history.db,
// creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxItems: maxItems, maxResults: maxResults}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exports (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id TEXT NOT NULL,
			title TEXT,
			file_path TEXT,
			exported_at TEXT NOT NULL,
			size INTEGER,
			markdown TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exports_doc_id ON exports(doc_id)`,
		`CREATE INDEX IF NOT EXISTS idx_exports_exported_at ON exports(exported_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='exports_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE exports_fts USING fts5(title, markdown, content=exports, content_rowid=rowid)`,
			`CREATE TRIGGER exports_ai AFTER INSERT ON exports BEGIN
				INSERT INTO exports_fts(rowid, title, markdown) VALUES (new.rowid, new.title, new.markdown);
			END`,
			`CREATE TRIGGER exports_ad AFTER DELETE ON exports BEGIN
				INSERT INTO exports_fts(exports_fts, rowid, title, markdown) VALUES('delete', old.rowid, old.title, old.markdown);
			END`,
			`CREATE TRIGGER exports_au AFTER UPDATE ON exports BEGIN
				INSERT INTO exports_fts(exports_fts, rowid, title, markdown) VALUES('delete', old.rowid, old.title, old.markdown);
				INSERT INTO exports_fts(rowid, title, markdown) VALUES (new.rowid, new.title, new.markdown);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record appends one export to the history and prunes the oldest rows past
// the retention cap. The Markdown body is stored for full-text search.
func (s *Store) Record(ctx context.Context, rec types.ExportRecord, markdown string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	exportedAt := rec.ExportedAt
	if exportedAt.IsZero() {
		exportedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO exports (doc_id, title, file_path, exported_at, size, markdown)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.DocID, rec.Title, rec.FilePath,
		exportedAt.UTC().Format(time.RFC3339Nano), rec.Size, markdown,
	)
	if err != nil {
		return fmt.Errorf("inserting export record: %w", err)
	}

	// Retention: keep only the newest maxItems rows.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM exports WHERE rowid NOT IN (
			SELECT rowid FROM exports ORDER BY rowid DESC LIMIT ?
		)`, s.maxItems,
	)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}

	return tx.Commit()
}

// Recent returns up to limit history records, newest first. A non-positive
// limit falls back to the configured default.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.ExportRecord, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, title, file_path, exported_at, size
		 FROM exports ORDER BY rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Search runs an FTS5 match over titles and Markdown bodies, newest first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.ExportRecord, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.doc_id, e.title, e.file_path, e.exported_at, e.size
		 FROM exports_fts f
		 JOIN exports e ON e.rowid = f.rowid
		 WHERE exports_fts MATCH ?
		 ORDER BY e.rowid DESC LIMIT ?`, query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Clear removes all history records.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM exports`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// ExportYAML writes the full history to path as YAML, newest first.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	records, err := s.Recent(ctx, s.maxItems)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the full history to path as indented JSON, newest first.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	records, err := s.Recent(ctx, s.maxItems)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func scanRecords(rows *sql.Rows) ([]types.ExportRecord, error) {
	var records []types.ExportRecord
	for rows.Next() {
		var rec types.ExportRecord
		var exportedAt string
		if err := rows.Scan(&rec.DocID, &rec.Title, &rec.FilePath, &exportedAt, &rec.Size); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, exportedAt); err == nil {
			rec.ExportedAt = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}
