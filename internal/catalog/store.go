// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog records split runs and their sections in a SQLite
// database so earlier output can be listed, searched and exported.
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

	"github.com/pdiddy/pdfcraft/pkg/types"
)

const (
	// DefaultPath is the database file used when none is configured.
	DefaultPath = "pdfcraft.db"

	defaultMaxResults = 50

	// timeLayout has fixed width so created_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int
}

// Open opens or creates the catalog database at cfg.Path and ensures the
// schema exists.
func Open(cfg types.CatalogConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, path: path, maxResults: maxResults}
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

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			pdf_path TEXT NOT NULL,
			filter TEXT,
			page_count INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			level INTEGER,
			start_page INTEGER,
			end_page INTEGER,
			pdf_path TEXT,
			markdown_path TEXT,
			words INTEGER,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_title ON sections(title)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one recorded split run.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	Source    string    `json:"source" yaml:"source"`
	PDFPath   string    `json:"pdf_path" yaml:"pdf_path"`
	Filter    string    `json:"filter" yaml:"filter"`
	PageCount int       `json:"page_count" yaml:"page_count"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Sections  []Entry   `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Entry is one catalogued section.
type Entry struct {
	RunID        string `json:"run_id" yaml:"run_id"`
	Source       string `json:"source,omitempty" yaml:"source,omitempty"`
	Position     int    `json:"position" yaml:"position"`
	Title        string `json:"title" yaml:"title"`
	Level        int    `json:"level" yaml:"level"`
	StartPage    int    `json:"start_page" yaml:"start_page"`
	EndPage      int    `json:"end_page" yaml:"end_page"`
	PDFPath      string `json:"pdf_path" yaml:"pdf_path"`
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`
	Words        int    `json:"words,omitempty" yaml:"words,omitempty"`
}

// RecordRun stores run and its sections in one transaction. A run without
// an ID gets a fresh UUID; a zero CreatedAt is set to now. The stored ID is
// returned.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, pdf_path, filter, page_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.PDFPath, run.Filter, run.PageCount,
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (run_id, position, title, level, start_page, end_page, pdf_path, markdown_path, words)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range run.Sections {
		_, err := stmt.ExecContext(ctx,
			run.ID, e.Position, e.Title, e.Level, e.StartPage, e.EndPage,
			e.PDFPath, e.MarkdownPath, e.Words,
		)
		if err != nil {
			return "", fmt.Errorf("inserting section %d: %w", e.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// Runs returns the most recent runs, newest first, without their sections.
// A limit of zero uses the store default.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, pdf_path, filter, page_count, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			filter    sql.NullString
			pageCount sql.NullInt64
			created   string
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.PDFPath, &filter, &pageCount, &created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Filter = filter.String
		r.PageCount = int(pageCount.Int64)
		if t, err := time.Parse(timeLayout, created); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
