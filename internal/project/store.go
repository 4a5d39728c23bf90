// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package project keeps a per-project SQLite catalog: which documents have
// been ingested and which reports have been generated over them.
package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	indexDir = "index"
	dbFile   = "catalog.db"
)

// Store manages the project catalog database.
type Store struct {
	db *sql.DB
}

// Document is one catalog row describing an ingested document.
type Document struct {
	Stem       string
	Title      string
	Chunks     int
	Dim        int
	IngestedAt time.Time
}

// ReportRecord is one saved report with its generation inputs.
type ReportRecord struct {
	ID        int64
	Objective string
	Questions []string
	Text      string
	Model     string
	CreatedAt time.Time
}

// Open opens or creates the catalog database at projectDir/index/catalog.db
// and creates the schema if it does not exist.
func Open(projectDir string) (*Store, error) {
	dbDir := filepath.Join(projectDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS documents (
			stem TEXT PRIMARY KEY,
			title TEXT,
			chunks INTEGER NOT NULL,
			dim INTEGER NOT NULL,
			ingested_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			objective TEXT,
			questions TEXT NOT NULL,
			report TEXT NOT NULL,
			model TEXT,
			created_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordDocument upserts the catalog row for one ingested document.
func (s *Store) RecordDocument(ctx context.Context, doc Document) error {
	at := doc.IngestedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (stem, title, chunks, dim, ingested_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(stem) DO UPDATE SET
			title=excluded.title, chunks=excluded.chunks,
			dim=excluded.dim, ingested_at=excluded.ingested_at`,
		doc.Stem, doc.Title, doc.Chunks, doc.Dim, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording document %s: %w", doc.Stem, err)
	}
	return nil
}

// ListDocuments returns all cataloged documents ordered by stem.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stem, title, chunks, dim, ingested_at FROM documents ORDER BY stem`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var at string
		if err := rows.Scan(&doc.Stem, &doc.Title, &doc.Chunks, &doc.Dim, &at); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		doc.IngestedAt, _ = time.Parse(time.RFC3339, at)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// SaveReport stores a generated report and returns its catalog ID.
func (s *Store) SaveReport(ctx context.Context, rec ReportRecord) (int64, error) {
	questionsJSON, err := json.Marshal(rec.Questions)
	if err != nil {
		return 0, fmt.Errorf("marshaling questions: %w", err)
	}
	at := rec.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (objective, questions, report, model, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.Objective, string(questionsJSON), rec.Text, rec.Model, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("saving report: %w", err)
	}
	return res.LastInsertId()
}

// ListReports returns saved reports, newest first, without the report body.
func (s *Store) ListReports(ctx context.Context) ([]ReportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, objective, questions, model, created_at FROM reports ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var recs []ReportRecord
	for rows.Next() {
		var rec ReportRecord
		var questionsJSON, at string
		if err := rows.Scan(&rec.ID, &rec.Objective, &questionsJSON, &rec.Model, &at); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		if err := json.Unmarshal([]byte(questionsJSON), &rec.Questions); err != nil {
			return nil, fmt.Errorf("parsing questions for report %d: %w", rec.ID, err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, at)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// GetReport returns one saved report with its full text.
func (s *Store) GetReport(ctx context.Context, id int64) (*ReportRecord, error) {
	var rec ReportRecord
	var questionsJSON, at string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, objective, questions, report, model, created_at FROM reports WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Objective, &questionsJSON, &rec.Text, &rec.Model, &at)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading report %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(questionsJSON), &rec.Questions); err != nil {
		return nil, fmt.Errorf("parsing questions for report %d: %w", id, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, at)
	return &rec, nil
}
