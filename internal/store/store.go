// Package store persists documents, per-document error counts and run
// summaries in PostgreSQL.
//
// It requires the following tables (see Schema):
//
//	CREATE TABLE documents (
//	    cord_uid  TEXT PRIMARY KEY,
//	    title     TEXT,
//	    abstract  TEXT,
//	    topic     INTEGER NOT NULL DEFAULT 0,
//	    relevance INTEGER NOT NULL DEFAULT 0
//	);
//	CREATE TABLE spelling_runs (
//	    run_id     UUID PRIMARY KEY,
//	    summary    JSONB NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE TABLE document_errors (
//	    run_id       UUID NOT NULL REFERENCES spelling_runs(run_id),
//	    cord_uid     TEXT NOT NULL,
//	    topic        INTEGER NOT NULL,
//	    relevance    INTEGER NOT NULL,
//	    total_errors INTEGER NOT NULL,
//	    PRIMARY KEY (run_id, cord_uid)
//	);
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/aggregate"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/postgres"
)

// Schema creates the tables used by Store when they do not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
    cord_uid  TEXT PRIMARY KEY,
    title     TEXT,
    abstract  TEXT,
    topic     INTEGER NOT NULL DEFAULT 0,
    relevance INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS spelling_runs (
    run_id     UUID PRIMARY KEY,
    summary    JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS document_errors (
    run_id       UUID NOT NULL REFERENCES spelling_runs(run_id),
    cord_uid     TEXT NOT NULL,
    topic        INTEGER NOT NULL,
    relevance    INTEGER NOT NULL,
    total_errors INTEGER NOT NULL,
    PRIMARY KEY (run_id, cord_uid)
);`

// Store reads and writes pipeline data in PostgreSQL.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// New creates a Store over db.
func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "spelling-store"),
	}
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// LoadDocuments returns every document ordered by cord_uid.
func (s *Store) LoadDocuments(ctx context.Context) ([]records.Document, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT cord_uid, title, abstract, topic, relevance FROM documents ORDER BY cord_uid`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []records.Document
	for rows.Next() {
		var d records.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Abstract, &d.Topic, &d.Relevance); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	s.logger.Info("documents loaded", "count", len(docs))
	return docs, nil
}

// ReplaceDocuments replaces the contents of the documents table with docs.
func (s *Store) ReplaceDocuments(ctx context.Context, docs []records.Document) error {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
			return fmt.Errorf("clearing documents: %w", err)
		}
		return postgres.CopyIn(ctx, tx, "documents",
			[]string{"cord_uid", "title", "abstract", "topic", "relevance"},
			func(yield func(values ...any) error) error {
				for _, d := range docs {
					if err := yield(d.ID, d.Title, d.Abstract, d.Topic, d.Relevance); err != nil {
						return err
					}
				}
				return nil
			},
		)
	})
	if err != nil {
		return err
	}
	s.logger.Info("documents replaced", "count", len(docs))
	return nil
}

// SaveRun stores the run summary and every per-document result in one
// transaction.
func (s *Store) SaveRun(ctx context.Context, runID string, summary aggregate.Summary, results []records.Result) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling run summary: %w", err)
	}
	start := time.Now()
	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO spelling_runs (run_id, summary, created_at) VALUES ($1, $2, $3)`,
			runID, data, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("inserting run %s: %w", runID, err)
		}
		return postgres.CopyIn(ctx, tx, "document_errors",
			[]string{"run_id", "cord_uid", "topic", "relevance", "total_errors"},
			func(yield func(values ...any) error) error {
				for _, r := range results {
					if err := yield(runID, r.ID, r.Topic, r.Relevance, r.TotalErrors); err != nil {
						return err
					}
				}
				return nil
			},
		)
	})
	if err != nil {
		return err
	}
	s.logger.Info("run saved",
		"run_id", runID,
		"documents", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// LatestSummary loads the most recent run summary. It returns "", nil, nil
// when no run has been saved.
func (s *Store) LatestSummary(ctx context.Context) (string, *aggregate.Summary, error) {
	var (
		runID string
		data  []byte
	)
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT run_id, summary FROM spelling_runs ORDER BY created_at DESC LIMIT 1`,
	).Scan(&runID, &data)
	if err == sql.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("querying latest run: %w", err)
	}
	var summary aggregate.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return "", nil, fmt.Errorf("unmarshaling run summary: %w", err)
	}
	return runID, &summary, nil
}
