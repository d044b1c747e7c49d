// Package storage provides the SQLite implementation of Store.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/bidsift/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS classifications (
		trade TEXT NOT NULL,
		filename TEXT NOT NULL,
		predicted_trade TEXT NOT NULL,
		confidence REAL NOT NULL,
		rationale TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (trade, filename)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		documents INTEGER NOT NULL,
		fast_path INTEGER NOT NULL,
		ai_routed INTEGER NOT NULL,
		skipped INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS decisions (
		run_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		trade TEXT NOT NULL,
		route TEXT NOT NULL,
		total_score REAL NOT NULL,
		band TEXT NOT NULL,
		excluded INTEGER NOT NULL,
		boosted INTEGER NOT NULL,
		detail TEXT NOT NULL,
		PRIMARY KEY (run_id, document_id, trade),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
	`
	_, err := db.Exec(schema)
	return err
}

// classificationKey folds a filename so lookups survive case differences
// between bid set revisions.
func classificationKey(filename string) string {
	return strings.ToLower(filename)
}

// GetClassification returns the cached classification for a filename
// within a trade, with ok=false when none is stored.
func (s *SQLiteStore) GetClassification(ctx context.Context, trade, filename string) (models.ClassificationResult, bool, error) {
	var res models.ClassificationResult
	err := s.db.QueryRowContext(ctx,
		`SELECT predicted_trade, confidence, rationale
		 FROM classifications WHERE trade = ? AND filename = ?`,
		trade, classificationKey(filename),
	).Scan(&res.PredictedTrade, &res.Confidence, &res.Rationale)

	if err == sql.ErrNoRows {
		return models.ClassificationResult{}, false, nil
	}
	if err != nil {
		return models.ClassificationResult{}, false, err
	}
	res.Filename = filename
	return res, true, nil
}

// PutClassification upserts a classification for a filename within a
// trade. A fresh result replaces any previous one.
func (s *SQLiteStore) PutClassification(ctx context.Context, trade string, result models.ClassificationResult) error {
	if result.Filename == "" {
		return fmt.Errorf("classification has no filename")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO classifications (trade, filename, predicted_trade, confidence, rationale, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(trade, filename) DO UPDATE SET
			predicted_trade = excluded.predicted_trade,
			confidence = excluded.confidence,
			rationale = excluded.rationale,
			created_at = excluded.created_at`,
		trade, classificationKey(result.Filename), result.PredictedTrade, result.Confidence, result.Rationale, time.Now(),
	)
	return err
}

// SaveRun upserts a run summary.
func (s *SQLiteStore) SaveRun(ctx context.Context, summary *models.RunSummary) error {
	if summary.RunID == "" {
		return fmt.Errorf("run has no ID")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, started_at, finished_at, documents, fast_path, ai_routed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID, summary.StartedAt, summary.FinishedAt,
		summary.Documents, summary.FastPath, summary.AIRouted, summary.Skipped,
	)
	return err
}

// GetRun returns a run summary by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*models.RunSummary, error) {
	var summary models.RunSummary
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, documents, fast_path, ai_routed, skipped
		 FROM runs WHERE id = ?`, runID,
	).Scan(&summary.RunID, &summary.StartedAt, &summary.FinishedAt,
		&summary.Documents, &summary.FastPath, &summary.AIRouted, &summary.Skipped)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*models.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, documents, fast_path, ai_routed, skipped
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.RunSummary
	for rows.Next() {
		var summary models.RunSummary
		if err := rows.Scan(&summary.RunID, &summary.StartedAt, &summary.FinishedAt,
			&summary.Documents, &summary.FastPath, &summary.AIRouted, &summary.Skipped); err != nil {
			return nil, err
		}
		runs = append(runs, &summary)
	}
	return runs, rows.Err()
}

// SaveDecisions writes all decisions for a run in one transaction. The
// full decision is kept as JSON next to the queryable columns so the
// fast-path payload survives round trips.
func (s *SQLiteStore) SaveDecisions(ctx context.Context, runID string, decisions []models.Decision) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO decisions
		 (run_id, document_id, trade, route, total_score, band, excluded, boosted, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range decisions {
		detail, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to marshal decision %s: %w", d.DocumentID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			runID, d.DocumentID, d.Trade, string(d.Route),
			d.Score.TotalScore, string(d.Score.Band), d.Score.Excluded, d.Boosted,
			string(detail),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetDecisions returns all decisions for a run ordered by document ID.
func (s *SQLiteStore) GetDecisions(ctx context.Context, runID string) ([]models.Decision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT detail FROM decisions WHERE run_id = ? ORDER BY document_id, trade`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []models.Decision
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, err
		}
		var d models.Decision
		if err := json.Unmarshal([]byte(detail), &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// CountClassifications returns the total number of cached classifications.
func (s *SQLiteStore) CountClassifications(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classifications`).Scan(&count)
	return count, err
}

// CountRuns returns the total number of recorded runs.
func (s *SQLiteStore) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
