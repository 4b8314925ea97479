package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"plandrift/pkg/logging"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS plans (
	plan_id          TEXT PRIMARY KEY,
	repo_name        TEXT NOT NULL,
	timestamp        INTEGER NOT NULL,
	plan_content     TEXT NOT NULL,
	drift_detected   INTEGER NOT NULL,
	changes_detected INTEGER NOT NULL,
	change_summary   TEXT NOT NULL,
	risk_level       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_plans_repo_timestamp ON plans(repo_name, timestamp);
`

// SQLiteStore persists records in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, logger logging.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store requires a database path")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("Opened sqlite plan store at %s", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Save upserts the record.
func (s *SQLiteStore) Save(ctx context.Context, record *PlanRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	summary, err := json.Marshal(record.ChangeSummary)
	if err != nil {
		return fmt.Errorf("failed to encode change summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO plans
			(plan_id, repo_name, timestamp, plan_content, drift_detected, changes_detected, change_summary, risk_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.PlanID,
		record.RepoName,
		record.Timestamp.UTC().UnixNano(),
		record.PlanContent,
		record.DriftDetected,
		record.ChangesDetected,
		string(summary),
		record.RiskLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan %s: %w", record.PlanID, err)
	}
	return nil
}

// Get loads one record by id.
func (s *SQLiteStore) Get(ctx context.Context, planID string) (*PlanRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT plan_id, repo_name, timestamp, plan_content, drift_detected, changes_detected, change_summary, risk_level
		FROM plans WHERE plan_id = ?`, planID)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}
	return record, nil
}

// ListByRepo returns the newest records for repo first.
func (s *SQLiteStore) ListByRepo(ctx context.Context, repo string, limit int) ([]*PlanRecord, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT plan_id, repo_name, timestamp, plan_content, drift_detected, changes_detected, change_summary, risk_level
		FROM plans WHERE repo_name = ?
		ORDER BY timestamp DESC, plan_id DESC
		LIMIT ?`, repo, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans for %s: %w", repo, err)
	}
	defer rows.Close()

	var out []*PlanRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read plan row: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// Close closes the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*PlanRecord, error) {
	var (
		r       PlanRecord
		nanos   int64
		summary string
	)
	if err := row.Scan(&r.PlanID, &r.RepoName, &nanos, &r.PlanContent, &r.DriftDetected,
		&r.ChangesDetected, &summary, &r.RiskLevel); err != nil {
		return nil, err
	}

	r.Timestamp = time.Unix(0, nanos).UTC()
	if err := json.Unmarshal([]byte(summary), &r.ChangeSummary); err != nil {
		return nil, fmt.Errorf("corrupt change summary for %s: %w", r.PlanID, err)
	}
	return &r, nil
}
