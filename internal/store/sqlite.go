package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mkravets/excel-interviewer/internal/domain"
	"github.com/mkravets/excel-interviewer/internal/shared"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed interview archive.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS interviews (
		session_id TEXT PRIMARY KEY,
		candidate_json TEXT,
		skill_tier TEXT NOT NULL,
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		success_rate REAL NOT NULL,
		report_json TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		completed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interviews_completed ON interviews(completed_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveInterview archives a completed interview. Retries with exponential
// backoff on SQLite concurrency errors.
func (s *SQLiteStore) SaveInterview(ctx context.Context, rec *domain.InterviewRecord) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.saveInterviewOnce(ctx, rec)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("SaveInterview hit a busy database, retrying",
				"session_id", rec.SessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}

	return fmt.Errorf("save interview %s: %w", rec.SessionID, err)
}

func (s *SQLiteStore) saveInterviewOnce(ctx context.Context, rec *domain.InterviewRecord) error {
	query := `
	INSERT INTO interviews (
		session_id, candidate_json, skill_tier, total_questions,
		correct_answers, success_rate, report_json, started_at, completed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		report_json = excluded.report_json,
		total_questions = excluded.total_questions,
		correct_answers = excluded.correct_answers,
		success_rate = excluded.success_rate,
		completed_at = excluded.completed_at`

	var candidateJSON interface{}
	if rec.CandidateJSON != "" {
		candidateJSON = rec.CandidateJSON
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.SessionID, candidateJSON, string(rec.SkillTier),
		rec.TotalQuestions, rec.CorrectAnswers, rec.SuccessRate,
		rec.ReportJSON, rec.StartedAt.Unix(), rec.CompletedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	return nil
}

// GetInterview retrieves an archived interview by session ID.
func (s *SQLiteStore) GetInterview(ctx context.Context, sessionID string) (*domain.InterviewRecord, error) {
	query := `
		SELECT session_id, candidate_json, skill_tier, total_questions,
		       correct_answers, success_rate, report_json, started_at, completed_at
		FROM interviews WHERE session_id = ?`

	rec, err := scanInterview(s.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan interview row: %w", err)
	}
	return rec, nil
}

// ListRecent returns the most recently completed interviews, newest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]*domain.InterviewRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT session_id, candidate_json, skill_tier, total_questions,
		       correct_answers, success_rate, report_json, started_at, completed_at
		FROM interviews ORDER BY completed_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent interviews: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close interview rows", "error", closeErr)
		}
	}()

	var records []*domain.InterviewRecord
	for rows.Next() {
		rec, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interview row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interviews: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (*domain.InterviewRecord, error) {
	var rec domain.InterviewRecord
	var candidateJSON sql.NullString
	var tier string
	var startedAt, completedAt int64

	err := row.Scan(
		&rec.SessionID, &candidateJSON, &tier, &rec.TotalQuestions,
		&rec.CorrectAnswers, &rec.SuccessRate, &rec.ReportJSON,
		&startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.CandidateJSON = candidateJSON.String
	rec.SkillTier = domain.SkillTier(tier)
	rec.StartedAt = time.Unix(startedAt, 0)
	rec.CompletedAt = time.Unix(completedAt, 0)
	return &rec, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
