package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/dailymath/dailymath/internal/apperr"
)

type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if dataSourceName == ":memory:" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// WithClock replaces the clock used for created_at. Tests only.
func (s *SQLiteStore) WithClock(now func() time.Time) *SQLiteStore {
	s.now = now
	return s
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS questions (
        id TEXT PRIMARY KEY,
        question TEXT NOT NULL,
        streak INTEGER NOT NULL DEFAULT 0,
        date TEXT NOT NULL,
        is_active BOOLEAN NOT NULL DEFAULT FALSE,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS grading_results (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        question_id TEXT NOT NULL,
        question TEXT NOT NULL,
        image_urls TEXT NOT NULL DEFAULT '[]', -- JSON array, upload order
        score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
        feedback TEXT NOT NULL DEFAULT '[]', -- JSON array, display order
        status TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_grading_results_user_created
        ON grading_results (user_id, created_at);
    CREATE INDEX IF NOT EXISTS idx_grading_results_user_question
        ON grading_results (user_id, question_id, created_at);
    `
	_, err := s.db.Exec(schema)
	return err
}

// Question methods

// GetActiveQuestion returns the newest active question.
func (s *SQLiteStore) GetActiveQuestion(ctx context.Context) (*DailyQuestion, error) {
	var q DailyQuestion
	err := s.db.GetContext(ctx, &q, `
        SELECT id, question, streak, date, is_active, created_at
        FROM questions
        WHERE is_active = 1
        ORDER BY date DESC, created_at DESC
        LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no daily question found: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query daily question: %w", err)
	}
	return &q, nil
}

func (s *SQLiteStore) CreateQuestion(ctx context.Context, q *DailyQuestion) error {
	return insertQuestion(ctx, s.db, q, s.now())
}

// ReplaceQuestions swaps the whole question set in one transaction.
func (s *SQLiteStore) ReplaceQuestions(ctx context.Context, questions []DailyQuestion) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions"); err != nil {
		return fmt.Errorf("failed to clear questions: %w", err)
	}
	now := s.now()
	for i := range questions {
		if err := insertQuestion(ctx, tx, &questions[i], now); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit questions: %w", err)
	}
	return nil
}

func insertQuestion(ctx context.Context, db sqlx.ExtContext, q *DailyQuestion, now time.Time) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now.UTC()
	}
	_, err := sqlx.NamedExecContext(ctx, db, `
        INSERT INTO questions (id, question, streak, date, is_active, created_at)
        VALUES (:id, :question, :streak, :date, :is_active, :created_at)`, q)
	if err != nil {
		return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
	}
	return nil
}

// Grading result methods

// CreateGradingResult always inserts a new document; earlier attempts at the
// same question are kept as history.
func (s *SQLiteStore) CreateGradingResult(ctx context.Context, r *GradingResult) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO grading_results (id, user_id, question_id, question, image_urls, score, feedback, status, created_at)
        VALUES (:id, :user_id, :question_id, :question, :image_urls, :score, :feedback, :status, :created_at)`, r)
	if err != nil {
		return fmt.Errorf("failed to insert grading result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGradingResult(ctx context.Context, userID, resultID string) (*GradingResult, error) {
	var r GradingResult
	err := s.db.GetContext(ctx, &r, `
        SELECT id, user_id, question_id, question, image_urls, score, feedback, status, created_at
        FROM grading_results
        WHERE id = ? AND user_id = ?`, resultID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("grading result %s: %w", resultID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get grading result: %w", err)
	}
	return &r, nil
}

// ListHistory returns the user's results newest first.
func (s *SQLiteStore) ListHistory(ctx context.Context, userID string) ([]HistoryItem, error) {
	items := []HistoryItem{}
	err := s.db.SelectContext(ctx, &items, `
        SELECT id, created_at, question, score
        FROM grading_results
        WHERE user_id = ?
        ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return items, nil
}

// LatestResultForQuestion returns (nil, nil) when the user has no result for
// the question.
func (s *SQLiteStore) LatestResultForQuestion(ctx context.Context, userID, questionID string) (*GradingResult, error) {
	var r GradingResult
	err := s.db.GetContext(ctx, &r, `
        SELECT id, user_id, question_id, question, image_urls, score, feedback, status, created_at
        FROM grading_results
        WHERE user_id = ? AND question_id = ?
        ORDER BY created_at DESC, rowid DESC
        LIMIT 1`, userID, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest result: %w", err)
	}
	return &r, nil
}
