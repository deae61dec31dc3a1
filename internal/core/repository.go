package core

import (
	"context"
	"time"

	"github.com/dailymath/dailymath/internal/identity"
	"github.com/dailymath/dailymath/internal/store"
)

// QuestionRepository is the read side of the question collection.
type QuestionRepository interface {
	GetActiveQuestion(ctx context.Context) (*store.DailyQuestion, error)
}

// ResultRepository stores grading results. *store.SQLiteStore satisfies it.
type ResultRepository interface {
	CreateGradingResult(ctx context.Context, r *store.GradingResult) error
	GetGradingResult(ctx context.Context, userID, resultID string) (*store.GradingResult, error)
	ListHistory(ctx context.Context, userID string) ([]store.HistoryItem, error)
	LatestResultForQuestion(ctx context.Context, userID, questionID string) (*store.GradingResult, error)
}

// StreakRecorder advances the local user's streak after a graded submission.
type StreakRecorder interface {
	RecordPractice(ctx context.Context, now time.Time) (*identity.AppUser, error)
}
