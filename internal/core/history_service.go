package core

import (
	"context"
	"fmt"

	"github.com/dailymath/dailymath/internal/apperr"
	"github.com/dailymath/dailymath/internal/querycache"
	"github.com/dailymath/dailymath/internal/store"
)

type HistoryService struct {
	results ResultRepository
	cache   *querycache.Cache
}

func NewHistoryService(results ResultRepository, cache *querycache.Cache) *HistoryService {
	return &HistoryService{results: results, cache: cache}
}

// History lists the user's results, newest first.
func (s *HistoryService) History(ctx context.Context, userID string) ([]store.HistoryItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", apperr.ErrValidation)
	}
	return querycache.Fetch(ctx, s.cache, querycache.HistoryKey(userID), func(ctx context.Context) ([]store.HistoryItem, error) {
		return s.results.ListHistory(ctx, userID)
	})
}

// Result fails with apperr.ErrNotFound when the user has no such result.
func (s *HistoryService) Result(ctx context.Context, userID, resultID string) (*store.GradingResult, error) {
	if userID == "" || resultID == "" {
		return nil, fmt.Errorf("%w: user id and result id are required", apperr.ErrValidation)
	}
	return querycache.Fetch(ctx, s.cache, querycache.ResultKey(userID, resultID), func(ctx context.Context) (*store.GradingResult, error) {
		return s.results.GetGradingResult(ctx, userID, resultID)
	})
}

// LatestForQuestion returns nil, not an error, when the question has no
// result yet. Callers use that to choose between "Submit" and "Try Again".
func (s *HistoryService) LatestForQuestion(ctx context.Context, userID, questionID string) (*store.GradingResult, error) {
	if userID == "" || questionID == "" {
		return nil, fmt.Errorf("%w: user id and question id are required", apperr.ErrValidation)
	}
	return querycache.Fetch(ctx, s.cache, querycache.LatestKey(userID, questionID), func(ctx context.Context) (*store.GradingResult, error) {
		return s.results.LatestResultForQuestion(ctx, userID, questionID)
	})
}
