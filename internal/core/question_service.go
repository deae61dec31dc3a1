package core

import (
	"context"
	"fmt"

	"github.com/dailymath/dailymath/internal/querycache"
)

// DailyQuestion is what the home screen renders.
type DailyQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Streak   int    `json:"streak"`
}

type QuestionService struct {
	questions QuestionRepository
	cache     *querycache.Cache
}

func NewQuestionService(questions QuestionRepository, cache *querycache.Cache) *QuestionService {
	return &QuestionService{questions: questions, cache: cache}
}

func (s *QuestionService) DailyQuestion(ctx context.Context) (*DailyQuestion, error) {
	return querycache.Fetch(ctx, s.cache, querycache.DailyQuestionKey, func(ctx context.Context) (*DailyQuestion, error) {
		q, err := s.questions.GetActiveQuestion(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load daily question: %w", err)
		}
		return &DailyQuestion{ID: q.ID, Question: q.Question, Streak: q.Streak}, nil
	})
}
