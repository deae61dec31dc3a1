package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dailymath/dailymath/internal/apperr"
	"github.com/dailymath/dailymath/internal/blob"
	"github.com/dailymath/dailymath/internal/config"
	"github.com/dailymath/dailymath/internal/grading"
	"github.com/dailymath/dailymath/internal/querycache"
	"github.com/dailymath/dailymath/internal/store"
)

type SubmitRequest struct {
	UserID     string
	QuestionID string
	Question   string
	// Images are in page order.
	Images []grading.Image
}

type SubmissionService struct {
	results     ResultRepository
	blobs       blob.Store
	grader      *grading.Grader
	streaks     StreakRecorder
	cache       *querycache.Cache
	imagePolicy string
	now         func() time.Time
}

func NewSubmissionService(
	results ResultRepository,
	blobs blob.Store,
	grader *grading.Grader,
	streaks StreakRecorder,
	cache *querycache.Cache,
	imagePolicy string,
) *SubmissionService {
	if imagePolicy == "" {
		imagePolicy = config.ImagePolicyUpload
	}
	return &SubmissionService{
		results:     results,
		blobs:       blobs,
		grader:      grader,
		streaks:     streaks,
		cache:       cache,
		imagePolicy: imagePolicy,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for object paths and streak days. Tests only.
func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	s.now = now
	return s
}

// Submit uploads the images (per image policy), grades them, advances the
// streak and stores a new result. It returns the result id. A failure at any
// step aborts the rest; earlier steps are not rolled back.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}
	at := s.now()

	imageURLs, err := s.storeImages(ctx, req, at)
	if err != nil {
		log.Printf("Submission for question %s aborted during upload: %v", req.QuestionID, err)
		return "", err
	}

	graded, err := s.grader.Grade(ctx, req.Question, req.Images)
	if err != nil {
		log.Printf("Submission for question %s aborted during grading: %v", req.QuestionID, err)
		return "", err
	}
	score := *graded.Score

	if score > -1 {
		if _, err := s.streaks.RecordPractice(ctx, at); err != nil {
			return "", fmt.Errorf("failed to update streak: %w", err)
		}
	}

	feedback := make(store.FeedbackList, 0, len(graded.Feedback))
	for _, f := range graded.Feedback {
		feedback = append(feedback, store.FeedbackItem{
			Title: f.Title,
			Text:  f.Text,
			Type:  store.FeedbackType(f.Type),
		})
	}

	result := &store.GradingResult{
		UserID:     req.UserID,
		QuestionID: req.QuestionID,
		Question:   req.Question,
		ImageURLs:  imageURLs,
		Score:      score,
		Feedback:   feedback,
		Status:     store.StatusGraded,
	}
	if err := s.results.CreateGradingResult(ctx, result); err != nil {
		return "", fmt.Errorf("failed to save grading result: %w", err)
	}
	s.cache.InvalidateUser(req.UserID)

	log.Printf("Graded submission %s for question %s: score %d", result.ID, req.QuestionID, score)
	return result.ID, nil
}

// storeImages uploads sequentially so URLs keep page order. The inline
// policy stores no URLs.
func (s *SubmissionService) storeImages(ctx context.Context, req SubmitRequest, at time.Time) (store.StringList, error) {
	urls := store.StringList{}
	if s.imagePolicy == config.ImagePolicyInline {
		return urls, nil
	}
	for i, img := range req.Images {
		path := blob.SolutionPath(req.UserID, req.QuestionID, at, i)
		url, err := s.blobs.Upload(ctx, path, img.MIMEType, img.Data)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: failed to upload image %d: %v", apperr.ErrNetwork, i+1, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func validateRequest(req SubmitRequest) error {
	switch {
	case req.UserID == "":
		return fmt.Errorf("%w: user id is required", apperr.ErrValidation)
	case req.QuestionID == "":
		return fmt.Errorf("%w: question id is required", apperr.ErrValidation)
	case req.Question == "":
		return fmt.Errorf("%w: question text is required", apperr.ErrValidation)
	case len(req.Images) < grading.MinImages || len(req.Images) > grading.MaxImages:
		return fmt.Errorf("%w: between %d and %d images are required, got %d",
			apperr.ErrValidation, grading.MinImages, grading.MaxImages, len(req.Images))
	}
	for i, img := range req.Images {
		if len(img.Data) == 0 {
			return fmt.Errorf("%w: image %d is empty", apperr.ErrValidation, i+1)
		}
	}
	return nil
}
