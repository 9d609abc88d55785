package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure FeedbackService implements the interface.
var _ driving.FeedbackService = (*FeedbackService)(nil)

// FeedbackService stores user ratings of logged answers.
type FeedbackService struct {
	feedback driven.FeedbackStore
}

// NewFeedbackService creates a feedback service.
func NewFeedbackService(feedback driven.FeedbackStore) *FeedbackService {
	return &FeedbackService{feedback: feedback}
}

// Submit validates and stores fb. Rating a query that was never logged fails with ErrNotFound.
func (s *FeedbackService) Submit(ctx context.Context, fb *domain.Feedback) error {
	if fb == nil {
		return fmt.Errorf("%w: no feedback given", domain.ErrInvalidInput)
	}
	if err := fb.Validate(); err != nil {
		return err
	}
	if err := s.feedback.Save(ctx, fb); err != nil {
		return fmt.Errorf("save feedback for query %d: %w", fb.QueryID, err)
	}
	logger.Info("feedback %d for query=%d rating=%d", fb.ID, fb.QueryID, fb.Rating)
	return nil
}

// ForQuery returns the feedback left on one query, oldest first.
func (s *FeedbackService) ForQuery(ctx context.Context, queryID int64) ([]domain.Feedback, error) {
	if queryID <= 0 {
		return nil, fmt.Errorf("%w: query id must be positive", domain.ErrInvalidInput)
	}
	return s.feedback.ListByQuery(ctx, queryID)
}
