package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// FeedbackService records how useful logged answers were.
type FeedbackService interface {
	// Submit validates and stores feedback for a logged query.
	// Fails with domain.ErrNotFound when the query does not exist.
	Submit(ctx context.Context, fb *domain.Feedback) error

	// ForQuery returns a query's feedback oldest first.
	ForQuery(ctx context.Context, queryID int64) ([]domain.Feedback, error)
}
