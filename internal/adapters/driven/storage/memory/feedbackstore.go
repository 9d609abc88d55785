package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure FeedbackStore implements the interface.
var _ driven.FeedbackStore = (*FeedbackStore)(nil)

// FeedbackStore is an in-memory implementation of driven.FeedbackStore.
// Saving checks the rated query exists in logs, like the SQLite foreign key.
type FeedbackStore struct {
	logs driven.QueryLogStore

	mu      sync.RWMutex
	entries []domain.Feedback
}

// NewFeedbackStore creates a feedback store over logs.
func NewFeedbackStore(logs driven.QueryLogStore) *FeedbackStore {
	return &FeedbackStore{logs: logs}
}

// Save appends feedback.
func (s *FeedbackStore) Save(ctx context.Context, fb *domain.Feedback) error {
	if fb == nil {
		return domain.ErrInvalidInput
	}
	if err := fb.Validate(); err != nil {
		return err
	}
	if _, err := s.logs.Get(ctx, fb.QueryID); err != nil {
		return fmt.Errorf("rate query: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now().UTC()
	}
	fb.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, *fb)
	return nil
}

// ListByQuery returns the feedback for one query, oldest first.
func (s *FeedbackStore) ListByQuery(_ context.Context, queryID int64) ([]domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Feedback
	for _, fb := range s.entries {
		if fb.QueryID == queryID {
			out = append(out, fb)
		}
	}
	return out, nil
}
