package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure DocumentHistoryStore implements the interface.
var _ driven.DocumentHistoryStore = (*DocumentHistoryStore)(nil)

// DocumentHistoryStore is an in-memory implementation of driven.DocumentHistoryStore.
type DocumentHistoryStore struct {
	mu      sync.RWMutex
	changes []domain.DocumentChange
}

// NewDocumentHistoryStore creates a new in-memory history store.
func NewDocumentHistoryStore() *DocumentHistoryStore {
	return &DocumentHistoryStore{}
}

// Append records a change.
func (s *DocumentHistoryStore) Append(_ context.Context, change *domain.DocumentChange) error {
	if change == nil || change.DocumentID <= 0 || change.ChangeType == "" {
		return fmt.Errorf("%w: change needs a document and a type", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}
	change.ID = int64(len(s.changes) + 1)
	s.changes = append(s.changes, *change)
	return nil
}

// ListByDocument returns a document's changes oldest first.
func (s *DocumentHistoryStore) ListByDocument(_ context.Context, documentID int64) ([]domain.DocumentChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DocumentChange
	for _, c := range s.changes {
		if c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	return out, nil
}
