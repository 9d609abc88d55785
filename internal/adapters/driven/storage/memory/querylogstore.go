package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure QueryLogStore implements the interface.
var _ driven.QueryLogStore = (*QueryLogStore)(nil)

// QueryLogStore is an in-memory implementation of driven.QueryLogStore.
type QueryLogStore struct {
	mu      sync.RWMutex
	entries []domain.QueryLog
}

// NewQueryLogStore creates a new in-memory query log store.
func NewQueryLogStore() *QueryLogStore {
	return &QueryLogStore{}
}

// Save appends a log entry.
func (s *QueryLogStore) Save(_ context.Context, entry *domain.QueryLog) error {
	if entry == nil {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, *entry)
	return nil
}

// ListByUser returns a user's entries newest first.
func (s *QueryLogStore) ListByUser(_ context.Context, userID int64, offset, limit int) ([]domain.QueryLog, error) {
	return page(s.sorted(func(e domain.QueryLog) bool { return e.UserID == userID }), offset, limit), nil
}

// List returns all entries newest first.
func (s *QueryLogStore) List(_ context.Context, offset, limit int) ([]domain.QueryLog, error) {
	return page(s.sorted(func(domain.QueryLog) bool { return true }), offset, limit), nil
}

// Get retrieves an entry by ID.
func (s *QueryLogStore) Get(_ context.Context, id int64) (*domain.QueryLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: query %d", domain.ErrNotFound, id)
}

// Len returns the number of saved entries.
func (s *QueryLogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *QueryLogStore) sorted(keep func(domain.QueryLog) bool) []domain.QueryLog {
	s.mu.RLock()
	out := make([]domain.QueryLog, 0, len(s.entries))
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
