package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.JobStore = (*JobStore)(nil)

// JobStore is an in-memory implementation of driven.JobStore.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.IngestJob
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]domain.IngestJob)}
}

// Save creates or updates a job.
func (s *JobStore) Save(_ context.Context, job *domain.IngestJob) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("%w: job needs an id", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

// Get retrieves a job by ID.
func (s *JobStore) Get(_ context.Context, id string) (*domain.IngestJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return &job, nil
}

// ListByDocument returns a document's jobs newest first.
func (s *JobStore) ListByDocument(_ context.Context, documentID int64) ([]domain.IngestJob, error) {
	s.mu.RLock()
	var jobs []domain.IngestJob
	for _, job := range s.jobs {
		if job.DocumentID == documentID {
			jobs = append(jobs, job)
		}
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
		}
		return jobs[i].ID > jobs[j].ID
	})
	return jobs, nil
}
