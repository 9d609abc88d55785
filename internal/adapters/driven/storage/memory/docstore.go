// Package memory provides in-memory implementations of the driven store ports.
// They back tests and the ephemeral mode of the CLI.
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

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[int64]domain.Document)}
}

// Create inserts a document and assigns its ID.
func (s *DocumentStore) Create(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.Path == "" || doc.Filename == "" {
		return fmt.Errorf("%w: document needs a filename and path", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.docs {
		if existing.Path == doc.Path {
			return fmt.Errorf("%w: document at %s", domain.ErrAlreadyExists, doc.Path)
		}
	}

	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.UploadedAt
	}
	if doc.Status == "" {
		doc.Status = domain.StatusUploaded
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	s.nextID++
	doc.ID = s.nextID
	s.docs[doc.ID] = *doc
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id int64) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %d", domain.ErrNotFound, id)
	}
	return &doc, nil
}

// UpdateStatus sets the lifecycle status of a document.
func (s *DocumentStore) UpdateStatus(_ context.Context, id int64, status domain.DocumentStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("%w: document %d", domain.ErrNotFound, id)
	}
	if doc.Status != status {
		if err := doc.Status.CheckTransition(status); err != nil {
			return err
		}
	}
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC()
	s.docs[id] = doc
	return nil
}

// Update replaces the stored copy of a document. A status change is
// checked against the lifecycle.
func (s *DocumentStore) Update(_ context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.docs[doc.ID]
	if !ok {
		return fmt.Errorf("%w: document %d", domain.ErrNotFound, doc.ID)
	}
	if current.Status != doc.Status {
		if err := current.Status.CheckTransition(doc.Status); err != nil {
			return err
		}
	}
	for id, existing := range s.docs {
		if id != doc.ID && existing.Path == doc.Path {
			return fmt.Errorf("%w: document at %s", domain.ErrAlreadyExists, doc.Path)
		}
	}
	doc.UpdatedAt = time.Now().UTC()
	s.docs[doc.ID] = *doc
	return nil
}

// List returns documents newest first.
func (s *DocumentStore) List(_ context.Context, offset, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].UploadedAt.After(docs[j].UploadedAt)
		}
		return docs[i].ID > docs[j].ID
	})
	return page(docs, offset, limit), nil
}

// Delete removes a document record.
func (s *DocumentStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("%w: document %d", domain.ErrNotFound, id)
	}
	delete(s.docs, id)
	return nil
}

// page applies offset and limit. A non-positive limit means no limit.
func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
