package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentStore persists document records and their lifecycle status.
type DocumentStore interface {
	// Create inserts a new document and assigns its ID.
	// Fails with domain.ErrAlreadyExists if the path is taken.
	Create(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID. Fails with domain.ErrNotFound.
	Get(ctx context.Context, id int64) (*domain.Document, error)

	// UpdateStatus sets the lifecycle status of a document. A move the
	// lifecycle forbids fails with domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id int64, status domain.DocumentStatus) error

	// Update replaces the filename, path, status and version of a document.
	// A status change is checked like UpdateStatus.
	Update(ctx context.Context, doc *domain.Document) error

	// List returns documents newest first.
	List(ctx context.Context, offset, limit int) ([]domain.Document, error)

	// Delete removes a document record.
	Delete(ctx context.Context, id int64) error
}

// QueryLogStore persists the audit trail of queries.
type QueryLogStore interface {
	// Save inserts a log entry and assigns its ID and timestamp if unset.
	Save(ctx context.Context, entry *domain.QueryLog) error

	// ListByUser returns a user's entries newest first.
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]domain.QueryLog, error)

	// List returns all entries newest first.
	List(ctx context.Context, offset, limit int) ([]domain.QueryLog, error)

	// Get retrieves an entry by ID. Fails with domain.ErrNotFound.
	Get(ctx context.Context, id int64) (*domain.QueryLog, error)
}

// FeedbackStore persists ratings of logged answers.
type FeedbackStore interface {
	// Save inserts feedback and assigns its ID and timestamp if unset.
	Save(ctx context.Context, fb *domain.Feedback) error

	// ListByQuery returns the feedback for one query, oldest first.
	ListByQuery(ctx context.Context, queryID int64) ([]domain.Feedback, error)
}

// DocumentHistoryStore persists the change history of documents.
type DocumentHistoryStore interface {
	// Append inserts a change and assigns its ID and timestamp if unset.
	Append(ctx context.Context, change *domain.DocumentChange) error

	// ListByDocument returns a document's changes oldest first.
	ListByDocument(ctx context.Context, documentID int64) ([]domain.DocumentChange, error)
}

// JobStore persists ingestion job records.
type JobStore interface {
	// Save creates or updates a job.
	Save(ctx context.Context, job *domain.IngestJob) error

	// Get retrieves a job by ID. Fails with domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.IngestJob, error)

	// ListByDocument returns a document's jobs newest first.
	ListByDocument(ctx context.Context, documentID int64) ([]domain.IngestJob, error)
}
