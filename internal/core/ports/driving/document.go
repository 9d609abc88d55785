package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentService manages uploaded documents.
type DocumentService interface {
	// Upload copies the file into the upload directory, creates its record in
	// uploaded status and queues ingestion.
	Upload(ctx context.Context, srcPath string, ownerID int64) (*domain.Document, error)

	// Replace swaps in a new file for an existing document, bumps its version
	// and re-ingests it. Chunks from the previous version remain searchable
	// unless tombstoning is enabled. userID is recorded in the history.
	Replace(ctx context.Context, id int64, srcPath string, userID int64) (*domain.Document, error)

	// Get returns a document by ID.
	Get(ctx context.Context, id int64) (*domain.Document, error)

	// List returns documents newest first.
	List(ctx context.Context, offset, limit int) ([]domain.Document, error)

	// Delete removes the stored file and the record, and tombstones the
	// document's chunks when tombstoning is enabled. userID is recorded in
	// the history.
	Delete(ctx context.Context, id int64, userID int64) error

	// History returns the document's changes oldest first. It remains
	// available after the document is deleted. Fails with domain.ErrNotFound
	// when the document never existed.
	History(ctx context.Context, id int64) ([]domain.DocumentChange, error)

	// SupportedExtensions returns the extensions that can be uploaded.
	SupportedExtensions() []string
}
