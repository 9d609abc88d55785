package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestionService runs the ingestion pipeline for documents.
type IngestionService interface {
	// Ingest queues a background ingestion of the document and returns the job
	// immediately. Pipeline failures are recorded on the document and the job,
	// never returned here; only an unknown document or a storage failure is.
	Ingest(ctx context.Context, documentID int64) (*domain.IngestJob, error)

	// IngestSync runs the pipeline and returns the finished job.
	IngestSync(ctx context.Context, documentID int64) (*domain.IngestJob, error)

	// Job returns a job by ID.
	Job(ctx context.Context, jobID string) (*domain.IngestJob, error)

	// Jobs returns a document's jobs newest first.
	Jobs(ctx context.Context, documentID int64) ([]domain.IngestJob, error)

	// LockDocument waits for any in-flight ingestion of the document and keeps
	// new ones from starting until the returned func is called.
	LockDocument(documentID int64) (unlock func())

	// Wait blocks until every background ingestion has finished.
	Wait()

	// Shutdown stops accepting new ingestions and waits for running ones
	// until ctx is done.
	Shutdown(ctx context.Context) error
}
