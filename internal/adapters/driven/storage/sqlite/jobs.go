package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

const jobColumns = "id, document_id, status, error_kind, error, chunk_count, created_at, started_at, finished_at"

// Save creates or updates a job.
func (s *jobStore) Save(ctx context.Context, job *domain.IngestJob) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("%w: job needs an id", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_jobs (id, document_id, status, error_kind, error, chunk_count, created_at, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			error_kind = excluded.error_kind,
			error = excluded.error,
			chunk_count = excluded.chunk_count,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, job.ID, job.DocumentID, string(job.Status), nullString(job.ErrorKind), nullString(job.Error),
		job.ChunkCount, formatTime(job.CreatedAt),
		formatNullableTime(job.StartedAt), formatNullableTime(job.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving ingest job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID.
func (s *jobStore) Get(ctx context.Context, id string) (*domain.IngestJob, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM ingest_jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return job, err
}

// ListByDocument returns a document's jobs newest first.
func (s *jobStore) ListByDocument(ctx context.Context, documentID int64) ([]domain.IngestJob, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM ingest_jobs WHERE document_id = ? ORDER BY created_at DESC, rowid DESC",
		documentID)
	if err != nil {
		return nil, fmt.Errorf("querying ingest jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.IngestJob //nolint:prealloc // size unknown from query
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingest jobs: %w", err)
	}
	return jobs, nil
}

func scanJob(row scanner) (*domain.IngestJob, error) {
	var job domain.IngestJob
	var status, createdAt string
	var errorKind, errMsg, startedAt, finishedAt sql.NullString

	if err := row.Scan(&job.ID, &job.DocumentID, &status, &errorKind, &errMsg, &job.ChunkCount,
		&createdAt, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning ingest job: %w", err)
	}

	job.Status = domain.JobStatus(status)
	job.ErrorKind = errorKind.String
	job.Error = errMsg.String

	var err error
	if job.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if job.StartedAt, err = parseNullableTime(startedAt); err != nil {
		return nil, err
	}
	if job.FinishedAt, err = parseNullableTime(finishedAt); err != nil {
		return nil, err
	}
	return &job, nil
}
