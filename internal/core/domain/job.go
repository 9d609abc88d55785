package domain

import "time"

// JobStatus is the state of a background ingestion job.
type JobStatus string

// Job statuses.
const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// IsFinished returns true once the job can no longer change.
func (s JobStatus) IsFinished() bool {
	return s == JobSucceeded || s == JobFailed
}

// IngestJob tracks one run of the ingestion pipeline for a document.
// It can be polled independently of the document record.
type IngestJob struct {
	// ID is a UUID assigned when the job is queued.
	ID string

	// DocumentID is the document being ingested.
	DocumentID int64

	// Status is the job state.
	Status JobStatus

	// ErrorKind is the classification of the failure, see Classify.
	ErrorKind string

	// Error is the failure message, empty on success.
	Error string

	// ChunkCount is the number of chunks added to the index.
	ChunkCount int

	// CreatedAt is when the job was queued.
	CreatedAt time.Time

	// StartedAt is when the pipeline began work. Zero while queued.
	StartedAt time.Time

	// FinishedAt is when the job finished. Zero while unfinished.
	FinishedAt time.Time
}

// Duration returns how long the job ran, or zero if it has not finished.
func (j *IngestJob) Duration() time.Duration {
	if j.StartedAt.IsZero() || j.FinishedAt.IsZero() {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
