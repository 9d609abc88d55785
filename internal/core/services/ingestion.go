package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestionService = (*IngestionPipeline)(nil)

// ErrShuttingDown is returned by Ingest once Shutdown has been called.
var ErrShuttingDown = errors.New("ingestion pipeline is shutting down")

// IngestionPipeline turns uploaded documents into indexed chunks.
//
// Runs for the same document are serialised; runs for different documents
// proceed concurrently and meet only at the vector index's writer lock.
type IngestionPipeline struct {
	docs      driven.DocumentStore
	jobs      driven.JobStore
	extractor driven.TextExtractor
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	index     driven.VectorIndex

	locks *keyLock
	now   func() time.Time

	// Background runs use baseCtx so they outlive the request that queued
	// them. Shutdown cancels it once its own deadline passes.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewIngestionPipeline creates an ingestion pipeline.
func NewIngestionPipeline(
	docs driven.DocumentStore,
	jobs driven.JobStore,
	extractor driven.TextExtractor,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *IngestionPipeline {
	ctx, cancel := context.WithCancel(context.Background())
	return &IngestionPipeline{
		docs:      docs,
		jobs:      jobs,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		locks:     newKeyLock(),
		now:       time.Now,
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Ingest queues a background run and returns the queued job.
func (p *IngestionPipeline) Ingest(ctx context.Context, documentID int64) (*domain.IngestJob, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrShuttingDown
	}
	p.wg.Add(1)
	p.mu.Unlock()

	job, err := p.queue(ctx, documentID)
	if err != nil {
		p.wg.Done()
		return nil, err
	}

	go func(job domain.IngestJob) {
		defer p.wg.Done()
		p.run(p.baseCtx, &job)
	}(*job)

	return job, nil
}

// IngestSync runs the pipeline in the caller's goroutine and returns the finished job.
// Pipeline failures are recorded on the job, not returned.
func (p *IngestionPipeline) IngestSync(ctx context.Context, documentID int64) (*domain.IngestJob, error) {
	job, err := p.queue(ctx, documentID)
	if err != nil {
		return nil, err
	}
	p.run(ctx, job)
	return job, nil
}

// Job returns a job by ID.
func (p *IngestionPipeline) Job(ctx context.Context, jobID string) (*domain.IngestJob, error) {
	return p.jobs.Get(ctx, jobID)
}

// Jobs returns a document's jobs newest first.
func (p *IngestionPipeline) Jobs(ctx context.Context, documentID int64) ([]domain.IngestJob, error) {
	return p.jobs.ListByDocument(ctx, documentID)
}

// LockDocument waits for any run of the document to finish and holds off
// new ones until unlock is called.
func (p *IngestionPipeline) LockDocument(documentID int64) (unlock func()) {
	return p.locks.Lock(documentID)
}

// Wait blocks until every background run has finished.
func (p *IngestionPipeline) Wait() {
	p.wg.Wait()
}

// Shutdown stops accepting new runs and waits for running ones.
// If ctx ends first the remaining runs are cancelled and ctx's error returned.
func (p *IngestionPipeline) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

// queue checks the document exists and records a queued job for it.
func (p *IngestionPipeline) queue(ctx context.Context, documentID int64) (*domain.IngestJob, error) {
	if _, err := p.docs.Get(ctx, documentID); err != nil {
		return nil, fmt.Errorf("get document %d: %w", documentID, err)
	}

	job := &domain.IngestJob{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Status:     domain.JobQueued,
		CreatedAt:  p.now(),
	}
	if err := p.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}
	return job, nil
}

// run executes the pipeline for job and records the outcome on both the
// document and the job.
func (p *IngestionPipeline) run(ctx context.Context, job *domain.IngestJob) {
	unlock := p.locks.Lock(job.DocumentID)
	defer unlock()

	job.Status = domain.JobRunning
	job.StartedAt = p.now()
	p.saveJob(ctx, job)

	chunks, err := p.process(ctx, job.DocumentID)

	job.FinishedAt = p.now()
	if err != nil {
		job.Status = domain.JobFailed
		job.ErrorKind = domain.Classify(err)
		job.Error = err.Error()
		logger.Error("ingest failed doc=%d kind=%s: %v", job.DocumentID, job.ErrorKind, err)
		p.setStatus(ctx, job.DocumentID, domain.StatusError)
	} else {
		job.Status = domain.JobSucceeded
		job.ChunkCount = chunks
		logger.Info("ingested doc=%d chunks=%d in %s", job.DocumentID, chunks, job.Duration())
	}
	p.saveJob(ctx, job)
}

// process performs the pipeline steps and returns the number of chunks indexed.
func (p *IngestionPipeline) process(ctx context.Context, documentID int64) (int, error) {
	doc, err := p.docs.Get(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("get document: %w", err)
	}

	logger.Section(fmt.Sprintf("Ingest %s (doc %d, v%d)", doc.Filename, doc.ID, doc.Version))

	if err := p.docs.UpdateStatus(ctx, doc.ID, domain.StatusProcessing); err != nil {
		return 0, fmt.Errorf("set processing: %w", err)
	}

	text, err := p.extractor.Extract(ctx, doc.Path)
	if err != nil {
		return 0, err
	}
	logger.Debug("extracted %d characters from %s", len(text), doc.Path)

	parts := p.chunker.Split(text)
	if len(parts) == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, doc.Filename)
	}
	logger.Debug("split into %d chunks (size=%d overlap=%d)", len(parts), p.chunker.Size(), p.chunker.Overlap())

	vectors, err := p.embedder.EmbedBatch(ctx, parts)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(parts) {
		return 0, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(vectors), len(parts))
	}

	if err := p.checkCurrent(ctx, doc); err != nil {
		return 0, err
	}

	meta := domain.ChunkMetadata{DocumentID: doc.ID, Filename: doc.Filename}
	entries := make([]domain.IndexEntry, len(parts))
	for i, part := range parts {
		entries[i] = domain.IndexEntry{Vector: vectors[i], Text: part, Metadata: meta}
	}
	if err := p.index.Add(ctx, driven.EmbeddingFingerprint(p.embedder), entries); err != nil {
		return 0, err
	}

	if err := p.docs.UpdateStatus(ctx, doc.ID, domain.StatusEmbedded); err != nil {
		return 0, fmt.Errorf("set embedded: %w", err)
	}
	return len(parts), nil
}

// checkCurrent fails with ErrStaleDocument when the record was deleted or its
// file replaced since the run read it. Runs hold the document lock, so this
// only catches changes made without it.
func (p *IngestionPipeline) checkCurrent(ctx context.Context, doc *domain.Document) error {
	current, err := p.docs.Get(ctx, doc.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: document %d deleted: %w", domain.ErrStaleDocument, doc.ID, err)
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if current.Version != doc.Version || current.Path != doc.Path {
		return fmt.Errorf("%w: document %d is now v%d", domain.ErrStaleDocument, doc.ID, current.Version)
	}
	return nil
}

// setStatus records a failure status. The document may have been deleted
// while the run was in flight, so a missing record is ignored.
func (p *IngestionPipeline) setStatus(ctx context.Context, id int64, status domain.DocumentStatus) {
	err := p.docs.UpdateStatus(context.WithoutCancel(ctx), id, status)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("ingest: set status %s for doc=%d: %v", status, id, err)
	}
}

func (p *IngestionPipeline) saveJob(ctx context.Context, job *domain.IngestJob) {
	if err := p.jobs.Save(context.WithoutCancel(ctx), job); err != nil {
		logger.Warn("ingest: save job %s: %v", job.ID, err)
	}
}
