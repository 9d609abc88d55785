package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentServiceConfig holds the document service settings.
type DocumentServiceConfig struct {
	// UploadDir receives copies of uploaded files.
	UploadDir string

	// TombstoneOnDelete hides a document's old chunks on replace and delete.
	TombstoneOnDelete bool
}

// DocumentService manages uploaded files, their records and ingestion.
//
// Replace and Delete hold the ingestion pipeline's lock for the document, so a
// run in flight finishes before its chunks are tombstoned.
type DocumentService struct {
	docs      driven.DocumentStore
	history   driven.DocumentHistoryStore
	extractor driven.TextExtractor
	index     driven.VectorIndex
	ingestion driving.IngestionService
	cfg       DocumentServiceConfig
}

// NewDocumentService creates a document service.
func NewDocumentService(
	docs driven.DocumentStore,
	history driven.DocumentHistoryStore,
	extractor driven.TextExtractor,
	index driven.VectorIndex,
	ingestion driving.IngestionService,
	cfg DocumentServiceConfig,
) *DocumentService {
	return &DocumentService{
		docs:      docs,
		history:   history,
		extractor: extractor,
		index:     index,
		ingestion: ingestion,
		cfg:       cfg,
	}
}

// Upload stores a copy of srcPath and queues it for ingestion.
// The returned document is in uploaded status; ingestion continues in the background.
func (s *DocumentService) Upload(ctx context.Context, srcPath string, ownerID int64) (*domain.Document, error) {
	dest, err := s.store(srcPath)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		Filename: filepath.Base(srcPath),
		Path:     dest,
		OwnerID:  ownerID,
		Status:   domain.StatusUploaded,
		Version:  1,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		removeFile(dest)
		return nil, fmt.Errorf("create document: %w", err)
	}
	logger.Info("uploaded %s as doc=%d", doc.Filename, doc.ID)
	s.record(ctx, doc, domain.ChangeCreated, ownerID, fmt.Sprintf("Document %s created.", doc.Filename))

	if _, err := s.ingestion.Ingest(ctx, doc.ID); err != nil {
		return doc, fmt.Errorf("queue ingestion: %w", err)
	}
	return doc, nil
}

// Replace swaps srcPath in for the document's file, bumps its version and re-ingests it.
func (s *DocumentService) Replace(ctx context.Context, id int64, srcPath string, userID int64) (*domain.Document, error) {
	doc, err := s.replace(ctx, id, srcPath, userID)
	if err != nil {
		return doc, err
	}

	if _, err := s.ingestion.Ingest(ctx, doc.ID); err != nil {
		return doc, fmt.Errorf("queue ingestion: %w", err)
	}
	return doc, nil
}

// replace does the part of Replace that runs under the document lock.
func (s *DocumentService) replace(ctx context.Context, id int64, srcPath string, userID int64) (*domain.Document, error) {
	unlock := s.ingestion.LockDocument(id)
	defer unlock()

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusUploaded {
		if err := doc.Status.CheckTransition(domain.StatusUploaded); err != nil {
			return nil, fmt.Errorf("replace document %d: %w", id, err)
		}
	}

	dest, err := s.store(srcPath)
	if err != nil {
		return nil, err
	}

	oldPath := doc.Path
	doc.Filename = filepath.Base(srcPath)
	doc.Path = dest
	doc.Version++
	doc.Status = domain.StatusUploaded
	if err := s.docs.Update(ctx, doc); err != nil {
		removeFile(dest)
		return nil, fmt.Errorf("update document: %w", err)
	}
	removeFile(oldPath)
	logger.Info("replaced doc=%d with %s (v%d)", doc.ID, doc.Filename, doc.Version)
	s.record(ctx, doc, domain.ChangeUpdated, userID, fmt.Sprintf("Document updated with new file %s.", doc.Filename))

	if s.cfg.TombstoneOnDelete {
		if err := s.index.Tombstone(ctx, doc.ID); err != nil {
			return doc, fmt.Errorf("tombstone previous version: %w", err)
		}
	}
	return doc, nil
}

// Get returns a document by ID.
func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	return s.docs.Get(ctx, id)
}

// List returns documents newest first.
func (s *DocumentService) List(ctx context.Context, offset, limit int) ([]domain.Document, error) {
	return s.docs.List(ctx, offset, limit)
}

// Delete removes the stored file and the record.
// Without tombstoning the document's chunks stay searchable.
func (s *DocumentService) Delete(ctx context.Context, id int64, userID int64) error {
	unlock := s.ingestion.LockDocument(id)
	defer unlock()

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return err
	}

	if s.cfg.TombstoneOnDelete {
		if err := s.index.Tombstone(ctx, id); err != nil {
			return fmt.Errorf("tombstone: %w", err)
		}
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	removeFile(doc.Path)
	logger.Info("deleted doc=%d (%s)", id, doc.Filename)
	s.record(ctx, doc, domain.ChangeDeleted, userID, "Document deleted.")
	return nil
}

// History returns the document's changes oldest first.
func (s *DocumentService) History(ctx context.Context, id int64) ([]domain.DocumentChange, error) {
	changes, err := s.history.ListByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if len(changes) == 0 {
		if _, err := s.docs.Get(ctx, id); err != nil {
			return nil, err
		}
	}
	return changes, nil
}

// record appends a history entry. The change itself has already happened,
// so a failed write is only logged.
func (s *DocumentService) record(ctx context.Context, doc *domain.Document, change domain.ChangeType, userID int64, details string) {
	entry := &domain.DocumentChange{
		DocumentID: doc.ID,
		Version:    doc.Version,
		ChangeType: change,
		ChangedBy:  userID,
		Details:    details,
	}
	if err := s.history.Append(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("history for doc=%d (%s) not written: %v", doc.ID, change, err)
	}
}

// SupportedExtensions returns the extensions that can be uploaded.
func (s *DocumentService) SupportedExtensions() []string {
	return s.extractor.Extensions()
}

// store validates srcPath and copies it into the upload directory,
// refusing to overwrite an existing file. Returns the destination path.
func (s *DocumentService) store(srcPath string) (string, error) {
	if !s.extractor.Supports(srcPath) {
		return "", fmt.Errorf("%w: %q (supported: %v)",
			domain.ErrUnsupportedFormat, filepath.Ext(srcPath), s.extractor.Extensions())
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidInput, srcPath)
	}

	if s.cfg.UploadDir == "" {
		return "", fmt.Errorf("%w: upload directory not configured", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(s.cfg.UploadDir, 0700); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	dest := filepath.Join(s.cfg.UploadDir, filepath.Base(srcPath))
	if err := copyFile(srcPath, dest); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: file %q already exists, rename it first",
				domain.ErrAlreadyExists, filepath.Base(srcPath))
		}
		return "", fmt.Errorf("save uploaded file: %w", err)
	}
	return dest, nil
}

// copyFile copies src to dst, failing with fs.ErrExist if dst exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("remove %s: %v", path, err)
	}
}
