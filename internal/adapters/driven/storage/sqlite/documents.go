package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = "id, filename, path, owner_id, status, version, uploaded_at, updated_at"

// Create inserts a new document and assigns its ID.
func (s *documentStore) Create(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.Path == "" || doc.Filename == "" {
		return fmt.Errorf("%w: document needs a filename and path", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = now
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

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (filename, path, owner_id, status, version, uploaded_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.Filename, doc.Path, doc.OwnerID, string(doc.Status), doc.Version,
		formatTime(doc.UploadedAt), formatTime(doc.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: document at %s", domain.ErrAlreadyExists, doc.Path)
	}
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading document id: %w", err)
	}
	doc.ID = id
	return nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// UpdateStatus sets the lifecycle status of a document, rejecting moves
// the lifecycle forbids.
func (s *documentStore) UpdateStatus(ctx context.Context, id int64, status domain.DocumentStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning status update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := checkTransition(ctx, tx, id, status); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(time.Now()), id); err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing status update: %w", err)
	}
	return nil
}

// Update replaces the filename, path, status and version of a document.
func (s *documentStore) Update(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning document update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := checkTransition(ctx, tx, doc.ID, doc.Status); err != nil {
		return err
	}

	doc.UpdatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE documents SET filename = ?, path = ?, status = ?, version = ?, updated_at = ?
		WHERE id = ?
	`, doc.Filename, doc.Path, string(doc.Status), doc.Version, formatTime(doc.UpdatedAt), doc.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: document at %s", domain.ErrAlreadyExists, doc.Path)
	}
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing document update: %w", err)
	}
	return nil
}

// checkTransition reads the stored status inside tx and fails unless it may
// move to next. Keeping the status is always allowed.
func checkTransition(ctx context.Context, tx *sql.Tx, id int64, next domain.DocumentStatus) error {
	var current string
	err := tx.QueryRowContext(ctx, "SELECT status FROM documents WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: document %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("reading document status: %w", err)
	}
	if domain.DocumentStatus(current) == next {
		return nil
	}
	return domain.DocumentStatus(current).CheckTransition(next)
}

// List returns documents newest first.
func (s *documentStore) List(ctx context.Context, offset, limit int) ([]domain.Document, error) {
	offset, limit = pageArgs(offset, limit)
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY uploaded_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document record.
func (s *documentStore) Delete(ctx context.Context, id int64) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireOneRow(res, id)
}

func requireOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: document %d", domain.ErrNotFound, id)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var status, uploadedAt, updatedAt string

	if err := row.Scan(&doc.ID, &doc.Filename, &doc.Path, &doc.OwnerID, &status, &doc.Version,
		&uploadedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	var err error
	if doc.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}
