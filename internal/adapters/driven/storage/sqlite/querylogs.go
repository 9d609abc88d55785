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

// queryLogStore implements driven.QueryLogStore.
type queryLogStore struct {
	store *Store
}

var _ driven.QueryLogStore = (*queryLogStore)(nil)

const queryLogColumns = "id, user_id, query_text, response_text, retrieved_context, source_references, timestamp"

// Save inserts a log entry. Entries are never updated.
func (s *queryLogStore) Save(ctx context.Context, entry *domain.QueryLog) error {
	if entry == nil {
		return domain.ErrInvalidInput
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO query_logs (user_id, query_text, response_text, retrieved_context, source_references, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.UserID, entry.QueryText, entry.ResponseText, entry.RetrievedContext,
		entry.SourceReferences, formatTime(entry.Timestamp))
	if err != nil {
		return fmt.Errorf("saving query log: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading query log id: %w", err)
	}
	entry.ID = id
	return nil
}

// ListByUser returns a user's entries newest first.
func (s *queryLogStore) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]domain.QueryLog, error) {
	offset, limit = pageArgs(offset, limit)
	return s.query(ctx,
		"SELECT "+queryLogColumns+" FROM query_logs WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
}

// List returns all entries newest first.
func (s *queryLogStore) List(ctx context.Context, offset, limit int) ([]domain.QueryLog, error) {
	offset, limit = pageArgs(offset, limit)
	return s.query(ctx,
		"SELECT "+queryLogColumns+" FROM query_logs ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
}

// Get retrieves an entry by ID.
func (s *queryLogStore) Get(ctx context.Context, id int64) (*domain.QueryLog, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+queryLogColumns+" FROM query_logs WHERE id = ?", id)
	entry, err := scanQueryLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: query %d", domain.ErrNotFound, id)
	}
	return entry, err
}

func (s *queryLogStore) query(ctx context.Context, query string, args ...any) ([]domain.QueryLog, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying query logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.QueryLog //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanQueryLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query logs: %w", err)
	}
	return logs, nil
}

// scanQueryLog returns sql.ErrNoRows unwrapped so callers can map it.
func scanQueryLog(row scanner) (*domain.QueryLog, error) {
	var entry domain.QueryLog
	var ts string
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.QueryText, &entry.ResponseText,
		&entry.RetrievedContext, &entry.SourceReferences, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning query log: %w", err)
	}
	var err error
	if entry.Timestamp, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &entry, nil
}
