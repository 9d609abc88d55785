package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// historyStore implements driven.DocumentHistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.DocumentHistoryStore = (*historyStore)(nil)

// Append inserts a change. History rows are never updated or deleted.
func (s *historyStore) Append(ctx context.Context, change *domain.DocumentChange) error {
	if change == nil || change.DocumentID <= 0 || change.ChangeType == "" {
		return fmt.Errorf("%w: change needs a document and a type", domain.ErrInvalidInput)
	}
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO document_history (document_id, version, change_type, changed_by, details, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, change.DocumentID, change.Version, string(change.ChangeType), change.ChangedBy,
		nullString(change.Details), formatTime(change.Timestamp))
	if err != nil {
		return fmt.Errorf("saving document change: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading document change id: %w", err)
	}
	change.ID = id
	return nil
}

// ListByDocument returns a document's changes oldest first.
func (s *historyStore) ListByDocument(ctx context.Context, documentID int64) ([]domain.DocumentChange, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, version, change_type, changed_by, details, timestamp
		FROM document_history WHERE document_id = ? ORDER BY id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying document history: %w", err)
	}
	defer rows.Close()

	var out []domain.DocumentChange //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.DocumentChange
		var changeType, ts string
		var details sql.NullString
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Version, &changeType, &c.ChangedBy, &details, &ts); err != nil {
			return nil, fmt.Errorf("scanning document change: %w", err)
		}
		c.ChangeType = domain.ChangeType(changeType)
		c.Details = details.String
		if c.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document history: %w", err)
	}
	return out, nil
}
