package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// feedbackStore implements driven.FeedbackStore.
type feedbackStore struct {
	store *Store
}

var _ driven.FeedbackStore = (*feedbackStore)(nil)

// Save inserts feedback. The query it rates must exist.
func (s *feedbackStore) Save(ctx context.Context, fb *domain.Feedback) error {
	if fb == nil {
		return domain.ErrInvalidInput
	}
	if err := fb.Validate(); err != nil {
		return err
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now().UTC()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO feedback (query_id, user_id, rating, comment, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, fb.QueryID, fb.UserID, fb.Rating, nullString(fb.Comment), formatTime(fb.Timestamp))
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: query %d", domain.ErrNotFound, fb.QueryID)
	}
	if err != nil {
		return fmt.Errorf("saving feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading feedback id: %w", err)
	}
	fb.ID = id
	return nil
}

// ListByQuery returns the feedback for one query, oldest first.
func (s *feedbackStore) ListByQuery(ctx context.Context, queryID int64) ([]domain.Feedback, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, query_id, user_id, rating, comment, timestamp
		FROM feedback WHERE query_id = ? ORDER BY id
	`, queryID)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.Feedback //nolint:prealloc // size unknown from query
	for rows.Next() {
		var fb domain.Feedback
		var comment sql.NullString
		var ts string
		if err := rows.Scan(&fb.ID, &fb.QueryID, &fb.UserID, &fb.Rating, &comment, &ts); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		fb.Comment = comment.String
		if fb.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback: %w", err)
	}
	return out, nil
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
