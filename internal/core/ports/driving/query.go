package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QueryService answers questions over the indexed documents.
type QueryService interface {
	// AnswerQuery retrieves context and generates an answer. An index that
	// does not exist yet yields the not-ready answer, not an error.
	AnswerQuery(ctx context.Context, query string) (domain.Answer, error)

	// LogQuery writes one audit entry.
	LogQuery(ctx context.Context, entry *domain.QueryLog) error

	// Ask answers the query and logs exactly one entry for it, on success or
	// failure. Failures are returned as domain.ErrQueryFailed.
	Ask(ctx context.Context, userID int64, query string) (domain.Answer, error)

	// History returns a user's queries newest first.
	History(ctx context.Context, userID int64, offset, limit int) ([]domain.QueryLog, error)

	// AllLogs returns every user's queries newest first.
	AllLogs(ctx context.Context, offset, limit int) ([]domain.QueryLog, error)
}
