package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQueryService records asked questions and returns a fixed outcome.
type mockQueryService struct {
	mu     sync.Mutex
	answer domain.Answer
	err    error
	asked  []string
	users  []int64
}

func (m *mockQueryService) AnswerQuery(_ context.Context, _ string) (domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockQueryService) LogQuery(_ context.Context, _ *domain.QueryLog) error {
	return nil
}

func (m *mockQueryService) Ask(_ context.Context, userID int64, query string) (domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asked = append(m.asked, query)
	m.users = append(m.users, userID)
	return m.answer, m.err
}

func (m *mockQueryService) History(_ context.Context, _ int64, _, _ int) ([]domain.QueryLog, error) {
	return nil, nil
}

func (m *mockQueryService) AllLogs(_ context.Context, _, _ int) ([]domain.QueryLog, error) {
	return nil, nil
}
