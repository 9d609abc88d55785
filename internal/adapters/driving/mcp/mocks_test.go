package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer domain.Answer
	logs   []domain.QueryLog
	err    error

	askedUser  int64
	askedQuery string
	historyFor int64
	allCalled  bool
	limit      int
}

func (m *mockQueryService) AnswerQuery(_ context.Context, _ string) (domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockQueryService) LogQuery(_ context.Context, _ *domain.QueryLog) error {
	return m.err
}

func (m *mockQueryService) Ask(_ context.Context, userID int64, query string) (domain.Answer, error) {
	m.askedUser = userID
	m.askedQuery = query
	return m.answer, m.err
}

func (m *mockQueryService) History(_ context.Context, userID int64, _, limit int) ([]domain.QueryLog, error) {
	m.historyFor = userID
	m.limit = limit
	return m.logs, m.err
}

func (m *mockQueryService) AllLogs(_ context.Context, _, limit int) ([]domain.QueryLog, error) {
	m.allCalled = true
	m.limit = limit
	return m.logs, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	job  *domain.IngestJob
	err  error
	sync bool
}

func (m *mockIngestionService) Ingest(_ context.Context, _ int64) (*domain.IngestJob, error) {
	return m.job, m.err
}

func (m *mockIngestionService) IngestSync(_ context.Context, _ int64) (*domain.IngestJob, error) {
	m.sync = true
	return m.job, m.err
}

func (m *mockIngestionService) Job(_ context.Context, _ string) (*domain.IngestJob, error) {
	return m.job, m.err
}

func (m *mockIngestionService) Jobs(_ context.Context, _ int64) ([]domain.IngestJob, error) {
	if m.job == nil {
		return nil, m.err
	}
	return []domain.IngestJob{*m.job}, m.err
}

func (m *mockIngestionService) LockDocument(_ int64) func() { return func() {} }

func (m *mockIngestionService) Wait() {}

func (m *mockIngestionService) Shutdown(_ context.Context) error { return nil }

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
	limit     int
}

func (m *mockDocumentService) Upload(_ context.Context, _ string, _ int64) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Replace(_ context.Context, _ int64, _ string, _ int64) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ int64) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context, _, limit int) ([]domain.Document, error) {
	m.limit = limit
	return m.documents, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ int64, _ int64) error {
	return m.err
}

func (m *mockDocumentService) History(_ context.Context, _ int64) ([]domain.DocumentChange, error) {
	return nil, m.err
}

func (m *mockDocumentService) SupportedExtensions() []string {
	return []string{".docx", ".pdf", ".txt"}
}

// mockFeedbackService is a mock implementation of driving.FeedbackService.
type mockFeedbackService struct {
	submitted *domain.Feedback
	err       error
}

func (m *mockFeedbackService) Submit(_ context.Context, fb *domain.Feedback) error {
	if m.err != nil {
		return m.err
	}
	if err := fb.Validate(); err != nil {
		return err
	}
	fb.ID = 7
	fb.Timestamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m.submitted = fb
	return nil
}

func (m *mockFeedbackService) ForQuery(_ context.Context, _ int64) ([]domain.Feedback, error) {
	if m.submitted == nil {
		return nil, m.err
	}
	return []domain.Feedback{*m.submitted}, m.err
}
