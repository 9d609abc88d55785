package cli

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var testTime = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// mockDocumentService keeps documents in a map.
type mockDocumentService struct {
	mu        sync.Mutex
	docs      map[int64]*domain.Document
	nextID    int64
	uploadErr error
	deleted   []int64
	changedBy []int64
	history   map[int64][]domain.DocumentChange
}

func newMockDocumentService() *mockDocumentService {
	return &mockDocumentService{
		docs: map[int64]*domain.Document{
			1: {
				ID: 1, Filename: "policy.txt", Path: "/uploads/policy.txt", OwnerID: 1,
				Status: domain.StatusEmbedded, Version: 1, UploadedAt: testTime, UpdatedAt: testTime,
			},
			2: {
				ID: 2, Filename: "broken.pdf", Path: "/uploads/broken.pdf", OwnerID: 2,
				Status: domain.StatusError, Version: 1, UploadedAt: testTime, UpdatedAt: testTime,
			},
		},
		nextID: 2,
		history: map[int64][]domain.DocumentChange{
			1: {
				{ID: 1, DocumentID: 1, Version: 1, ChangeType: domain.ChangeCreated, ChangedBy: 1,
					Details: "Document policy.txt created.", Timestamp: testTime},
				{ID: 2, DocumentID: 1, Version: 2, ChangeType: domain.ChangeUpdated, ChangedBy: 4,
					Details: "Document updated with new file policy.txt.", Timestamp: testTime},
			},
		},
	}
}

func (m *mockDocumentService) Upload(_ context.Context, srcPath string, ownerID int64) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if filepath.Ext(srcPath) == ".png" {
		return nil, domain.ErrUnsupportedFormat
	}
	m.nextID++
	doc := &domain.Document{
		ID: m.nextID, Filename: filepath.Base(srcPath), OwnerID: ownerID,
		Status: domain.StatusEmbedded, Version: 1, UploadedAt: testTime, UpdatedAt: testTime,
	}
	m.docs[doc.ID] = doc
	copied := *doc
	copied.Status = domain.StatusUploaded
	return &copied, nil
}

func (m *mockDocumentService) Replace(_ context.Context, id int64, srcPath string, userID int64) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if doc.Status == domain.StatusProcessing {
		return nil, domain.ErrInvalidTransition
	}
	m.changedBy = append(m.changedBy, userID)
	doc.Filename = filepath.Base(srcPath)
	doc.Version++
	copied := *doc
	return &copied, nil
}

func (m *mockDocumentService) Get(_ context.Context, id int64) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockDocumentService) List(_ context.Context, offset, limit int) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id int64, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	m.deleted = append(m.deleted, id)
	m.changedBy = append(m.changedBy, userID)
	return nil
}

func (m *mockDocumentService) History(_ context.Context, id int64) ([]domain.DocumentChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changes, ok := m.history[id]
	if !ok {
		if _, exists := m.docs[id]; !exists {
			return nil, domain.ErrNotFound
		}
	}
	return changes, nil
}

func (m *mockDocumentService) SupportedExtensions() []string {
	return []string{".docx", ".md", ".pdf", ".txt"}
}

// mockIngestionService returns canned jobs.
type mockIngestionService struct {
	mu     sync.Mutex
	queued []int64
	synced []int64
	waits  int
	fail   bool
}

func (m *mockIngestionService) job(documentID int64, status domain.JobStatus) *domain.IngestJob {
	job := &domain.IngestJob{
		ID:         "job-1",
		DocumentID: documentID,
		Status:     status,
		CreatedAt:  testTime,
	}
	switch status {
	case domain.JobSucceeded:
		job.ChunkCount = 4
		job.StartedAt = testTime
		job.FinishedAt = testTime.Add(1500 * time.Millisecond)
	case domain.JobFailed:
		job.ErrorKind = "extraction"
		job.Error = "extraction failed: broken.pdf"
		job.StartedAt = testTime
		job.FinishedAt = testTime.Add(time.Second)
	}
	return job
}

func (m *mockIngestionService) Ingest(_ context.Context, documentID int64) (*domain.IngestJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if documentID == 404 {
		return nil, domain.ErrNotFound
	}
	m.queued = append(m.queued, documentID)
	return m.job(documentID, domain.JobQueued), nil
}

func (m *mockIngestionService) IngestSync(_ context.Context, documentID int64) (*domain.IngestJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if documentID == 404 {
		return nil, domain.ErrNotFound
	}
	m.synced = append(m.synced, documentID)
	if m.fail {
		return m.job(documentID, domain.JobFailed), nil
	}
	return m.job(documentID, domain.JobSucceeded), nil
}

func (m *mockIngestionService) Job(_ context.Context, jobID string) (*domain.IngestJob, error) {
	if jobID != "job-1" {
		return nil, domain.ErrNotFound
	}
	return m.job(1, domain.JobSucceeded), nil
}

func (m *mockIngestionService) Jobs(_ context.Context, documentID int64) ([]domain.IngestJob, error) {
	switch documentID {
	case 1:
		return []domain.IngestJob{*m.job(1, domain.JobSucceeded)}, nil
	case 2:
		return []domain.IngestJob{*m.job(2, domain.JobFailed)}, nil
	}
	return nil, nil
}

func (m *mockIngestionService) LockDocument(_ int64) func() { return func() {} }

func (m *mockIngestionService) Wait() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waits++
}

func (m *mockIngestionService) Shutdown(_ context.Context) error { return nil }

// mockQueryService answers every question the same way and keeps a log.
type mockQueryService struct {
	mu     sync.Mutex
	answer domain.Answer
	err    error
	logs   []domain.QueryLog
}

func (m *mockQueryService) AnswerQuery(_ context.Context, _ string) (domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockQueryService) LogQuery(_ context.Context, entry *domain.QueryLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append([]domain.QueryLog{*entry}, m.logs...)
	return nil
}

func (m *mockQueryService) Ask(ctx context.Context, userID int64, query string) (domain.Answer, error) {
	entry := &domain.QueryLog{UserID: userID, QueryText: query, Timestamp: testTime}
	if m.err != nil {
		entry.ResponseText = domain.ErrorMarkerPrefix + m.err.Error()
		entry.SourceReferences = domain.SourcesUnavailable
		_ = m.LogQuery(ctx, entry)
		return domain.Answer{}, m.err
	}
	entry.ResponseText = m.answer.Text
	entry.SourceReferences = m.answer.Sources
	_ = m.LogQuery(ctx, entry)
	return m.answer, nil
}

func (m *mockQueryService) History(_ context.Context, userID int64, offset, limit int) ([]domain.QueryLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.QueryLog
	for _, entry := range m.logs {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return window(out, offset, limit), nil
}

func (m *mockQueryService) AllLogs(_ context.Context, offset, limit int) ([]domain.QueryLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return window(m.logs, offset, limit), nil
}

func window(logs []domain.QueryLog, offset, limit int) []domain.QueryLog {
	if offset >= len(logs) {
		return nil
	}
	logs = logs[offset:]
	if limit > 0 && limit < len(logs) {
		logs = logs[:limit]
	}
	return logs
}

// mockSettingsService stores raw values in a map.
type mockSettingsService struct {
	values map[string]string
	setErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{values: map[string]string{
		"embedding.provider": "hash",
		"llm.provider":       "extractive",
		"llm.api_key":        "",
		"query.top_k":        "3",
	}}
}

func (m *mockSettingsService) Get() (domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	s.Embedding.Provider = domain.AIProvider(m.values["embedding.provider"])
	s.Embedding.Model = "hash-384"
	s.LLM.Provider = domain.AIProvider(m.values["llm.provider"])
	s.LLM.Model = "extractive"
	return s, nil
}

func (m *mockSettingsService) Value(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrInvalidInput
	}
	return v, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if _, ok := m.values[key]; !ok {
		return domain.ErrInvalidInput
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mockFeedbackService accepts feedback for query IDs below 100.
type mockFeedbackService struct {
	mu      sync.Mutex
	entries []domain.Feedback
}

func (m *mockFeedbackService) Submit(_ context.Context, fb *domain.Feedback) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	if fb.QueryID >= 100 {
		return domain.ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fb.ID = int64(len(m.entries) + 1)
	fb.Timestamp = testTime
	m.entries = append(m.entries, *fb)
	return nil
}

func (m *mockFeedbackService) ForQuery(_ context.Context, queryID int64) ([]domain.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Feedback
	for _, fb := range m.entries {
		if fb.QueryID == queryID {
			out = append(out, fb)
		}
	}
	return out, nil
}

var (
	_ driving.DocumentService  = (*mockDocumentService)(nil)
	_ driving.IngestionService = (*mockIngestionService)(nil)
	_ driving.QueryService     = (*mockQueryService)(nil)
	_ driving.FeedbackService  = (*mockFeedbackService)(nil)
	_ driving.SettingsService  = (*mockSettingsService)(nil)
)

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	documents *mockDocumentService
	ingestion *mockIngestionService
	query     *mockQueryService
	feedback  *mockFeedbackService
	settings  *mockSettingsService
}

// setupTestServices installs fresh mocks and returns a cleanup that restores
// the previous services and flag values.
func setupTestServices() (*testServices, func()) {
	prevDoc, prevIngest, prevQuery, prevSettings := documentService, ingestionService, queryService, settingsService
	prevFeedback := feedbackService

	ts := &testServices{
		documents: newMockDocumentService(),
		ingestion: &mockIngestionService{},
		query: &mockQueryService{answer: domain.Answer{
			Text: "Employees get 25 days of annual leave.", Sources: "policy.txt", Ready: true,
		}},
		feedback: &mockFeedbackService{},
		settings: newMockSettingsService(),
	}
	documentService = ts.documents
	ingestionService = ts.ingestion
	queryService = ts.query
	settingsService = ts.settings
	feedbackService = ts.feedback

	return ts, func() {
		documentService, ingestionService, queryService, settingsService = prevDoc, prevIngest, prevQuery, prevSettings
		feedbackService = prevFeedback
		resetFlags()
	}
}

// resetFlags restores every command flag variable to its default.
func resetFlags() {
	verbose, dataDir, configDir = false, "", ""
	addUser, addNoWait, ingestWait = 1, false, false
	replaceUser, deleteUser = 1, 1
	feedbackRating, feedbackComment, feedbackUser, feedbackList = 0, "", 1, false
	docsOffset, docsLimit = 0, 50
	askUser, askJSON = 1, false
	historyUser, historyAll, historyLimit, historyOffset = 1, false, 10, 0
	chatUser = 1
}
