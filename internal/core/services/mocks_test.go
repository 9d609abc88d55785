package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// mockExtractor returns fixed text for supported extensions.
type mockExtractor struct {
	text  string
	err   error
	exts  []string
	block chan struct{}

	mu       sync.Mutex
	inFlight map[string]int
	maxSeen  int
	calls    int
}

func newMockExtractor(text string) *mockExtractor {
	return &mockExtractor{text: text, exts: []string{".docx", ".pdf", ".txt"}, inFlight: make(map[string]int)}
}

func (m *mockExtractor) Extract(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.inFlight[path]++
	if m.inFlight[path] > m.maxSeen {
		m.maxSeen = m.inFlight[path]
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight[path]--
		m.mu.Unlock()
	}()

	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockExtractor) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range m.exts {
		if e == ext {
			return true
		}
	}
	return false
}

func (m *mockExtractor) Extensions() []string { return m.exts }

func (m *mockExtractor) maxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxSeen
}

// mockChunker splits on blank lines.
type mockChunker struct{}

func (mockChunker) Split(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (mockChunker) Size() int    { return 100 }
func (mockChunker) Overlap() int { return 0 }

// mockEmbedder returns a vector of the text length in every dimension.
type mockEmbedder struct {
	dims     int
	err      error
	batchErr error
	short    bool
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	v := make([]float32, m.dims)
	for i := range v {
		v[i] = float32(len(text))
	}
	return v, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndex records adds and tombstones and serves canned hits.
type mockIndex struct {
	mu sync.Mutex

	ready   bool
	length  int
	loadErr error
	addErr  error
	hits    []domain.SearchHit

	fingerprints []string
	added        []domain.IndexEntry
	tombstoned   []int64
	searchK      int
}

func (m *mockIndex) Load(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return false, m.loadErr
	}
	return m.ready, nil
}

func (m *mockIndex) Add(_ context.Context, fingerprint string, entries []domain.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.fingerprints = append(m.fingerprints, fingerprint)
	m.added = append(m.added, entries...)
	m.ready = true
	m.length += len(entries)
	return nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]domain.SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchK = k
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockIndex) Tombstone(_ context.Context, documentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tombstoned = append(m.tombstoned, documentID)
	return nil
}

func (m *mockIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.length
}

func (m *mockIndex) Fingerprint() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.fingerprints) == 0 {
		return ""
	}
	return m.fingerprints[0]
}

func (m *mockIndex) Close() error { return nil }

// mockLLM returns a fixed answer, or blocks until its context ends.
type mockLLM struct {
	answer string
	err    error
	block  bool

	mu      sync.Mutex
	prompts []string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockPrompts serves one template.
type mockPrompts struct {
	template string
	err      error
}

func (m *mockPrompts) Load(_ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.template, nil
}

func (m *mockPrompts) Reload() {}

// mockIngestion records the documents it is asked to ingest.
type mockIngestion struct {
	mu     sync.Mutex
	ids    []int64
	locked []int64
	err    error
}

func (m *mockIngestion) Ingest(_ context.Context, documentID int64) (*domain.IngestJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.ids = append(m.ids, documentID)
	return &domain.IngestJob{ID: "job", DocumentID: documentID, Status: domain.JobQueued}, nil
}

func (m *mockIngestion) IngestSync(ctx context.Context, documentID int64) (*domain.IngestJob, error) {
	return m.Ingest(ctx, documentID)
}

func (m *mockIngestion) Job(_ context.Context, _ string) (*domain.IngestJob, error) {
	return nil, domain.ErrNotFound
}

func (m *mockIngestion) Jobs(_ context.Context, _ int64) ([]domain.IngestJob, error) {
	return nil, nil
}

func (m *mockIngestion) LockDocument(documentID int64) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = append(m.locked, documentID)
	return func() {}
}

func (m *mockIngestion) Wait() {}

func (m *mockIngestion) Shutdown(_ context.Context) error { return nil }
