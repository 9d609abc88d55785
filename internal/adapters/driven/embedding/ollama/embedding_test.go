package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEmbeddingService(Config{BaseURL: srv.URL, Dimensions: 3, BatchSize: 2})
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultBatchSize, svc.batchSize)
}

func TestEmbedBatch_SplitsIntoBatchesAndKeepsOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		calls [][]string
	)
	svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		mu.Lock()
		calls = append(calls, req.Input)
		mu.Unlock()

		resp := embedResponse{}
		for _, in := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float64{float64(len(in)), 0, 1})
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	got, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})

	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, [][]string{{"a", "bb"}, {"ccc"}}, calls)
	mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, []float32{1, 0, 1}, got[0])
	assert.Equal(t, []float32{2, 0, 1}, got[1])
	assert.Equal(t, []float32{3, 0, 1}, got[2])
}

func TestEmbed_ServerError(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	_, err := svc.Embed(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Contains(t, err.Error(), "model not found")
}

func TestEmbed_WrongDimensions(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{1, 2}}})
	})

	_, err := svc.Embed(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Contains(t, err.Error(), "2 dimensions")
}

func TestEmbed_CountMismatch(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{})
	})

	_, err := svc.Embed(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestEmbed_Unreachable(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	_, err := svc.Embed(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestPing(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, svc.Ping(context.Background()))

	down := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, down.Ping(context.Background()))
}
