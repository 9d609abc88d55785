package driven

import (
	"context"
	"strconv"
)

// EmbeddingService generates vector embeddings from text.
//
// Ingestion and queries must share one configuration; Fingerprint identifies it
// so the vector index can reject vectors from a different embedding space.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Feature hashing (offline, deterministic)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result has the same length and order as texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingFingerprint identifies an embedding space as "model/dimensions".
func EmbeddingFingerprint(svc EmbeddingService) string {
	return svc.ModelName() + "/" + strconv.Itoa(svc.Dimensions())
}
