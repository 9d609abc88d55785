package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorIndex is the persistent nearest-neighbour store over embedded chunks.
//
// The index is append-only. Writers are serialised; readers always see the
// last fully persisted state, never a partially applied Add.
type VectorIndex interface {
	// Load loads the persisted index on first use and reuses it afterwards.
	// Concurrent first callers share a single load. Returns false with a nil
	// error when nothing has been persisted yet.
	Load(ctx context.Context) (bool, error)

	// Add appends entries, creating the index if none exists. The entries are
	// visible to Search only once they are persisted. fingerprint identifies
	// the embedding space; a mismatch with the stored one fails with
	// domain.ErrEmbeddingMismatch. Persist failures wrap domain.ErrPersist.
	Add(ctx context.Context, fingerprint string, entries []domain.IndexEntry) error

	// Search returns up to k entries ordered by descending similarity, ties
	// broken by insertion order. An empty or absent index yields no hits.
	Search(ctx context.Context, query []float32, k int) ([]domain.SearchHit, error)

	// Tombstone hides every chunk of a document from future searches.
	Tombstone(ctx context.Context, documentID int64) error

	// Len returns the number of entries in the loaded index.
	Len() int

	// Fingerprint returns the embedding space the index was built with,
	// or the empty string if the index does not exist yet.
	Fingerprint() string

	// Close releases resources.
	Close() error
}
