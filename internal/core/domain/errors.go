package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates a document status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid status transition")

	// Ingestion Errors.

	// ErrUnsupportedFormat indicates a file extension with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtraction indicates a corrupt file or a parser failure.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmptyDocument indicates extraction produced no text, so no chunks exist.
	ErrEmptyDocument = errors.New("document produced no chunks")

	// ErrEmbedding indicates the embedding provider failed or is unreachable.
	ErrEmbedding = errors.New("embedding failed")

	// ErrEmbeddingMismatch indicates vectors from a different embedding configuration
	// than the one the index was built with.
	ErrEmbeddingMismatch = errors.New("embedding configuration mismatch")

	// ErrStaleDocument indicates the document was deleted or replaced while
	// its ingestion ran, so the run's chunks were not indexed.
	ErrStaleDocument = errors.New("document changed during ingestion")

	// ErrPersist indicates the vector index could not be written to disk.
	ErrPersist = errors.New("index persist failed")

	// Query Errors.

	// ErrGeneration indicates the language model failed or timed out.
	ErrGeneration = errors.New("generation failed")

	// ErrIndexUnavailable indicates the index could not be loaded.
	// Queries treat this as "not ready" rather than a failure.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrQueryFailed is the single opaque error returned for a failed query.
	ErrQueryFailed = errors.New("query failed")
)

// Error kinds reported by Classify.
const (
	KindUnsupportedFormat = "UnsupportedFormat"
	KindExtraction        = "ExtractionError"
	KindEmptyDocument     = "EmptyDocument"
	KindEmbedding         = "EmbeddingError"
	KindPersist           = "PersistError"
	KindStaleDocument     = "StaleDocument"
	KindGeneration        = "GenerationError"
	KindIndexUnavailable  = "IndexUnavailable"
	KindNotFound          = "NotFound"
	KindUnknown           = "Unknown"
)

// Classify maps an error onto the ingestion and query error taxonomy.
// Returns the empty string for a nil error.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, ErrExtraction):
		return KindExtraction
	case errors.Is(err, ErrEmptyDocument):
		return KindEmptyDocument
	case errors.Is(err, ErrEmbedding), errors.Is(err, ErrEmbeddingMismatch):
		return KindEmbedding
	case errors.Is(err, ErrStaleDocument):
		return KindStaleDocument
	case errors.Is(err, ErrPersist):
		return KindPersist
	case errors.Is(err, ErrGeneration):
		return KindGeneration
	case errors.Is(err, ErrIndexUnavailable):
		return KindIndexUnavailable
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindUnknown
	}
}
