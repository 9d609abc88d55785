package domain

// ChunkMetadata links a chunk back to the document it came from.
type ChunkMetadata struct {
	// DocumentID is the ID of the source document.
	DocumentID int64 `json:"document_id"`

	// Filename is the original filename of the source document.
	Filename string `json:"source"`
}

// Chunk is a contiguous span of a document's extracted text.
// Chunks are not persisted on their own; the vector index is their only durable home.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Position is the zero-based position within the document.
	Position int

	// Metadata identifies the source document.
	Metadata ChunkMetadata
}

// IndexEntry is one embedded chunk stored in the vector index.
type IndexEntry struct {
	// Seq is the insertion order, assigned by the index.
	Seq int64

	// Vector is the chunk embedding.
	Vector []float32

	// Text is the chunk content.
	Text string

	// Metadata identifies the source document.
	Metadata ChunkMetadata
}

// SearchHit is one result of a similarity search.
type SearchHit struct {
	// Text is the chunk content.
	Text string

	// Metadata identifies the source document.
	Metadata ChunkMetadata

	// Score is the cosine similarity to the query vector. Higher is closer.
	Score float64
}
