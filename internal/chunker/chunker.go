// Package chunker splits extracted text into fixed-size overlapping chunks.
//
// Boundaries are counted in characters (runes), not bytes, so multi-byte text
// is never split inside a character. Splitting is deterministic.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Chunker splits text with a sliding window of chunkSize characters that
// advances by chunkSize-overlap.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. The overlap must be non-negative and strictly less
// than the chunk size.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, c.chunkSize)
	}
	if c.overlap < 0 || c.overlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrInvalidInput, c.overlap, c.chunkSize)
	}
	return c, nil
}

// Size returns the chunk size in characters.
func (c *Chunker) Size() int {
	return c.chunkSize
}

// Overlap returns the overlap in characters.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split returns the chunks of text in order. Text that is empty or only
// whitespace yields no chunks. Every chunk but the last is exactly Size()
// characters and shares Overlap() characters with the next one.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	step := c.chunkSize - c.overlap

	chunks := make([]string, 0, n/step+1)
	for start := 0; ; start += step {
		end := start + c.chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			break
		}
	}

	return chunks
}
