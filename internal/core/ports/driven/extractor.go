package driven

import "context"

// TextExtractor converts a stored file into plain text.
//
// Implementations must fail with domain.ErrUnsupportedFormat for extensions
// they cannot read and wrap every other failure in domain.ErrExtraction.
type TextExtractor interface {
	// Extract reads the file at path and returns its text content.
	Extract(ctx context.Context, path string) (string, error)

	// Supports reports whether the file's extension can be extracted.
	Supports(path string) bool

	// Extensions returns the lower-cased extensions handled, including the dot.
	Extensions() []string
}
