package extractors

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/extractors/docx"
	"github.com/custodia-labs/docqa/internal/extractors/pdf"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// FormatExtractor extracts text from the file formats named by Extensions.
type FormatExtractor interface {
	// Extensions returns the lower-cased extensions handled, including the dot.
	Extensions() []string

	// Extract reads the file at path and returns its text.
	Extract(ctx context.Context, path string) (string, error)
}

// Registry dispatches extraction by file extension.
type Registry struct {
	byExt map[string]FormatExtractor
}

// NewRegistry creates a registry from the given extractors.
// Later extractors win when two claim the same extension.
func NewRegistry(extractors ...FormatExtractor) *Registry {
	r := &Registry{byExt: make(map[string]FormatExtractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// Default returns the registry for PDF, DOCX and TXT files.
func Default() *Registry {
	return NewRegistry(plaintext.New(), docx.New(), pdf.New())
}

// Supports reports whether the file's extension has an extractor.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the supported extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract selects the extractor for the file's extension and runs it.
// Failures other than an unsupported extension are wrapped in domain.ErrExtraction.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}

	text, err := e.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrExtraction) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtraction, filepath.Base(path), err)
	}
	return text, nil
}
