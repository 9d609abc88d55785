// Package pdf extracts text from PDF files using docconv.
//
// docconv shells out to poppler's pdftotext, which must be on PATH.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv/v2"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ConvertFunc converts the file at path. It matches docconv.ConvertPath.
type ConvertFunc func(path string) (*docconv.Response, error)

// Extractor handles PDF documents.
type Extractor struct {
	convert ConvertFunc
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConverter replaces the docconv converter.
func WithConverter(fn ConvertFunc) Option {
	return func(e *Extractor) {
		e.convert = fn
	}
}

// New creates a new PDF extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{convert: docconv.ConvertPath}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract converts the PDF and returns the text of all pages.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := e.convert(path)
	if err != nil {
		return "", fmt.Errorf("%w: converting pdf: %w", domain.ErrExtraction, err)
	}
	if res == nil {
		return "", fmt.Errorf("%w: converter returned no result", domain.ErrExtraction)
	}

	return normaliseWhitespace(res.Body), nil
}

// normaliseWhitespace drops form feeds between pages and trailing spaces on lines.
func normaliseWhitespace(body string) string {
	body = strings.ReplaceAll(body, "\f", "\n")
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
