package extractors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type stubExtractor struct {
	exts []string
	text string
	err  error
}

func (s *stubExtractor) Extensions() []string { return s.exts }

func (s *stubExtractor) Extract(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

func TestDefault_Extensions(t *testing.T) {
	assert.Equal(t, []string{".docx", ".pdf", ".txt"}, Default().Extensions())
}

func TestRegistry_Supports(t *testing.T) {
	r := Default()

	assert.True(t, r.Supports("policy.txt"))
	assert.True(t, r.Supports("/a/b/Report.PDF"))
	assert.True(t, r.Supports("notes.docx"))
	assert.False(t, r.Supports("sheet.xlsx"))
	assert.False(t, r.Supports("README"))
}

func TestRegistry_Extract_Unsupported(t *testing.T) {
	_, err := Default().Extract(context.Background(), "/uploads/sheet.xlsx")

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), ".xlsx")
}

func TestRegistry_Extract_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("the refund window is 30 days"), 0600))

	text, err := Default().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "the refund window is 30 days", text)
}

func TestRegistry_Extract_WrapsForeignErrors(t *testing.T) {
	r := NewRegistry(&stubExtractor{exts: []string{".md"}, err: errors.New("parser exploded")})

	_, err := r.Extract(context.Background(), "notes.md")

	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "notes.md")
	assert.Contains(t, err.Error(), "parser exploded")
}

func TestRegistry_Extract_KeepsExtractionErrors(t *testing.T) {
	inner := errors.Join(domain.ErrExtraction, errors.New("bad page"))
	r := NewRegistry(&stubExtractor{exts: []string{".md"}, err: inner})

	_, err := r.Extract(context.Background(), "notes.md")

	assert.Equal(t, inner, err)
}

func TestRegistry_LaterExtractorWins(t *testing.T) {
	r := NewRegistry(
		&stubExtractor{exts: []string{".txt"}, text: "first"},
		&stubExtractor{exts: []string{".TXT"}, text: "second"},
	)

	text, err := r.Extract(context.Background(), "a.txt")

	require.NoError(t, err)
	assert.Equal(t, "second", text)
}
