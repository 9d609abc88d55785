package docx

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// createTestDOCX writes a minimal DOCX file and returns its path.
func createTestDOCX(t *testing.T, documentXML string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return path
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".docx"}, New().Extensions())
}

func TestExtract_Paragraphs(t *testing.T) {
	path := createTestDOCX(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document `+wordNS+`><w:body>
<w:p><w:r><w:t>Refund Policy</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">The refund window </w:t></w:r><w:r><w:t>is 30 days.</w:t></w:r></w:p>
<w:p></w:p>
</w:body></w:document>`)

	text, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Refund Policy\n\nThe refund window is 30 days.", text)
}

func TestExtract_TablesTabsAndBreaks(t *testing.T) {
	path := createTestDOCX(t, `<w:document `+wordNS+`><w:body>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell</w:t><w:tab/><w:t>One</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:p><w:r><w:t>line</w:t><w:br/><w:t>two</w:t></w:r></w:p>
</w:body></w:document>`)

	text, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Cell\tOne\n\nline\ntwo", text)
}

func TestExtract_MissingDocumentPart(t *testing.T) {
	path := createTestDOCX(t, "")

	_, err := New().Extract(context.Background(), path)

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.docx")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a zip"), 0600))

	_, err := New().Extract(context.Background(), path)

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_MalformedXML(t *testing.T) {
	path := createTestDOCX(t, `<w:document `+wordNS+`><w:body><w:p><w:r><w:t>oops`)

	_, err := New().Extract(context.Background(), path)

	assert.ErrorIs(t, err, domain.ErrExtraction)
}
