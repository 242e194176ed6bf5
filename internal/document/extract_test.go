// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Txt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two"), 0644))

	text, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestExtract_TxtCaseInsensitiveExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NOTES.TXT")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

	text, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "content", text)
}

func TestExtract_UnsupportedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50}, 0644))

	_, err := Extract(path)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedType)
}

func TestExtract_Docx(t *testing.T) {
	path := writeTestDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := Extract(path)
	require.NoError(t, err)
	assert.Contains(t, text, "First paragraph.\n")
	assert.Contains(t, text, "Second paragraph.\n")
}

func TestExtract_DocxWithoutDocumentPart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	_, err = zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Extract(path)
	assert.ErrorContains(t, err, "word/document.xml")
}

func TestExtract_CorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0644))

	_, err := Extract(path)
	assert.Error(t, err)
}

func TestDocxText(t *testing.T) {
	xml := `<w:document xmlns:w="x"><w:body>` +
		`<w:p><w:r><w:t>hello</w:t><w:t> world</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := docxText(strings.NewReader(xml))
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", text)
}

// writeTestDocx builds a minimal DOCX container around the given document
// part.
func writeTestDocx(t *testing.T, documentXML string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}
