package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "beta.txt", "beta content")
	writeFile(t, dir, "alpha.txt", "alpha content")
	writeFile(t, dir, "notes.md", "# Heading\nbody")
	writeFile(t, dir, "ignored.pdf", "binary")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	writeFile(t, filepath.Join(dir, "subdir"), "nested.txt", "not loaded")

	docs, err := LoadDir(dir)

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "txt::alpha.txt", docs[0].ID)
	assert.Equal(t, "txt::beta.txt", docs[1].ID)
	assert.Equal(t, "md::notes.md", docs[2].ID)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadDir_EmptyDirectory(t *testing.T) {
	docs, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadFile_NormalizesLineEndings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "crlf.txt", "line one  \r\nline two\t\r\n")

	doc, err := LoadFile(filepath.Join(dir, "crlf.txt"))

	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", doc.Text)
	assert.Equal(t, "crlf.txt", doc.Filename)
}

func TestLoadFile_StripsMarkdownMarkup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "# Title\n> quoted *emphasis* and `code`")

	doc, err := LoadFile(filepath.Join(dir, "doc.md"))

	require.NoError(t, err)
	assert.NotContains(t, doc.Text, "#")
	assert.NotContains(t, doc.Text, "*")
	assert.NotContains(t, doc.Text, ">")
	assert.NotContains(t, doc.Text, "`")
	assert.Contains(t, doc.Text, "Title")
	assert.Contains(t, doc.Text, "quoted emphasis and code")
}

func TestLoadFile_ContentHashStable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "same content")
	writeFile(t, dir, "b.txt", "same content")
	writeFile(t, dir, "c.txt", "different content")

	a, err := LoadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	b, err := LoadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	c, err := LoadFile(filepath.Join(dir, "c.txt"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ContentHash)
	assert.Equal(t, a.ContentHash, b.ContentHash)
	assert.NotEqual(t, a.ContentHash, c.ContentHash)
}

func TestLoadFile_ValidatesAsDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "valid.txt", "some text")

	doc, err := LoadFile(filepath.Join(dir, "valid.txt"))

	require.NoError(t, err)
	assert.NoError(t, doc.Validate())
	assert.False(t, doc.CreatedAt.IsZero())
}
