// Package ingest reads plain-text and markdown files from a corpus
// directory into documents. Text is normalized (line endings, trailing
// whitespace) and content-hashed so rebuilds can tell whether a file
// changed. Encoding detection and PDF extraction are out of scope; files
// are assumed UTF-8.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/behzad94/showcase-1/internal/domain"
)

// LoadDir loads every .txt and .md file directly under dir, in filename
// order so document ids are stable across runs.
func LoadDir(dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".txt" || ext == ".md" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]domain.Document, 0, len(names))
	for _, name := range names {
		doc, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// LoadFile loads a single .txt or .md file.
func LoadFile(path string) (domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := filepath.Base(path)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")

	text := normalizeText(string(raw))
	if ext == "md" {
		text = stripMarkdown(text)
	}

	hash := sha256.Sum256([]byte(text))

	return domain.Document{
		ID:          fmt.Sprintf("%s::%s", ext, name),
		Filename:    name,
		Text:        text,
		ContentHash: hex.EncodeToString(hash[:]),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// stripMarkdown removes the most common markup so embeddings see plain
// prose. Deliberately light; not a markdown parser.
func stripMarkdown(s string) string {
	replacer := strings.NewReplacer("#", "", "*", "", ">", "", "`", "")
	return replacer.Replace(s)
}
