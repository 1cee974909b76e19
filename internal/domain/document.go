package domain

import (
	"fmt"
	"strings"
	"time"
)

// Document is a single source file after ingest: normalized text plus
// provenance. Immutable once chunked; a changed file becomes a new Document
// with a new content hash.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Text        string    `json:"text"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the document is usable as chunker input.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return ErrMissingDocumentSource
	}
	if strings.TrimSpace(d.Text) == "" {
		return ErrMissingDocumentText
	}
	return nil
}

// Chunk is the retrieval unit: an overlapping token window over a document.
// Text is the exact substring of the parent document between StartChar and
// EndChar, so citations quote the source verbatim.
type Chunk struct {
	ID         string `json:"id"`
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	Seq        int    `json:"seq"`
	Text       string `json:"text"`
	TokenCount int    `json:"token_count"`
	StartChar  int    `json:"start_char"`
	EndChar    int    `json:"end_char"`
}

// ChunkID builds the stable chunk identifier for a document and sequence
// number, e.g. "txt::notes.txt::chunk3".
func ChunkID(docID string, seq int) string {
	return fmt.Sprintf("%s::chunk%d", docID, seq)
}
