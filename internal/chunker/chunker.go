// Package chunker splits normalized document text into overlapping
// fixed-size token windows. A token is a maximal run of non-space
// characters; boundaries are deterministic so rebuilding an unchanged
// corpus yields identical chunks.
package chunker

import (
	"regexp"

	"github.com/behzad94/showcase-1/internal/domain"
)

var tokenPattern = regexp.MustCompile(`\S+`)

// Config controls the chunking window.
type Config struct {
	ChunkSize int
	Overlap   int
}

// DefaultConfig provides the standard 500/50 token window.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 500,
		Overlap:   50,
	}
}

type Chunker struct {
	cfg Config
}

// New validates the window configuration. Overlap must satisfy
// 0 <= overlap < chunk size.
func New(cfg Config) (*Chunker, error) {
	if cfg.ChunkSize <= 0 || cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, domain.ErrInvalidChunkConfig
	}
	return &Chunker{cfg: cfg}, nil
}

// Chunk slides a window of ChunkSize tokens over the document text,
// advancing by ChunkSize-Overlap tokens per step. The final window may be
// shorter, never padded, never dropped. Empty text yields no chunks.
// Each chunk keeps exact character offsets so its text is the verbatim
// substring of the document.
func (c *Chunker) Chunk(doc domain.Document) []domain.Chunk {
	spans := tokenPattern.FindAllStringIndex(doc.Text, -1)
	if len(spans) == 0 {
		return nil
	}

	step := c.cfg.ChunkSize - c.cfg.Overlap
	chunks := make([]domain.Chunk, 0, len(spans)/step+1)

	for start, seq := 0, 0; start < len(spans); start, seq = start+step, seq+1 {
		end := start + c.cfg.ChunkSize
		if end > len(spans) {
			end = len(spans)
		}

		startChar := spans[start][0]
		endChar := spans[end-1][1]

		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, seq),
			DocID:      doc.ID,
			Filename:   doc.Filename,
			Seq:        seq,
			Text:       doc.Text[startChar:endChar],
			TokenCount: end - start,
			StartChar:  startChar,
			EndChar:    endChar,
		})

		if end == len(spans) {
			break
		}
	}

	return chunks
}

// ChunkAll chunks every document in order.
func (c *Chunker) ChunkAll(docs []domain.Document) []domain.Chunk {
	var all []domain.Chunk
	for _, d := range docs {
		all = append(all, c.Chunk(d)...)
	}
	return all
}
