// Package store owns the similarity index and its manifest: a flat
// inner-product index over L2-normalized vectors plus the ordered chunk
// records mapping each index row back to its source. The pair is persisted
// together and must stay in lock-step: row i of the index is manifest
// entry i.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/behzad94/showcase-1/internal/domain"
)

// Hit is one search result: an index row and its inner-product score.
type Hit struct {
	Row   int
	Score float32
}

// Match is one search result resolved to its manifest entry. Row, score,
// and chunk all come from the same index snapshot.
type Match struct {
	Row   int
	Score float32
	Chunk domain.Chunk
}

// Store is the single shared index+manifest pair behind a
// single-writer/multiple-reader guard. Readers (Search, Chunk, Len) never
// observe a half-updated index: Rebuild assembles the new pair off to the
// side and swaps both slices under the write lock.
type Store struct {
	mu        sync.RWMutex
	dim       int
	modelName string
	dir       string
	vectors   [][]float32
	manifest  []domain.Chunk
}

// New creates an empty store persisting under dir. The dimension is fixed
// for the lifetime of the index.
func New(dir string, dim int, modelName string) (*Store, error) {
	if dim <= 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, fmt.Sprintf("invalid index dimension %d", dim))
	}
	return &Store{
		dim:       dim,
		modelName: modelName,
		dir:       dir,
	}, nil
}

// Dim returns the fixed vector dimension.
func (s *Store) Dim() int {
	return s.dim
}

// Len returns the number of indexed chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.manifest)
}

// Add appends chunks and their vectors to the index. Incremental: existing
// rows keep their ids.
func (s *Store) Add(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return domain.ErrChunkVectorMismatch
	}
	for _, v := range vectors {
		if len(v) != s.dim {
			return domain.ErrDimensionMismatch
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = append(s.vectors, vectors...)
	s.manifest = append(s.manifest, chunks...)
	return nil
}

// Rebuild replaces the entire index+manifest pair. The new pair is
// validated before the swap, so a failed rebuild leaves the current
// contents untouched and in-flight searches see either the old or the new
// index, never a mixture.
func (s *Store) Rebuild(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return domain.ErrChunkVectorMismatch
	}
	for _, v := range vectors {
		if len(v) != s.dim {
			return domain.ErrDimensionMismatch
		}
	}

	newVectors := make([][]float32, len(vectors))
	copy(newVectors, vectors)
	newManifest := make([]domain.Chunk, len(chunks))
	copy(newManifest, chunks)

	s.mu.Lock()
	s.vectors = newVectors
	s.manifest = newManifest
	s.mu.Unlock()
	return nil
}

// Search returns up to k rows ordered by inner-product score descending.
// Vectors are L2-normalized, so inner product equals cosine similarity.
// Ties are broken by lower row id for deterministic ordering.
func (s *Store) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != s.dim {
		return nil, domain.ErrDimensionMismatch
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.vectors) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(s.vectors))
	for i, v := range s.vectors {
		hits[i] = Hit{Row: i, Score: dot(v, query)}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Row < hits[j].Row
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// SearchChunks returns up to k matches ordered by inner-product score
// descending, resolving each row to its manifest entry under the same read
// lock as the scan. Query paths must use this instead of Search+Chunk so a
// concurrent rebuild can never pair scores from one index with manifest
// entries from another.
func (s *Store) SearchChunks(query []float32, k int) ([]Match, error) {
	if len(query) != s.dim {
		return nil, domain.ErrDimensionMismatch
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.vectors) == 0 {
		return nil, nil
	}

	matches := make([]Match, len(s.vectors))
	for i, v := range s.vectors {
		matches[i] = Match{Row: i, Score: dot(v, query), Chunk: s.manifest[i]}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Row < matches[j].Row
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Chunk returns the manifest entry for an index row.
func (s *Store) Chunk(row int) (domain.Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if row < 0 || row >= len(s.manifest) {
		return domain.Chunk{}, false
	}
	return s.manifest[row], true
}

// Chunks returns a copy of the manifest in row order.
func (s *Store) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.manifest))
	copy(out, s.manifest)
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
