package service

import (
	"context"
	"sort"
	"strings"

	"github.com/behzad94/showcase-1/internal/domain"
	"github.com/behzad94/showcase-1/internal/store"
)

// RetrieverConfig holds the hybrid ranking policy. KeywordWeight scales the
// lexical boost so it nudges rather than dominates dense similarity; Margin
// drops candidates far below the best fused score.
type RetrieverConfig struct {
	OversampleFactor int
	MinCandidates    int
	MaxCandidates    int
	KeywordWeight    float64
	Margin           float64
}

// DefaultRetrieverConfig provides sane defaults for hybrid retrieval.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		OversampleFactor: 4,
		MinCandidates:    10,
		MaxCandidates:    200,
		KeywordWeight:    0.15,
		Margin:           0.05,
	}
}

// RetrievalResult is one ranked candidate chunk. Transient, recomputed per
// query.
type RetrievalResult struct {
	Row          int
	Chunk        domain.Chunk
	DenseScore   float64
	KeywordScore float64
	FusedScore   float64
	Rank         int
}

// VectorSearcher is the read side of the vector store. SearchChunks must
// resolve rows to manifest entries under the same snapshot as the scan.
type VectorSearcher interface {
	SearchChunks(query []float32, k int) ([]store.Match, error)
	Len() int
}

// QueryEmbedder embeds a query string into a normalized vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// HybridRetriever ranks chunks by dense similarity plus a keyword-overlap
// boost: fused = dense + keywordWeight * overlap fraction.
type HybridRetriever struct {
	store    VectorSearcher
	embedder QueryEmbedder
	cfg      RetrieverConfig
}

// NewHybridRetriever creates a new HybridRetriever instance
func NewHybridRetriever(s VectorSearcher, embedder QueryEmbedder, cfg RetrieverConfig) *HybridRetriever {
	if cfg.OversampleFactor <= 0 {
		cfg = DefaultRetrieverConfig()
	}
	return &HybridRetriever{store: s, embedder: embedder, cfg: cfg}
}

// Retrieve returns the top k chunks by fused score, descending. Ties break
// on higher dense score, then lower row id, so identical inputs always rank
// identically. An empty index returns an empty slice unless requireNonempty
// is set, which makes it a RETRIEVAL_ERROR.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, k int, requireNonempty bool) ([]RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return []RetrievalResult{}, nil
	}

	if r.store.Len() == 0 {
		if requireNonempty {
			return nil, domain.ErrEmptyIndex
		}
		return []RetrievalResult{}, nil
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := k * r.cfg.OversampleFactor
	if candidates < r.cfg.MinCandidates {
		candidates = r.cfg.MinCandidates
	}
	if candidates > r.cfg.MaxCandidates {
		candidates = r.cfg.MaxCandidates
	}

	matches, err := r.store.SearchChunks(queryVec, candidates)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval, "index search failed", err)
	}

	keywords := keywordSet(query)
	results := make([]RetrievalResult, 0, len(matches))
	for _, m := range matches {
		dense := float64(m.Score)
		kw := keywordOverlap(keywords, m.Chunk.Text)
		results = append(results, RetrievalResult{
			Row:          m.Row,
			Chunk:        m.Chunk,
			DenseScore:   dense,
			KeywordScore: kw,
			FusedScore:   dense + r.cfg.KeywordWeight*kw,
		})
	}
	if len(results) == 0 {
		return []RetrievalResult{}, nil
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		if results[i].DenseScore != results[j].DenseScore {
			return results[i].DenseScore > results[j].DenseScore
		}
		return results[i].Row < results[j].Row
	})

	// Margin filter: keep candidates close to the best fused score.
	best := results[0].FusedScore
	kept := results[:0]
	for _, res := range results {
		if res.FusedScore >= best-r.cfg.Margin {
			kept = append(kept, res)
		}
	}
	if k > len(kept) {
		k = len(kept)
	}
	kept = kept[:k]

	for i := range kept {
		kept[i].Rank = i
	}
	return kept, nil
}
