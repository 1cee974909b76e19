package service

import (
	"context"
	"fmt"
	"math"

	"github.com/behzad94/showcase-1/internal/domain"
)

// A vector whose L2 norm falls below this is treated as degenerate input.
const normEpsilon = 1e-12

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingService turns texts into L2-normalized dense vectors so that
// inner product equals cosine similarity. Normalization happens here, never
// trusting the provider.
type EmbeddingService struct {
	client EmbeddingClient
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient) *EmbeddingService {
	return &EmbeddingService{client: client}
}

// Embed generates one normalized vector per input text. A zero-norm vector
// is an EMBEDDING_ERROR; same text always yields the same vector for a
// deterministic client.
func (s *EmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, domain.ErrEmptyEmbeddingSet
	}

	vectors, err := s.client.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbedding, "failed to generate embeddings", err)
	}
	if len(vectors) != len(texts) {
		return nil, domain.NewDomainError(domain.ErrCodeEmbedding,
			fmt.Sprintf("expected %d vectors, got %d", len(texts), len(vectors)))
	}

	for i, v := range vectors {
		if err := normalize(v); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// normalize divides v by its L2 norm in place.
func normalize(v []float32) error {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm < normEpsilon {
		return domain.ErrZeroNormEmbedding
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return nil
}
