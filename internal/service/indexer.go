package service

import (
	"context"
	"time"

	"github.com/behzad94/showcase-1/internal/chunker"
	"github.com/behzad94/showcase-1/internal/domain"
	"golang.org/x/sync/errgroup"
)

// BuildReport summarizes one index rebuild.
type BuildReport struct {
	ChunkCount  int           `json:"chunk_count"`
	VectorCount int           `json:"vector_count"`
	Duration    time.Duration `json:"duration"`
}

// BatchEmbedder embeds a batch of texts into normalized vectors.
type BatchEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorRebuilder is the write side of the vector store. Commit must
// persist the new pair before it starts serving it.
type VectorRebuilder interface {
	Commit(chunks []domain.Chunk, vectors [][]float32) error
}

// IndexBuilderConfig controls the embedding pipeline of a rebuild.
type IndexBuilderConfig struct {
	BatchSize int
	Workers   int
}

// DefaultIndexBuilderConfig provides sane defaults for rebuilds.
func DefaultIndexBuilderConfig() IndexBuilderConfig {
	return IndexBuilderConfig{
		BatchSize: 64,
		Workers:   4,
	}
}

// IndexBuilder orchestrates Chunker -> Embedder -> VectorStore. Rebuilds are
// idempotent: chunking and embedding are deterministic, so unchanged input
// produces an identical index+manifest pair. Any stage failure is a
// BUILD_ERROR and leaves both the serving index and the persisted pair
// untouched.
type IndexBuilder struct {
	chunker  *chunker.Chunker
	embedder BatchEmbedder
	store    VectorRebuilder
	cfg      IndexBuilderConfig
}

// NewIndexBuilder creates a new IndexBuilder instance
func NewIndexBuilder(c *chunker.Chunker, embedder BatchEmbedder, store VectorRebuilder, cfg IndexBuilderConfig) *IndexBuilder {
	if cfg.BatchSize <= 0 || cfg.Workers <= 0 {
		cfg = DefaultIndexBuilderConfig()
	}
	return &IndexBuilder{
		chunker:  c,
		embedder: embedder,
		store:    store,
		cfg:      cfg,
	}
}

// Rebuild chunks every document, embeds all chunks in bounded-concurrency
// batches, and replaces the store contents. Batch results are placed by
// offset so vector order matches chunk order regardless of scheduling.
func (b *IndexBuilder) Rebuild(ctx context.Context, docs []domain.Document) (*BuildReport, error) {
	start := time.Now()

	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeBuild, "invalid document", err)
		}
	}

	chunks := b.chunker.ChunkAll(docs)
	vectors := make([][]float32, len(chunks))

	if len(chunks) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.cfg.Workers)

		for offset := 0; offset < len(chunks); offset += b.cfg.BatchSize {
			offset := offset
			end := offset + b.cfg.BatchSize
			if end > len(chunks) {
				end = len(chunks)
			}
			texts := make([]string, end-offset)
			for i := offset; i < end; i++ {
				texts[i-offset] = chunks[i].Text
			}
			g.Go(func() error {
				batch, err := b.embedder.Embed(gctx, texts)
				if err != nil {
					return err
				}
				copy(vectors[offset:end], batch)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeBuild, "embedding stage failed, index left untouched", err)
		}
	}

	if err := b.store.Commit(chunks, vectors); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeBuild, "failed to commit index", err)
	}

	return &BuildReport{
		ChunkCount:  len(chunks),
		VectorCount: len(vectors),
		Duration:    time.Since(start),
	}, nil
}
