package service

import (
	"context"

	"github.com/behzad94/showcase-1/internal/domain"
	"github.com/behzad94/showcase-1/internal/telemetry"
)

// Assembler is the answer-assembly stage of the pipeline.
type Assembler interface {
	Assemble(ctx context.Context, query string) (*Answer, error)
}

// Builder is the index-rebuild stage of the pipeline.
type Builder interface {
	Rebuild(ctx context.Context, docs []domain.Document) (*BuildReport, error)
}

// RAGService is the facade consumed by external callers: a single Ask
// operation per query and a single RebuildIndex operation per corpus change.
type RAGService struct {
	assembler Assembler
	builder   Builder
}

// NewRAGService creates a new RAGService instance
func NewRAGService(assembler Assembler, builder Builder) *RAGService {
	return &RAGService{assembler: assembler, builder: builder}
}

// Ask answers a natural-language question over the indexed corpus.
func (s *RAGService) Ask(ctx context.Context, query string) (*Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.Ask", telemetry.SpanAttributes{
		Operation: "ask",
	})
	defer span.End()

	answer, err := s.assembler.Assemble(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return answer, nil
}

// RebuildIndex regenerates the whole index+manifest pair from the given
// documents.
func (s *RAGService) RebuildIndex(ctx context.Context, docs []domain.Document) (*BuildReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.RebuildIndex", telemetry.SpanAttributes{
		Operation: "rebuild",
		DocCount:  len(docs),
	})
	defer span.End()

	report, err := s.builder.Rebuild(ctx, docs)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return report, nil
}
