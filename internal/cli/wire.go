package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/behzad94/showcase-1/internal/audit"
	"github.com/behzad94/showcase-1/internal/chunker"
	"github.com/behzad94/showcase-1/internal/config"
	"github.com/behzad94/showcase-1/internal/domain"
	"github.com/behzad94/showcase-1/internal/ingest"
	"github.com/behzad94/showcase-1/internal/openai"
	"github.com/behzad94/showcase-1/internal/service"
	"github.com/behzad94/showcase-1/internal/store"
	"github.com/behzad94/showcase-1/internal/telemetry"
)

// pipeline is the composed retrieval-and-answer graph shared by the
// commands.
type pipeline struct {
	cfg     *config.Config
	svc     *service.RAGService
	store   *store.Store
	cleanup func()
}

func buildPipeline() (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	shutdownTelemetry := func() {}
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		shutdown, err := telemetry.Init(telemetry.Config{
			DSN:         dsn,
			Environment: os.Getenv("ENVIRONMENT"),
			Debug:       cfg.Debug,
		})
		if err == nil {
			shutdownTelemetry = shutdown
		}
	}

	chk, err := chunker.New(chunker.Config{ChunkSize: cfg.ChunkSize, Overlap: cfg.ChunkOverlap})
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.DataDir, cfg.EmbeddingDimensions, cfg.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})
	embedder := service.NewEmbeddingService(client)

	retriever := service.NewHybridRetriever(st, embedder, service.RetrieverConfig{
		OversampleFactor: cfg.OversampleFactor,
		MinCandidates:    cfg.MinCandidates,
		MaxCandidates:    cfg.MaxCandidates,
		KeywordWeight:    cfg.KeywordWeight,
		Margin:           cfg.Margin,
	})

	assembler := service.NewAnswerAssembler(retriever, client, audit.NewLogger(cfg.AuditLogPath), service.AssemblerConfig{
		TopK:                 cfg.TopK,
		ConfidenceThreshold:  cfg.ConfidenceThreshold,
		ConfidenceGap:        cfg.ConfidenceGap,
		SupportThreshold:     cfg.SupportThreshold,
		Summarize:            cfg.Summarize,
		CompletionModel:      cfg.CompletionModel,
		CompletionTimeout:    cfg.CompletionTimeout,
		ContextCharsPerChunk: 400,
		SnippetMaxChars:      320,
	})

	builder := service.NewIndexBuilder(chk, embedder, st, service.IndexBuilderConfig{
		BatchSize: cfg.EmbedBatchSize,
		Workers:   cfg.EmbedWorkers,
	})

	return &pipeline{
		cfg:     cfg,
		svc:     service.NewRAGService(assembler, builder),
		store:   st,
		cleanup: shutdownTelemetry,
	}, nil
}

// loadStore loads the persisted index. Missing artifacts mean an empty
// corpus (queries get a clarification); anything else corrupt demands a
// rebuild.
func (p *pipeline) loadStore() error {
	err := p.store.Load()
	if err == nil || errors.Is(err, domain.ErrIndexArtifactsMissing) {
		return nil
	}
	if domain.IsCode(err, domain.ErrCodeCorruptIndex) {
		return fmt.Errorf("persisted index is corrupt, run 'rebuild' to regenerate it: %w", err)
	}
	return err
}

// dirLoader adapts ingest.LoadDir to the jobs.DocumentLoader interface.
type dirLoader struct{}

func (dirLoader) LoadDir(dir string) ([]domain.Document, error) {
	return ingest.LoadDir(dir)
}
