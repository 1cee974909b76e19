package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug bool `envconfig:"DEBUG" default:"false"`

	// Persisted index + manifest location and document corpus directory.
	DataDir      string `envconfig:"DATA_DIR" default:"data/index"`
	CorpusDir    string `envconfig:"CORPUS_DIR" default:"corpus"`
	AuditLogPath string `envconfig:"AUDIT_LOG_PATH" default:"logs/audit.jsonl"`

	// Embedding and completion endpoint. BaseURL may point at any
	// OpenAI-compatible server (e.g. a local Ollama instance).
	OpenAIAPIKey        string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string        `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel      string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	EmbeddingDimensions int           `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	CompletionModel     string        `envconfig:"COMPLETION_MODEL" default:"gpt-4o-mini"`
	CompletionTimeout   time.Duration `envconfig:"COMPLETION_TIMEOUT" default:"30s"`
	Summarize           bool          `envconfig:"SUMMARIZE" default:"true"`

	// Chunking policy (token windows).
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"50"`

	// Retrieval policy. KeywordWeight scales the lexical boost so it nudges
	// rather than dominates dense similarity. Margin keeps candidates close
	// to the best fused score.
	TopK             int     `envconfig:"TOP_K" default:"3"`
	OversampleFactor int     `envconfig:"OVERSAMPLE_FACTOR" default:"4"`
	MinCandidates    int     `envconfig:"MIN_CANDIDATES" default:"10"`
	MaxCandidates    int     `envconfig:"MAX_CANDIDATES" default:"200"`
	KeywordWeight    float64 `envconfig:"KEYWORD_WEIGHT" default:"0.15"`
	Margin           float64 `envconfig:"MARGIN" default:"0.05"`

	// Answer policy.
	ConfidenceThreshold float64 `envconfig:"CONFIDENCE_THRESHOLD" default:"0.18"`
	ConfidenceGap       float64 `envconfig:"CONFIDENCE_GAP" default:"0.04"`
	SupportThreshold    float64 `envconfig:"SUPPORT_THRESHOLD" default:"0.15"`

	// Rebuild pipeline.
	EmbedBatchSize int `envconfig:"EMBED_BATCH_SIZE" default:"64"`
	EmbedWorkers   int `envconfig:"EMBED_WORKERS" default:"4"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("RAG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != "" || c.OpenAIBaseURL != ""
}
