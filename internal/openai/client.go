package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
	// DefaultCompletionModel is the model used for answer summarization
	DefaultCompletionModel = "gpt-4o-mini"

	completionSystemPrompt = "You are a helpful assistant. Answer ONLY from the given text."
)

var (
	// ErrEmptyBatch is returned when no texts are provided
	ErrEmptyBatch = errors.New("texts cannot be empty")
	// ErrWrongDimensions is returned when an embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when no API key or local endpoint is configured
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrEmptyCompletion is returned when the completion response has no choices
	ErrEmptyCompletion = errors.New("no completion choices returned")
)

// API defines the upstream operations the client depends on.
type API interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	CreateChatCompletion(ctx context.Context, model, system, prompt string) (string, error)
}

// Client wraps an OpenAI-compatible endpoint for embeddings and completions.
type Client struct {
	api        API
	dimensions int
}

type Adapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewAdapter(apiKey, baseURL string, model openai.EmbeddingModel) *Adapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Adapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// CreateEmbeddings calls the embeddings endpoint for a batch of texts.
func (a *Adapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// CreateChatCompletion calls the chat endpoint and returns the first choice.
func (a *Adapter) CreateChatCompletion(ctx context.Context, model, system, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      string
	EmbeddingDimensions int
}

// NewClient creates a new client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		api:        NewAdapter(cfg.APIKey, cfg.BaseURL, openai.EmbeddingModel(cfg.EmbeddingModel)),
		dimensions: dimensions,
	}
}

// NewClientFromEnv creates a new client using the OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// GenerateEmbeddings generates one embedding per input text, validating
// that every vector has the configured dimensionality.
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}

	embeddings, err := c.api.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	expected := c.dimensions
	if expected <= 0 {
		expected = DefaultEmbeddingDimensions
	}
	for _, e := range embeddings {
		if len(e) != expected {
			return nil, ErrWrongDimensions
		}
	}

	return embeddings, nil
}

// Complete sends a single prompt and returns the generated text.
func (c *Client) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = DefaultCompletionModel
	}
	text, err := c.api.CreateChatCompletion(ctx, model, completionSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}
	return text, nil
}
