package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockAPI) CreateChatCompletion(ctx context.Context, model, system, prompt string) (string, error) {
	args := m.Called(ctx, model, system, prompt)
	return args.String(0), args.Error(1)
}

func TestGenerateEmbeddings_Success(t *testing.T) {
	mockAPI := new(MockAPI)
	client := &Client{api: mockAPI, dimensions: 3}

	texts := []string{"first", "second"}
	mockAPI.On("CreateEmbeddings", mock.Anything, texts).Return([][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}, nil)

	embeddings, err := client.GenerateEmbeddings(context.Background(), texts)

	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Len(t, embeddings[0], 3)
	mockAPI.AssertExpectations(t)
}

func TestGenerateEmbeddings_EmptyBatch(t *testing.T) {
	mockAPI := new(MockAPI)
	client := &Client{api: mockAPI, dimensions: 3}

	_, err := client.GenerateEmbeddings(context.Background(), nil)

	assert.ErrorIs(t, err, ErrEmptyBatch)
	mockAPI.AssertNotCalled(t, "CreateEmbeddings")
}

func TestGenerateEmbeddings_WrongDimensions(t *testing.T) {
	mockAPI := new(MockAPI)
	client := &Client{api: mockAPI, dimensions: 3}

	mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything).Return([][]float32{
		{1, 0},
	}, nil)

	_, err := client.GenerateEmbeddings(context.Background(), []string{"text"})

	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestGenerateEmbeddings_UpstreamError(t *testing.T) {
	mockAPI := new(MockAPI)
	client := &Client{api: mockAPI, dimensions: 3}

	cause := errors.New("rate limited")
	mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything).Return(nil, cause)

	_, err := client.GenerateEmbeddings(context.Background(), []string{"text"})

	assert.ErrorIs(t, err, cause)
}

func TestComplete_UsesDefaultModelAndSystemPrompt(t *testing.T) {
	mockAPI := new(MockAPI)
	client := &Client{api: mockAPI, dimensions: 3}

	mockAPI.On("CreateChatCompletion", mock.Anything, DefaultCompletionModel, completionSystemPrompt, "the prompt").
		Return("the answer", nil)

	text, err := client.Complete(context.Background(), "the prompt", "")

	require.NoError(t, err)
	assert.Equal(t, "the answer", text)
	mockAPI.AssertExpectations(t)
}

func TestComplete_ExplicitModel(t *testing.T) {
	mockAPI := new(MockAPI)
	client := &Client{api: mockAPI, dimensions: 3}

	mockAPI.On("CreateChatCompletion", mock.Anything, "llama3", completionSystemPrompt, mock.Anything).
		Return("ok", nil)

	_, err := client.Complete(context.Background(), "the prompt", "llama3")

	require.NoError(t, err)
	mockAPI.AssertExpectations(t)
}

func TestComplete_UpstreamError(t *testing.T) {
	mockAPI := new(MockAPI)
	client := &Client{api: mockAPI, dimensions: 3}

	cause := errors.New("timeout")
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", cause)

	_, err := client.Complete(context.Background(), "the prompt", "")

	assert.ErrorIs(t, err, cause)
}

func TestNewClientFromEnv_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()

	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNewClientWithConfig_DefaultDimensions(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "sk-test"})
	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)

	client = NewClientWithConfig(Config{APIKey: "sk-test", EmbeddingDimensions: 768})
	assert.Equal(t, 768, client.dimensions)
}
