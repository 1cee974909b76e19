package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/behzad94/showcase-1/internal/domain"
	"github.com/behzad94/showcase-1/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQueryEmbedder is a mock implementation of QueryEmbedder
type MockQueryEmbedder struct {
	mock.Mock
}

func (m *MockQueryEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// fakeSearcher serves fixed chunks with fixed dense scores, independent of
// the query vector, so fused ranking can be asserted exactly.
type fakeSearcher struct {
	chunks []domain.Chunk
	scores []float32
}

func (f *fakeSearcher) SearchChunks(query []float32, k int) ([]store.Match, error) {
	matches := make([]store.Match, len(f.scores))
	for i, s := range f.scores {
		matches[i] = store.Match{Row: i, Score: s, Chunk: f.chunks[i]}
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

func (f *fakeSearcher) Len() int {
	return len(f.chunks)
}

func chunkWithText(seq int, text string) domain.Chunk {
	return domain.Chunk{
		ID:       domain.ChunkID("txt::doc.txt", seq),
		DocID:    "txt::doc.txt",
		Filename: "doc.txt",
		Seq:      seq,
		Text:     text,
	}
}

// Scores in these tests are powers of two so the fused arithmetic is exact
// in both float32 and float64.
func testRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		OversampleFactor: 4,
		MinCandidates:    10,
		MaxCandidates:    200,
		KeywordWeight:    0.25,
		Margin:           1.0,
	}
}

func TestHybridRetriever_KeywordBoostReordersDenseRanking(t *testing.T) {
	searcher := &fakeSearcher{
		chunks: []domain.Chunk{
			chunkWithText(0, "nothing relevant here"),
			chunkWithText(1, "sky color facts"),
		},
		scores: []float32{0.5, 0.375},
	}
	mockEmbedder := new(MockQueryEmbedder)
	mockEmbedder.On("EmbedQuery", mock.Anything, "sky color").Return([]float32{1, 0}, nil)

	r := NewHybridRetriever(searcher, mockEmbedder, testRetrieverConfig())
	results, err := r.Retrieve(context.Background(), "sky color", 3, false)

	require.NoError(t, err)
	require.Len(t, results, 2)

	// Row 1 wins on fused score despite the lower dense score:
	// 0.375 + 0.25*1.0 = 0.625 beats 0.5 + 0.25*0 = 0.5.
	assert.Equal(t, 1, results[0].Row)
	assert.Equal(t, 0.625, results[0].FusedScore)
	assert.Equal(t, 1.0, results[0].KeywordScore)
	assert.Equal(t, 0, results[1].Row)
	assert.Equal(t, 0.5, results[1].FusedScore)
	assert.Equal(t, 0, results[0].Rank)
	assert.Equal(t, 1, results[1].Rank)
	mockEmbedder.AssertExpectations(t)
}

func TestHybridRetriever_TieBreaksOnDenseThenRow(t *testing.T) {
	searcher := &fakeSearcher{
		chunks: []domain.Chunk{
			chunkWithText(0, "nothing relevant here"), // fused 0.5 + 0 = 0.5
			chunkWithText(1, "sky color facts"),       // fused 0.25 + 0.25 = 0.5
			chunkWithText(2, "nothing relevant here"), // fused 0.5 + 0 = 0.5
		},
		scores: []float32{0.5, 0.25, 0.5},
	}
	mockEmbedder := new(MockQueryEmbedder)
	mockEmbedder.On("EmbedQuery", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)

	r := NewHybridRetriever(searcher, mockEmbedder, testRetrieverConfig())
	results, err := r.Retrieve(context.Background(), "sky color", 3, false)

	require.NoError(t, err)
	require.Len(t, results, 3)

	// All fused scores equal 0.5: higher dense first, then lower row.
	assert.Equal(t, 0, results[0].Row)
	assert.Equal(t, 2, results[1].Row)
	assert.Equal(t, 1, results[2].Row)
}

func TestHybridRetriever_MarginFilterDropsDistantCandidates(t *testing.T) {
	searcher := &fakeSearcher{
		chunks: []domain.Chunk{
			chunkWithText(0, "nothing relevant here"),
			chunkWithText(1, "nothing relevant either"),
		},
		scores: []float32{0.875, 0.5},
	}
	mockEmbedder := new(MockQueryEmbedder)
	mockEmbedder.On("EmbedQuery", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)

	cfg := testRetrieverConfig()
	cfg.Margin = 0.05
	r := NewHybridRetriever(searcher, mockEmbedder, cfg)

	results, err := r.Retrieve(context.Background(), "unrelated question", 3, false)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Row)
}

func TestHybridRetriever_TruncatesToK(t *testing.T) {
	searcher := &fakeSearcher{
		chunks: []domain.Chunk{
			chunkWithText(0, "alpha"),
			chunkWithText(1, "beta"),
			chunkWithText(2, "gamma"),
			chunkWithText(3, "delta"),
		},
		scores: []float32{0.5, 0.5, 0.5, 0.5},
	}
	mockEmbedder := new(MockQueryEmbedder)
	mockEmbedder.On("EmbedQuery", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)

	r := NewHybridRetriever(searcher, mockEmbedder, testRetrieverConfig())
	results, err := r.Retrieve(context.Background(), "question", 2, false)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Rank)
	assert.Equal(t, 1, results[1].Rank)
}

func TestHybridRetriever_EmptyQueryOrZeroK(t *testing.T) {
	searcher := &fakeSearcher{
		chunks: []domain.Chunk{chunkWithText(0, "alpha")},
		scores: []float32{0.5},
	}
	mockEmbedder := new(MockQueryEmbedder)

	r := NewHybridRetriever(searcher, mockEmbedder, testRetrieverConfig())

	results, err := r.Retrieve(context.Background(), "   ", 3, false)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = r.Retrieve(context.Background(), "question", 0, false)
	require.NoError(t, err)
	assert.Empty(t, results)

	mockEmbedder.AssertNotCalled(t, "EmbedQuery")
}

func TestHybridRetriever_EmptyIndex(t *testing.T) {
	searcher := &fakeSearcher{}
	mockEmbedder := new(MockQueryEmbedder)

	r := NewHybridRetriever(searcher, mockEmbedder, testRetrieverConfig())

	results, err := r.Retrieve(context.Background(), "question", 3, false)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = r.Retrieve(context.Background(), "question", 3, true)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)

	mockEmbedder.AssertNotCalled(t, "EmbedQuery")
}

func TestHybridRetriever_EmbedderErrorPropagates(t *testing.T) {
	searcher := &fakeSearcher{
		chunks: []domain.Chunk{chunkWithText(0, "alpha")},
		scores: []float32{0.5},
	}
	mockEmbedder := new(MockQueryEmbedder)
	cause := errors.New("provider down")
	mockEmbedder.On("EmbedQuery", mock.Anything, mock.Anything).Return(nil, cause)

	r := NewHybridRetriever(searcher, mockEmbedder, testRetrieverConfig())

	_, err := r.Retrieve(context.Background(), "question", 3, false)
	assert.ErrorIs(t, err, cause)
}
