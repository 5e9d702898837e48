package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckhand-ai/deckhand/internal/models"
)

func chunk(doc string, idx, tokens int, emb []float32) models.DocumentChunk {
	return models.DocumentChunk{
		DocumentID: doc,
		ChunkIndex: idx,
		TokenCount: tokens,
		Embedding:  emb,
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs score 0 instead of erroring.
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func TestRetrieve_StopsAtBudget(t *testing.T) {
	query := []float32{1, 0}
	// Similarity order: d0 (1.0), d1 (~0.95), d2 (~0.7), d3 (~0.3), d4 (0).
	candidates := []models.DocumentChunk{
		chunk("d0", 0, 50, []float32{1, 0}),
		chunk("d1", 0, 80, []float32{1, 0.3}),
		chunk("d2", 0, 30, []float32{1, 1}),
		chunk("d3", 0, 90, []float32{0.3, 1}),
		chunk("d4", 0, 20, []float32{0, 1}),
	}

	got := Retrieve(query, candidates, 150)
	// 50 + 80 = 130 fits; adding 30 would be 160, so selection stops there
	// even though the 20-token chunk would still fit.
	require.Len(t, got, 2)
	assert.Equal(t, "d0", got[0].DocumentID)
	assert.Equal(t, "d1", got[1].DocumentID)

	total := 0
	for _, ch := range got {
		total += ch.TokenCount
	}
	assert.LessOrEqual(t, total, 150)
}

func TestRetrieve_RelevanceOrderNotDocumentOrder(t *testing.T) {
	query := []float32{1, 0}
	candidates := []models.DocumentChunk{
		chunk("doc", 0, 10, []float32{0, 1}),
		chunk("doc", 1, 10, []float32{1, 0}),
		chunk("doc", 2, 10, []float32{1, 0.5}),
	}
	got := Retrieve(query, candidates, 100)
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 0}, []int{got[0].ChunkIndex, got[1].ChunkIndex, got[2].ChunkIndex})
}

func TestRetrieve_EmptyStates(t *testing.T) {
	assert.Empty(t, Retrieve([]float32{1}, nil, 100))
	assert.Empty(t, Retrieve([]float32{1}, []models.DocumentChunk{
		chunk("d", 0, 500, []float32{1}),
	}, 100))
	assert.Empty(t, Retrieve([]float32{1}, []models.DocumentChunk{
		chunk("d", 0, 10, []float32{1}),
	}, 0))
}

func TestRetrieve_BudgetNeverExceeded(t *testing.T) {
	query := []float32{1, 1}
	candidates := []models.DocumentChunk{
		chunk("a", 0, 40, []float32{1, 1}),
		chunk("a", 1, 40, []float32{1, 0.9}),
		chunk("b", 0, 40, []float32{0.9, 1}),
	}
	for _, budget := range []int{0, 39, 40, 79, 80, 120, 1000} {
		total := 0
		for _, ch := range Retrieve(query, candidates, budget) {
			total += ch.TokenCount
		}
		assert.LessOrEqual(t, total, budget, "budget %d", budget)
	}
}

func TestRetrieve_Deterministic(t *testing.T) {
	query := []float32{1, 0}
	// All candidates score identically; tie-break must be stable.
	candidates := []models.DocumentChunk{
		chunk("b", 1, 10, []float32{1, 0}),
		chunk("a", 0, 10, []float32{1, 0}),
		chunk("a", 1, 10, []float32{1, 0}),
	}
	first := Retrieve(query, candidates, 25)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Retrieve(query, candidates, 25))
	}
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].DocumentID)
	assert.Equal(t, 0, first[0].ChunkIndex)
}
