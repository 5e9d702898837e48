package retrieval

import (
	"math"
	"sort"

	"github.com/deckhand-ai/deckhand/internal/models"
)

// Retrieve scores every candidate chunk against queryVec by cosine
// similarity, then greedily selects chunks in descending score order until
// the next one would exceed tokenBudget. Selection stops at the first chunk
// that does not fit; no backtracking into remaining budget.
//
// The result keeps relevance order, not document order — callers wanting
// document order must re-sort by ChunkIndex. Empty candidates or a budget
// no chunk fits in yield an empty result, which is a valid "no context"
// state for the caller. Deterministic for identical inputs.
func Retrieve(queryVec []float32, candidates []models.DocumentChunk, tokenBudget int) []models.DocumentChunk {
	if len(candidates) == 0 || tokenBudget <= 0 {
		return nil
	}

	type scored struct {
		chunk models.DocumentChunk
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, ch := range candidates {
		ranked[i] = scored{chunk: ch, score: CosineSimilarity(queryVec, ch.Embedding)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		// Stable tie-break keeps output deterministic across runs.
		a, b := ranked[i].chunk, ranked[j].chunk
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.ChunkIndex < b.ChunkIndex
	})

	var out []models.DocumentChunk
	used := 0
	for _, r := range ranked {
		if used+r.chunk.TokenCount > tokenBudget {
			break
		}
		out = append(out, r.chunk)
		used += r.chunk.TokenCount
	}
	return out
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched dimensions or a zero vector score 0 rather than erroring;
// such chunks simply rank last.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
