package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Empty(t *testing.T) {
	assert.Empty(t, Chunk("", 100))
	assert.Empty(t, Chunk("   \n\t ", 100))
	assert.Empty(t, Chunk("...", 100))
	assert.Empty(t, Chunk("some text", 0))
}

func TestChunk_SingleChunkKeepsAllSentences(t *testing.T) {
	got := Chunk("This is sentence one. This is sentence two. This is sentence three.", 100)
	require.Len(t, got, 1)
	assert.Equal(t, "This is sentence one. This is sentence two. This is sentence three", got[0])
}

func TestChunk_FlushesAtBoundary(t *testing.T) {
	got := Chunk("One. Two. Three.", 8)
	assert.Equal(t, []string{"One. Two", "Three"}, got)
}

func TestChunk_TerminatorRunsAreOneBoundary(t *testing.T) {
	got := Chunk("Wow!!! Really?? Yes.", 100)
	require.Len(t, got, 1)
	assert.Equal(t, "Wow. Really. Yes", got[0])
}

func TestChunk_OversizedSentenceSlicedAtLimit(t *testing.T) {
	got := Chunk("abcdefghij", 4)
	require.Equal(t, []string{"abcd", "efghij"}, got)
	// The forced first slice is exactly the limit; the carried tail may
	// exceed it.
	assert.Equal(t, 4, utf8.RuneCountInString(got[0]))
}

func TestChunk_OversizedSentenceThenShortSentence(t *testing.T) {
	got := Chunk("abcdefghij. Hi", 4)
	assert.Equal(t, []string{"abcd", "efghij", "Hi"}, got)
}

func TestChunk_OversizedSentenceAgainstNonEmptyBufferKeptWhole(t *testing.T) {
	// "Gamma delta epsilon" overflows the buffer holding "Hi"; the buffer is
	// flushed and the long sentence becomes a chunk in full, not sliced.
	got := Chunk("Hi. Gamma delta epsilon.", 10)
	assert.Equal(t, []string{"Hi", "Gamma delta epsilon"}, got)
}

func TestChunk_NoTerminators(t *testing.T) {
	got := Chunk("just one long run of words with no stops", 100)
	require.Len(t, got, 1)
	assert.Equal(t, "just one long run of words with no stops", got[0])
}

func TestChunk_CoverageNoFragmentDroppedOrDuplicated(t *testing.T) {
	text := "Alpha beta. Gamma delta! Epsilon? Zeta"
	got := Chunk(text, 10)
	assert.Equal(t, []string{"Alpha beta", "Gamma delta", "Epsilon", "Zeta"}, got)
	// Rejoining with the internal separator reconstructs every sentence.
	assert.Equal(t, "Alpha beta. Gamma delta. Epsilon. Zeta", strings.Join(got, ". "))
}

func TestChunk_SanitizesInput(t *testing.T) {
	got := Chunk("Dirty\x00 text\x01here. Second\n\nsentence.", 100)
	require.Len(t, got, 1)
	assert.Equal(t, "Dirty text here. Second sentence", got[0])
}

func TestChunk_EmittedChunksAreSanitized(t *testing.T) {
	for _, max := range []int{3, 5, 8, 13, 50} {
		for _, c := range Chunk("Some sentences here. And more of them! Plus a really long trailing run without stops", max) {
			assert.Equal(t, Sanitize(c), c, "max=%d", max)
		}
	}
}

func TestChunk_SizeBoundExceptForcedSlack(t *testing.T) {
	const max = 12
	text := "Short one. Small bit. Tiny. Final words."
	for _, c := range Chunk(text, max) {
		// No individual sentence exceeds the limit, so every chunk obeys it.
		assert.LessOrEqual(t, utf8.RuneCountInString(c), max, "chunk %q", c)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := "Alpha. Beta! Gamma? Delta and a much longer sentence that keeps going."
	first := Chunk(text, 16)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Chunk(text, 16))
	}
}
