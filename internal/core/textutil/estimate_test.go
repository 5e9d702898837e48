package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("a"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("A", 100)))
	assert.Equal(t, 26, EstimateTokens(strings.Repeat("A", 101)))
}

func TestEstimateTokens_CountsRunesNotBytes(t *testing.T) {
	// Four two-byte runes are still four characters, one token.
	assert.Equal(t, 1, EstimateTokens("éééé"))
}

func TestEstimateTokens_Monotonic(t *testing.T) {
	prev := 0
	for n := 0; n <= 64; n++ {
		cur := EstimateTokens(strings.Repeat("x", n))
		assert.GreaterOrEqual(t, cur, prev, "length %d", n)
		prev = cur
	}
}

func TestEstimatePages(t *testing.T) {
	assert.Equal(t, 0, EstimatePages(""))
	assert.Equal(t, 1, EstimatePages("x"))
	assert.Equal(t, 1, EstimatePages(strings.Repeat("A", 2500)))
	assert.Equal(t, 2, EstimatePages(strings.Repeat("A", 2501)))
	assert.Equal(t, 2, EstimatePages(strings.Repeat("A", 5000)))
}
