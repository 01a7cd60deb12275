package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))

	// Single short word: 1 token plus 10% overhead, rounded up.
	assert.Equal(t, 2, EstimateTokens("test"))

	// Medium word (5-8 letters) counts as two tokens.
	assert.Equal(t, 3, EstimateTokens("hello"))

	// Long words split into ~4-letter subwords.
	assert.Equal(t, 4, EstimateTokens("abcdefghijkl"))

	// Punctuation tokenizes separately from the word it is attached to.
	assert.Equal(t, 7, EstimateTokens("Hello, world!"))

	// Whitespace runs collapse into field boundaries.
	assert.Equal(t, 4, EstimateTokens("a   b\n\tc"))
}

// shortWords builds text whose estimate is exactly ceil(n * 1.1).
func shortWords(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestDetermineStrategyBoundaries(t *testing.T) {
	cases := []struct {
		words    int
		tokens   int
		strategy Strategy
	}{
		{3636, 4000, StrategyDirect},
		{3637, 4001, StrategyDirectWithCaution},
		{7272, 8000, StrategyDirectWithCaution},
		{7273, 8001, StrategyExtract},
		{90909, 100000, StrategyExtract},
		{90911, 100003, StrategyExtractRequired},
	}

	for _, tc := range cases {
		decision := DetermineStrategy(shortWords(tc.words))
		assert.Equal(t, tc.strategy, decision.Strategy, "words=%d", tc.words)
		assert.Equal(t, tc.tokens, decision.TokenCount, "words=%d", tc.words)
	}
}

func TestDetermineStrategyReasons(t *testing.T) {
	assert.Equal(t, "Content is short enough for direct processing",
		DetermineStrategy("short text").Reason)
	assert.Equal(t, "Content is moderate length, direct processing acceptable",
		DetermineStrategy(shortWords(5000)).Reason)
	assert.Equal(t, "Content is long, extraction recommended to preserve key information",
		DetermineStrategy(shortWords(10000)).Reason)
	assert.Equal(t, "Content exceeds safe context limits, extraction required",
		DetermineStrategy(shortWords(100000)).Reason)
}

func TestDetermineStrategyEmpty(t *testing.T) {
	decision := DetermineStrategy("")
	assert.Equal(t, StrategyDirect, decision.Strategy)
	assert.Equal(t, 0, decision.TokenCount)
}
