package tokenizer

import (
	"math"
	"strings"
)

// DefaultTokensPerWord is a rough English ratio; exact counts would need a
// model-specific tokenizer.
const DefaultTokensPerWord = 1.3

// EstimateTokens converts a word count to an estimated token count using the
// given tokens-per-word ratio, rounding up.
func EstimateTokens(wordCount int, tokensPerWord float64) int {
	if wordCount <= 0 {
		return 0
	}
	if tokensPerWord <= 0 {
		tokensPerWord = DefaultTokensPerWord
	}
	return int(math.Ceil(float64(wordCount) * tokensPerWord))
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
