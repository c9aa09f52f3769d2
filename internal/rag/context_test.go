package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func match(words int, score float32) SearchMatch {
	return SearchMatch{Text: "text", WordCount: words, Score: score}
}

func TestBuildContextStopsAtFirstOverflow(t *testing.T) {
	// 250 words at 1.3 tokens/word is 325 tokens per chunk; a budget of 800
	// fits two chunks (650) and the third would overflow.
	matches := []SearchMatch{
		match(250, 0.9), match(250, 0.8), match(250, 0.7), match(250, 0.6), match(250, 0.5),
	}

	window := buildContext(matches, 800, 1.3)

	require.Len(t, window.Chunks, 2)
	assert.Equal(t, 650, window.TotalTokens)
	assert.Equal(t, float32(0.9), window.Chunks[0].Score)
	assert.Equal(t, float32(0.8), window.Chunks[1].Score)
}

func TestBuildContextDoesNotSkipPastOverflow(t *testing.T) {
	// The second chunk overflows; the third would fit but the walk has
	// already stopped, keeping the window a relevance-ordered prefix.
	matches := []SearchMatch{match(100, 0.9), match(500, 0.8), match(10, 0.7)}

	window := buildContext(matches, 200, 1.3)

	require.Len(t, window.Chunks, 1)
	assert.Equal(t, 130, window.TotalTokens)
}

func TestBuildContextEmptyInput(t *testing.T) {
	window := buildContext(nil, 3000, 1.3)
	assert.Empty(t, window.Chunks)
	assert.Zero(t, window.TotalTokens)
}

func TestBuildContextAllFit(t *testing.T) {
	matches := []SearchMatch{match(10, 0.9), match(10, 0.8)}
	window := buildContext(matches, 3000, 1.3)
	assert.Len(t, window.Chunks, 2)
	assert.Equal(t, 26, window.TotalTokens)
}

func TestRenderPromptLayout(t *testing.T) {
	window := ContextWindow{
		Chunks: []SearchMatch{
			{Text: "first chunk text", Score: 0.912},
			{Text: "second chunk text", Score: 0.850},
		},
	}

	prompt := renderPrompt("Be helpful.", "What is this?", window)

	assert.True(t, strings.HasPrefix(prompt, "SYSTEM: Be helpful.\n\nCONTEXT:\n---\n"))
	assert.Contains(t, prompt, "[Chunk 1 - Relevance: 0.912]\nfirst chunk text\n\n")
	assert.Contains(t, prompt, "[Chunk 2 - Relevance: 0.850]\nsecond chunk text\n\n")
	assert.True(t, strings.HasSuffix(prompt, "---\n\nQUESTION: What is this?\n\nANSWER: "))
}
