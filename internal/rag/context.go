package rag

import (
	"fmt"
	"strings"

	"github.com/pranav-un/kortex/pkg/tokenizer"
)

// ContextWindow holds the chunks selected for a prompt and the token estimate
// they consume.
type ContextWindow struct {
	Chunks      []SearchMatch
	TotalTokens int
}

// buildContext walks matches in relevance order and keeps each chunk whose
// estimated tokens still fit the budget. The walk stops at the first chunk
// that would overflow, so the window is always a relevance-ordered prefix.
func buildContext(matches []SearchMatch, maxTokens int, tokensPerWord float64) ContextWindow {
	var window ContextWindow
	for _, m := range matches {
		tokens := tokenizer.EstimateTokens(m.WordCount, tokensPerWord)
		if window.TotalTokens+tokens > maxTokens {
			break
		}
		window.Chunks = append(window.Chunks, m)
		window.TotalTokens += tokens
	}
	return window
}

// renderPrompt assembles the final prompt sent to the model.
func renderPrompt(systemPrompt, question string, window ContextWindow) string {
	var sb strings.Builder
	sb.WriteString("SYSTEM: ")
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")
	sb.WriteString("CONTEXT:\n---\n")
	for i, chunk := range window.Chunks {
		fmt.Fprintf(&sb, "[Chunk %d - Relevance: %.3f]\n%s\n\n", i+1, chunk.Score, chunk.Text)
	}
	sb.WriteString("---\n\nQUESTION: ")
	sb.WriteString(question)
	sb.WriteString("\n\nANSWER: ")
	return sb.String()
}
