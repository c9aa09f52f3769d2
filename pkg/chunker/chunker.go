package chunker

import (
	"strings"
)

// Options control the word-count bounds for a chunk.
type Options struct {
	MinWords int // close at the next sentence boundary once reached
	MaxWords int // force-close regardless of sentence boundary
}

// TextChunk is one bounded, ordered slice of a document's text.
type TextChunk struct {
	Text      string
	Order     int // 0-based, contiguous
	WordCount int
	Start     int // character offset into the whitespace-normalized source
	End       int
}

func DefaultOptions() Options {
	return Options{
		MinWords: 150,
		MaxWords: 300,
	}
}

// Chunk splits text into ordered chunks of MinWords..MaxWords words.
// A chunk closes early once it holds MinWords words and the last word ends a
// sentence (. ! ?); at MaxWords it closes unconditionally. Blank input yields
// no chunks. Offsets count word lengths plus one separator space per boundary.
func Chunk(text string, opts Options) []TextChunk {
	if opts.MinWords <= 0 {
		opts.MinWords = 150
	}
	if opts.MaxWords < opts.MinWords {
		opts.MaxWords = opts.MinWords * 2
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []TextChunk
	order := 0
	pos := 0
	i := 0

	for i < len(words) {
		start := pos
		var sb strings.Builder
		wordCount := 0

		for i < len(words) && wordCount < opts.MaxWords {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
				pos++
			}
			word := words[i]
			sb.WriteString(word)
			pos += len(word)
			wordCount++
			i++

			if wordCount >= opts.MinWords && wordCount < opts.MaxWords && endsSentence(word) {
				break
			}
		}

		chunks = append(chunks, TextChunk{
			Text:      sb.String(),
			Order:     order,
			WordCount: wordCount,
			Start:     start,
			End:       pos,
		})
		order++
	}

	return chunks
}

func endsSentence(word string) bool {
	if word == "" {
		return false
	}
	switch word[len(word)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
