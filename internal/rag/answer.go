package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/cache"
)

const systemPrompt = `You are a helpful assistant that answers questions using the user's documents. Follow these rules:
1. Answer using only the information in the provided context.
2. If the context does not contain enough information to answer, say so clearly.
3. Reference chunks by their number when it supports the answer, e.g. "According to Chunk 2".
4. Keep answers concise and factual.
5. Never invent facts that are not in the context.
6. If chunks contradict each other, point out the discrepancy.`

const noContextAnswer = "I couldn't find any relevant information in your documents to answer this question."

// Citation points an answer back at the chunk that supported it. Index
// matches the chunk numbering used in the prompt, starting at 1.
type Citation struct {
	Index        int       `json:"index"`
	ChunkID      uuid.UUID `json:"chunk_id"`
	DocumentID   uuid.UUID `json:"document_id"`
	DocumentName string    `json:"document_name"`
	ChunkOrder   int       `json:"chunk_order"`
	Excerpt      string    `json:"excerpt"`
	Score        float32   `json:"score"`
}

// Answer is a generated answer with its supporting citations.
type Answer struct {
	Answer        string     `json:"answer"`
	Citations     []Citation `json:"citations"`
	ContextChunks int        `json:"context_chunks"`
	TokensUsed    int        `json:"tokens_used"`
	Provider      string     `json:"provider"`
	Model         string     `json:"model"`
}

// Answer answers a question from all of the user's documents.
func (p *Pipeline) Answer(ctx context.Context, userID uuid.UUID, question string) (*Answer, error) {
	key := cache.Key("kortex", "answer", userID.String(), question)

	var cached Answer
	if ok, err := p.cache.Get(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	}

	matches, err := p.Search(ctx, userID, question, p.cfg.ContextChunkLimit)
	if err != nil {
		return nil, err
	}

	answer, err := p.answerFrom(ctx, userID, question, matches)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, answer); err != nil {
		slog.Warn("failed to cache answer", "error", err)
	}
	return answer, nil
}

// AnswerInDocument answers a question using only one document.
func (p *Pipeline) AnswerInDocument(ctx context.Context, userID, documentID uuid.UUID, question string) (*Answer, error) {
	matches, err := p.SearchInDocument(ctx, userID, documentID, question, p.cfg.ContextChunkLimit)
	if err != nil {
		return nil, err
	}
	return p.answerFrom(ctx, userID, question, matches)
}

func (p *Pipeline) answerFrom(ctx context.Context, userID uuid.UUID, question string, matches []SearchMatch) (*Answer, error) {
	if len(matches) == 0 {
		return &Answer{Answer: noContextAnswer, Provider: p.llm.Name(), Model: p.llm.Model()}, nil
	}

	window := buildContext(matches, p.cfg.MaxContextTokens, p.cfg.TokensPerWord)
	if len(window.Chunks) == 0 {
		return &Answer{Answer: noContextAnswer, Provider: p.llm.Name(), Model: p.llm.Model()}, nil
	}

	prompt := renderPrompt(systemPrompt, question, window)

	text, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Answer{
		Answer:        text,
		Citations:     p.citations(ctx, userID, window.Chunks),
		ContextChunks: len(window.Chunks),
		TokensUsed:    window.TotalTokens,
		Provider:      p.llm.Name(),
		Model:         p.llm.Model(),
	}, nil
}

// citations builds one citation per context chunk, numbered the same way the
// prompt numbers them. Document name lookups that fail fall back to a
// placeholder instead of failing the answer.
func (p *Pipeline) citations(ctx context.Context, userID uuid.UUID, chunks []SearchMatch) []Citation {
	names := make(map[uuid.UUID]string)

	citations := make([]Citation, 0, len(chunks))
	for i, chunk := range chunks {
		name, ok := names[chunk.DocumentID]
		if !ok {
			doc, err := p.store.GetDocument(ctx, userID, chunk.DocumentID)
			if err != nil {
				slog.Warn("failed to resolve document for citation",
					"document_id", chunk.DocumentID, "error", err)
				name = "Unknown Document"
			} else {
				name = doc.Filename
			}
			names[chunk.DocumentID] = name
		}

		citations = append(citations, Citation{
			Index:        i + 1,
			ChunkID:      chunk.ChunkID,
			DocumentID:   chunk.DocumentID,
			DocumentName: name,
			ChunkOrder:   chunk.ChunkOrder,
			Excerpt:      excerpt(chunk.Text),
			Score:        chunk.Score,
		})
	}
	return citations
}

func excerpt(text string) string {
	const max = 200
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
