package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/cache"
	"github.com/pranav-un/kortex/internal/vectorstore"
)

// SearchMatch is one semantic search hit, hydrated from the relational store.
type SearchMatch struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	DocumentID uuid.UUID `json:"document_id"`
	ChunkOrder int       `json:"chunk_order"`
	Text       string    `json:"text"`
	WordCount  int       `json:"word_count"`
	Score      float32   `json:"score"`
}

// overFetchFactor widens document-scoped searches so enough hits survive the
// client-side document filter.
const overFetchFactor = 5

// Search finds the chunks most similar to the query across all of the user's
// documents. Vector hits whose chunk row no longer exists are dropped.
func (p *Pipeline) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]SearchMatch, error) {
	if limit <= 0 {
		limit = p.cfg.ContextChunkLimit
	}

	vector, err := p.queryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := p.vectors.Search(ctx, userID, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return p.hydrate(ctx, hits)
}

// SearchInDocument restricts search to one document. The vector store has no
// per-document index, so it over-fetches and filters the hits client-side.
func (p *Pipeline) SearchInDocument(ctx context.Context, userID, documentID uuid.UUID, query string, limit int) ([]SearchMatch, error) {
	if limit <= 0 {
		limit = p.cfg.ContextChunkLimit
	}

	vector, err := p.queryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := p.vectors.Search(ctx, userID, vector, limit*overFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	filtered := make([]vectorstore.SearchResult, 0, limit)
	for _, h := range hits {
		if h.DocumentID != documentID {
			continue
		}
		filtered = append(filtered, h)
		if len(filtered) == limit {
			break
		}
	}

	return p.hydrate(ctx, filtered)
}

// hydrate loads chunk rows for vector hits, preserving score order. Hits
// without a matching row are stale vectors and are skipped.
func (p *Pipeline) hydrate(ctx context.Context, hits []vectorstore.SearchResult) ([]SearchMatch, error) {
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
	}

	chunks, err := p.store.ChunksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate chunks: %w", err)
	}

	matches := make([]SearchMatch, 0, len(hits))
	for _, h := range hits {
		chunk, ok := chunks[h.ChunkID]
		if !ok {
			slog.Debug("dropping stale vector hit", "chunk_id", h.ChunkID)
			continue
		}
		matches = append(matches, SearchMatch{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			ChunkOrder: chunk.ChunkOrder,
			Text:       chunk.ChunkText,
			WordCount:  chunk.WordCount,
			Score:      h.Score,
		})
	}
	return matches, nil
}

func (p *Pipeline) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	key := cache.Key("kortex", "qemb", query)

	var cached []float32
	if ok, err := p.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, vector); err != nil {
		slog.Warn("failed to cache query embedding", "error", err)
	}
	return vector, nil
}
