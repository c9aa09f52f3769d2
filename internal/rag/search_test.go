package rag

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchHydratesInScoreOrder(t *testing.T) {
	store := newFakeStore()
	docID := uuid.New()
	c1 := seedChunk(store, docID, 0, 100)
	c2 := seedChunk(store, docID, 1, 100)

	vectors := &fakeVectors{results: []vectorstore.SearchResult{
		{ChunkID: c2.ID, DocumentID: docID, ChunkOrder: 1, Score: 0.95},
		{ChunkID: c1.ID, DocumentID: docID, ChunkOrder: 0, Score: 0.70},
	}}

	p := newTestPipeline(store, vectors, &fakeEmbedder{}, &fakeLLM{})

	matches, err := p.Search(context.Background(), uuid.New(), "query", 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, c2.ID, matches[0].ChunkID)
	assert.Equal(t, float32(0.95), matches[0].Score)
	assert.Equal(t, c1.ID, matches[1].ChunkID)
	assert.Equal(t, c2.ChunkText, matches[0].Text)
}

func TestSearchDropsStaleVectorHits(t *testing.T) {
	store := newFakeStore()
	docID := uuid.New()
	live := seedChunk(store, docID, 0, 100)

	vectors := &fakeVectors{results: []vectorstore.SearchResult{
		{ChunkID: uuid.New(), DocumentID: docID, Score: 0.99}, // no chunk row
		{ChunkID: live.ID, DocumentID: docID, Score: 0.80},
	}}

	p := newTestPipeline(store, vectors, &fakeEmbedder{}, &fakeLLM{})

	matches, err := p.Search(context.Background(), uuid.New(), "query", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, live.ID, matches[0].ChunkID)
}

func TestSearchDefaultLimit(t *testing.T) {
	store := newFakeStore()
	vectors := &fakeVectors{}
	p := newTestPipeline(store, vectors, &fakeEmbedder{}, &fakeLLM{})

	_, err := p.Search(context.Background(), uuid.New(), "query", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, vectors.lastLimit)
}

func TestSearchInDocumentOverFetchesAndFilters(t *testing.T) {
	store := newFakeStore()
	target := uuid.New()
	other := uuid.New()

	var results []vectorstore.SearchResult
	var targetChunks []uuid.UUID
	for i := 0; i < 6; i++ {
		docID := target
		if i%2 == 1 {
			docID = other
		}
		c := seedChunk(store, docID, i, 100)
		results = append(results, vectorstore.SearchResult{
			ChunkID: c.ID, DocumentID: docID, ChunkOrder: i, Score: float32(1) - float32(i)*0.1,
		})
		if docID == target {
			targetChunks = append(targetChunks, c.ID)
		}
	}
	vectors := &fakeVectors{results: results}

	p := newTestPipeline(store, vectors, &fakeEmbedder{}, &fakeLLM{})

	matches, err := p.SearchInDocument(context.Background(), uuid.New(), target, "query", 2)
	require.NoError(t, err)

	// limit 2 is widened by the over-fetch factor before the filter runs
	assert.Equal(t, 10, vectors.lastLimit)
	require.Len(t, matches, 2)
	assert.Equal(t, targetChunks[0], matches[0].ChunkID)
	assert.Equal(t, targetChunks[1], matches[1].ChunkID)
	for _, m := range matches {
		assert.Equal(t, target, m.DocumentID)
	}
}

func TestSearchInDocumentNoMatchesForDocument(t *testing.T) {
	store := newFakeStore()
	other := uuid.New()
	c := seedChunk(store, other, 0, 100)
	vectors := &fakeVectors{results: []vectorstore.SearchResult{
		{ChunkID: c.ID, DocumentID: other, Score: 0.9},
	}}

	p := newTestPipeline(store, vectors, &fakeEmbedder{}, &fakeLLM{})

	matches, err := p.SearchInDocument(context.Background(), uuid.New(), uuid.New(), "query", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
