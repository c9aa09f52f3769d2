package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/models"
	"github.com/pranav-un/kortex/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerNoMatches(t *testing.T) {
	gen := &fakeLLM{resp: "should not be called"}
	p := newTestPipeline(newFakeStore(), &fakeVectors{}, &fakeEmbedder{}, gen)

	answer, err := p.Answer(context.Background(), uuid.New(), "anything?")
	require.NoError(t, err)
	assert.Equal(t, noContextAnswer, answer.Answer)
	assert.Empty(t, answer.Citations)
	assert.Empty(t, gen.prompts)
}

func TestAnswerCitationsNumberedFromOne(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	docID := uuid.New()
	store.docs[docID] = &models.Document{ID: docID, OwnerID: userID, Filename: "notes.txt"}

	c1 := seedChunk(store, docID, 3, 100)
	c2 := seedChunk(store, docID, 7, 100)
	vectors := &fakeVectors{results: []vectorstore.SearchResult{
		{ChunkID: c1.ID, DocumentID: docID, Score: 0.9},
		{ChunkID: c2.ID, DocumentID: docID, Score: 0.8},
	}}
	gen := &fakeLLM{resp: "the answer"}

	p := newTestPipeline(store, vectors, &fakeEmbedder{}, gen)

	answer, err := p.Answer(context.Background(), userID, "question?")
	require.NoError(t, err)

	assert.Equal(t, "the answer", answer.Answer)
	assert.Equal(t, "fake", answer.Provider)
	assert.Equal(t, "fake-model", answer.Model)
	assert.Equal(t, 2, answer.ContextChunks)
	assert.Equal(t, 260, answer.TokensUsed) // 2 x ceil(100 x 1.3)

	require.Len(t, answer.Citations, 2)
	assert.Equal(t, 1, answer.Citations[0].Index)
	assert.Equal(t, 2, answer.Citations[1].Index)
	assert.Equal(t, c1.ID, answer.Citations[0].ChunkID)
	assert.Equal(t, c2.ID, answer.Citations[1].ChunkID)
	assert.Equal(t, "notes.txt", answer.Citations[0].DocumentName)
	assert.Equal(t, 3, answer.Citations[0].ChunkOrder)
	assert.Equal(t, 7, answer.Citations[1].ChunkOrder)
}

func TestAnswerUnknownDocumentPlaceholder(t *testing.T) {
	store := newFakeStore()
	docID := uuid.New() // no document record
	c := seedChunk(store, docID, 0, 100)
	vectors := &fakeVectors{results: []vectorstore.SearchResult{
		{ChunkID: c.ID, DocumentID: docID, Score: 0.9},
	}}

	p := newTestPipeline(store, vectors, &fakeEmbedder{}, &fakeLLM{resp: "ok"})

	answer, err := p.Answer(context.Background(), uuid.New(), "question?")
	require.NoError(t, err)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "Unknown Document", answer.Citations[0].DocumentName)
}

func TestAnswerExcerptTruncation(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	docID := uuid.New()
	store.docs[docID] = &models.Document{ID: docID, Filename: "long.txt"}

	long := strings.Repeat("x", 250)
	c := models.DocumentChunk{ID: uuid.New(), DocumentID: docID, ChunkText: long, WordCount: 1}
	store.chunks[c.ID] = c
	vectors := &fakeVectors{results: []vectorstore.SearchResult{
		{ChunkID: c.ID, DocumentID: docID, Score: 0.9},
	}}

	p := newTestPipeline(store, vectors, &fakeEmbedder{}, &fakeLLM{resp: "ok"})

	answer, err := p.Answer(context.Background(), userID, "question?")
	require.NoError(t, err)
	require.Len(t, answer.Citations, 1)

	excerpt := answer.Citations[0].Excerpt
	assert.Len(t, excerpt, 203)
	assert.True(t, strings.HasSuffix(excerpt, "..."))
	assert.Equal(t, long[:200], excerpt[:200])
}

func TestAnswerShortExcerptNotTruncated(t *testing.T) {
	assert.Equal(t, "short text", excerpt("short text"))
}

func TestAnswerLLMFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	docID := uuid.New()
	c := seedChunk(store, docID, 0, 100)
	vectors := &fakeVectors{results: []vectorstore.SearchResult{
		{ChunkID: c.ID, DocumentID: docID, Score: 0.9},
	}}

	p := newTestPipeline(store, vectors, &fakeEmbedder{}, &fakeLLM{err: errors.New("model down")})

	_, err := p.Answer(context.Background(), uuid.New(), "question?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate answer")
}

func TestAnswerInDocumentUsesScopedSearch(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	target := uuid.New()
	other := uuid.New()
	store.docs[target] = &models.Document{ID: target, Filename: "target.txt"}

	inDoc := seedChunk(store, target, 0, 100)
	outDoc := seedChunk(store, other, 0, 100)
	vectors := &fakeVectors{results: []vectorstore.SearchResult{
		{ChunkID: outDoc.ID, DocumentID: other, Score: 0.95},
		{ChunkID: inDoc.ID, DocumentID: target, Score: 0.90},
	}}

	p := newTestPipeline(store, vectors, &fakeEmbedder{}, &fakeLLM{resp: "scoped"})

	answer, err := p.AnswerInDocument(context.Background(), userID, target, "question?")
	require.NoError(t, err)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, target, answer.Citations[0].DocumentID)
}
