package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/config"
	"github.com/pranav-un/kortex/internal/models"
	"github.com/pranav-un/kortex/internal/vectorstore"
)

// fakeStore implements Store in memory.
type fakeStore struct {
	docs        map[uuid.UUID]*models.Document
	chunks      map[uuid.UUID]models.DocumentChunk
	saved       []models.DocumentChunk
	deletedDocs []uuid.UUID
	flags       map[uuid.UUID]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:   make(map[uuid.UUID]*models.Document),
		chunks: make(map[uuid.UUID]models.DocumentChunk),
		flags:  make(map[uuid.UUID]bool),
	}
}

func (s *fakeStore) GetDocument(_ context.Context, _, documentID uuid.UUID) (*models.Document, error) {
	doc, ok := s.docs[documentID]
	if !ok {
		return nil, errors.New("document not found")
	}
	return doc, nil
}

func (s *fakeStore) SaveChunks(_ context.Context, chunks []models.DocumentChunk) error {
	s.saved = append(s.saved, chunks...)
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

func (s *fakeStore) DeleteChunks(_ context.Context, documentID uuid.UUID) error {
	s.deletedDocs = append(s.deletedDocs, documentID)
	for id, c := range s.chunks {
		if c.DocumentID == documentID {
			delete(s.chunks, id)
		}
	}
	return nil
}

func (s *fakeStore) ChunksByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.DocumentChunk, error) {
	out := make(map[uuid.UUID]models.DocumentChunk)
	for _, id := range ids {
		if c, ok := s.chunks[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (s *fakeStore) SetEmbeddingsGenerated(_ context.Context, documentID uuid.UUID, generated bool) error {
	s.flags[documentID] = generated
	return nil
}

// fakeVectors implements vectorstore.Store in memory.
type fakeVectors struct {
	results     []vectorstore.SearchResult
	lastLimit   int
	ensured     int
	upserted    []vectorstore.Point
	deletedDocs []uuid.UUID
	ensureErr   error
	upsertErr   error
	deleteErr   error
	searchErr   error
}

func (v *fakeVectors) EnsureCollection(context.Context, uuid.UUID) error {
	if v.ensureErr != nil {
		return v.ensureErr
	}
	v.ensured++
	return nil
}

func (v *fakeVectors) Upsert(_ context.Context, _ uuid.UUID, points []vectorstore.Point) error {
	if v.upsertErr != nil {
		return v.upsertErr
	}
	v.upserted = append(v.upserted, points...)
	return nil
}

func (v *fakeVectors) DeleteByDocument(_ context.Context, _, documentID uuid.UUID) error {
	if v.deleteErr != nil {
		return v.deleteErr
	}
	v.deletedDocs = append(v.deletedDocs, documentID)
	return nil
}

func (v *fakeVectors) DeleteCollection(context.Context, uuid.UUID) error { return nil }

func (v *fakeVectors) Search(_ context.Context, _ uuid.UUID, _ []float32, limit int) ([]vectorstore.SearchResult, error) {
	v.lastLimit = limit
	if v.searchErr != nil {
		return nil, v.searchErr
	}
	if len(v.results) > limit {
		return v.results[:limit], nil
	}
	return v.results, nil
}

// fakeEmbedder returns deterministic vectors.
type fakeEmbedder struct {
	batchErr error
	failIdx  map[int]bool // batch indexes that come back nil
}

func (e *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.batchErr != nil {
		return nil, e.batchErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		if e.failIdx[i] {
			continue
		}
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (e *fakeEmbedder) Dimension() int    { return 3 }
func (e *fakeEmbedder) ModelName() string { return "fake-model" }

// fakeLLM returns a canned completion.
type fakeLLM struct {
	resp    string
	err     error
	prompts []string
}

func (l *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	if l.err != nil {
		return "", l.err
	}
	return l.resp, nil
}

func (l *fakeLLM) Name() string  { return "fake" }
func (l *fakeLLM) Model() string { return "fake-model" }

func newTestPipeline(store *fakeStore, vectors *fakeVectors, embedder *fakeEmbedder, gen *fakeLLM) *Pipeline {
	return NewPipeline(store, vectors, embedder, gen, nil,
		config.ChunkingConfig{MinWords: 5, MaxWords: 10},
		config.RAGConfig{MaxContextTokens: 3000, ContextChunkLimit: 10, TokensPerWord: 1.3},
	)
}

func seedChunk(store *fakeStore, docID uuid.UUID, order, words int) models.DocumentChunk {
	c := models.DocumentChunk{
		ID:         uuid.New(),
		DocumentID: docID,
		ChunkText:  fmt.Sprintf("chunk %d of document %s", order, docID),
		ChunkOrder: order,
		WordCount:  words,
	}
	store.chunks[c.ID] = c
	return c
}
