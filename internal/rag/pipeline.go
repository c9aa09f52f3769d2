package rag

import (
	"context"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/cache"
	"github.com/pranav-un/kortex/internal/config"
	"github.com/pranav-un/kortex/internal/embedding"
	"github.com/pranav-un/kortex/internal/llm"
	"github.com/pranav-un/kortex/internal/models"
	"github.com/pranav-un/kortex/internal/vectorstore"
)

// Store is the relational surface the pipeline needs. *document.Service
// implements it.
type Store interface {
	GetDocument(ctx context.Context, ownerID, documentID uuid.UUID) (*models.Document, error)
	SaveChunks(ctx context.Context, chunks []models.DocumentChunk) error
	DeleteChunks(ctx context.Context, documentID uuid.UUID) error
	ChunksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.DocumentChunk, error)
	SetEmbeddingsGenerated(ctx context.Context, documentID uuid.UUID, generated bool) error
}

// Pipeline wires chunking, embedding, vector search and generation into the
// ingest/search/answer operations the API exposes.
type Pipeline struct {
	store    Store
	vectors  vectorstore.Store
	embedder embedding.Provider
	llm      llm.Provider
	cache    *cache.Cache
	chunking config.ChunkingConfig
	cfg      config.RAGConfig
}

func NewPipeline(
	store Store,
	vectors vectorstore.Store,
	embedder embedding.Provider,
	llmProvider llm.Provider,
	c *cache.Cache,
	chunking config.ChunkingConfig,
	cfg config.RAGConfig,
) *Pipeline {
	return &Pipeline{
		store:    store,
		vectors:  vectors,
		embedder: embedder,
		llm:      llmProvider,
		cache:    c,
		chunking: chunking,
		cfg:      cfg,
	}
}
