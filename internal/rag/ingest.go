package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/models"
	"github.com/pranav-un/kortex/internal/vectorstore"
	"github.com/pranav-un/kortex/pkg/chunker"
)

// IngestResult reports what an ingestion run produced.
type IngestResult struct {
	DocumentID     uuid.UUID `json:"document_id"`
	ChunkCount     int       `json:"chunk_count"`
	EmbeddedChunks int       `json:"embedded_chunks"`
	FullyEmbedded  bool      `json:"fully_embedded"`
}

// ChunkAndEmbed runs the full ingestion pipeline for a document's text. Any
// previous chunks and vectors for the document are replaced. Embedding and
// vector upsert failures degrade rather than abort: affected chunks are
// saved without vectors and the document stays marked as not fully embedded.
func (p *Pipeline) ChunkAndEmbed(ctx context.Context, userID, documentID uuid.UUID, text string) (*IngestResult, error) {
	if err := p.store.DeleteChunks(ctx, documentID); err != nil {
		return nil, fmt.Errorf("clear previous chunks: %w", err)
	}
	if err := p.vectors.DeleteByDocument(ctx, userID, documentID); err != nil {
		slog.Warn("failed to clear previous vectors, continuing",
			"document_id", documentID, "error", err)
	}

	textChunks := chunker.Chunk(text, chunker.Options{
		MinWords: p.chunking.MinWords,
		MaxWords: p.chunking.MaxWords,
	})
	if len(textChunks) == 0 {
		if err := p.store.SetEmbeddingsGenerated(ctx, documentID, false); err != nil {
			return nil, err
		}
		return &IngestResult{DocumentID: documentID}, nil
	}

	// The vector store must never block ingestion: chunks are saved either
	// way and vectors can be regenerated through an embedding retry.
	vectorsReady := true
	if err := p.vectors.EnsureCollection(ctx, userID); err != nil {
		slog.Warn("vector collection unavailable, skipping vector stage",
			"document_id", documentID, "error", err)
		vectorsReady = false
	}

	texts := make([]string, len(textChunks))
	for i, c := range textChunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		slog.Warn("embedding batch failed, saving chunks without vectors",
			"document_id", documentID, "error", err)
		vectors = make([][]float32, len(textChunks))
	}

	chunks := make([]models.DocumentChunk, len(textChunks))
	embedded := 0
	for i, tc := range textChunks {
		var vec []float32
		if i < len(vectors) {
			vec = vectors[i]
		}
		chunks[i] = models.DocumentChunk{
			ID:                 uuid.New(),
			DocumentID:         documentID,
			ChunkText:          tc.Text,
			ChunkOrder:         tc.Order,
			WordCount:          tc.WordCount,
			StartPosition:      tc.Start,
			EndPosition:        tc.End,
			Embedding:          vec,
			EmbeddingGenerated: vec != nil,
		}
		if vec != nil {
			embedded++
		}
	}

	if err := p.store.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	upsertOK := vectorsReady
	if embedded > 0 && vectorsReady {
		points := make([]vectorstore.Point, 0, embedded)
		for _, c := range chunks {
			if !c.EmbeddingGenerated {
				continue
			}
			points = append(points, vectorstore.Point{
				ID:         c.ID,
				Vector:     c.Embedding,
				DocumentID: c.DocumentID,
				ChunkOrder: c.ChunkOrder,
				WordCount:  c.WordCount,
			})
		}
		if err := p.vectors.Upsert(ctx, userID, points); err != nil {
			slog.Warn("vector upsert failed, chunks remain searchable after retry",
				"document_id", documentID, "error", err)
			upsertOK = false
		}
	}

	fullyEmbedded := embedded == len(chunks) && upsertOK
	if err := p.store.SetEmbeddingsGenerated(ctx, documentID, fullyEmbedded); err != nil {
		return nil, err
	}

	p.cache.InvalidateUser(ctx, userID.String())

	slog.Info("document ingested",
		"document_id", documentID,
		"chunks", len(chunks),
		"embedded", embedded,
		"fully_embedded", fullyEmbedded)

	return &IngestResult{
		DocumentID:     documentID,
		ChunkCount:     len(chunks),
		EmbeddedChunks: embedded,
		FullyEmbedded:  fullyEmbedded,
	}, nil
}

// DeleteDocumentData removes a document's chunks and vectors. The vector
// delete is tolerated on failure so a relational delete never blocks on the
// vector store being down.
func (p *Pipeline) DeleteDocumentData(ctx context.Context, userID, documentID uuid.UUID) error {
	if err := p.vectors.DeleteByDocument(ctx, userID, documentID); err != nil {
		slog.Warn("failed to delete vectors for document",
			"document_id", documentID, "error", err)
	}
	if err := p.store.DeleteChunks(ctx, documentID); err != nil {
		return err
	}
	p.cache.InvalidateUser(ctx, userID.String())
	return nil
}
