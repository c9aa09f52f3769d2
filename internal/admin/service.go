package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/document"
	"github.com/pranav-un/kortex/internal/rag"
	"github.com/pranav-un/kortex/internal/vectorstore"
)

// EmbeddingStatus summarizes embedding coverage for one user.
type EmbeddingStatus struct {
	TotalDocuments       int         `json:"total_documents"`
	TotalChunks          int         `json:"total_chunks"`
	EmbeddedChunks       int         `json:"embedded_chunks"`
	CompletionPercentage float64     `json:"completion_percentage"`
	FailedDocuments      []uuid.UUID `json:"failed_documents"`
}

// Service exposes the operational endpoints: embedding status, embedding
// retry, and vector collection maintenance.
type Service struct {
	docs      *document.Service
	pipeline  *rag.Pipeline
	vectors   vectorstore.Store
	startedAt time.Time
}

func NewService(docs *document.Service, pipeline *rag.Pipeline, vectors vectorstore.Store, startedAt time.Time) *Service {
	return &Service{
		docs:      docs,
		pipeline:  pipeline,
		vectors:   vectors,
		startedAt: startedAt,
	}
}

func (s *Service) EmbeddingStatus(ctx context.Context, ownerID uuid.UUID) (*EmbeddingStatus, error) {
	stats, err := s.docs.EmbeddingStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	status := &EmbeddingStatus{
		TotalDocuments:  stats.TotalDocuments,
		TotalChunks:     stats.TotalChunks,
		EmbeddedChunks:  stats.EmbeddedChunks,
		FailedDocuments: stats.FailedDocuments,
	}
	if stats.TotalChunks > 0 {
		status.CompletionPercentage = float64(stats.EmbeddedChunks) / float64(stats.TotalChunks) * 100
	}
	return status, nil
}

// RetryEmbeddings clears a document's stored vectors and flags, then runs the
// ingestion pipeline again from the document's stored text.
func (s *Service) RetryEmbeddings(ctx context.Context, ownerID, documentID uuid.UUID) (*rag.IngestResult, error) {
	doc, err := s.docs.GetDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.ExtractedText == nil || *doc.ExtractedText == "" {
		return nil, fmt.Errorf("document %s has no stored text to re-embed", documentID)
	}

	if err := s.docs.ResetEmbeddings(ctx, documentID); err != nil {
		return nil, err
	}

	return s.pipeline.ChunkAndEmbed(ctx, ownerID, documentID, *doc.ExtractedText)
}

// ResetCollection drops and recreates a user's vector collection. Chunk rows
// are untouched; vectors come back through per-document embedding retries.
func (s *Service) ResetCollection(ctx context.Context, userID uuid.UUID) error {
	if err := s.vectors.DeleteCollection(ctx, userID); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	if err := s.vectors.EnsureCollection(ctx, userID); err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	return nil
}

func (s *Service) Uptime() time.Duration {
	return time.Since(s.startedAt)
}
