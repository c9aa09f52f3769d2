package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pranav-un/kortex/internal/models"
)

var ErrNotFound = errors.New("document not found")

// Service owns the relational side of the document store: document records
// and their chunk rows. Vector data lives in the vector store and is managed
// by the ingestion pipeline, not here.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

func (s *Service) CreateDocument(ctx context.Context, ownerID uuid.UUID, filename, text string) (*models.Document, error) {
	hash := sha256.Sum256([]byte(text))

	doc := &models.Document{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Filename:      filename,
		ContentHash:   hex.EncodeToString(hash[:]),
		ExtractedText: &text,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO documents (id, owner_id, filename, content_hash, extracted_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING uploaded_at
	`, doc.ID, doc.OwnerID, doc.Filename, doc.ContentHash, doc.ExtractedText).Scan(&doc.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

func (s *Service) GetDocument(ctx context.Context, ownerID, documentID uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, filename, content_hash, extracted_text, summary, embeddings_generated, uploaded_at
		FROM documents
		WHERE id = $1 AND owner_id = $2
	`, documentID, ownerID).Scan(
		&doc.ID, &doc.OwnerID, &doc.Filename, &doc.ContentHash,
		&doc.ExtractedText, &doc.Summary, &doc.EmbeddingsGenerated, &doc.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	return &doc, nil
}

func (s *Service) ListDocuments(ctx context.Context, ownerID uuid.UUID) ([]models.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, filename, content_hash, summary, embeddings_generated, uploaded_at
		FROM documents
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.ContentHash,
			&doc.Summary, &doc.EmbeddingsGenerated, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Service) DeleteDocument(ctx context.Context, ownerID, documentID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND owner_id = $2`, documentID, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) SetEmbeddingsGenerated(ctx context.Context, documentID uuid.UUID, generated bool) error {
	_, err := s.pool.Exec(ctx, `UPDATE documents SET embeddings_generated = $2 WHERE id = $1`, documentID, generated)
	if err != nil {
		return fmt.Errorf("update document embedding flag: %w", err)
	}
	return nil
}

func (s *Service) SaveSummary(ctx context.Context, documentID uuid.UUID, summary string) error {
	_, err := s.pool.Exec(ctx, `UPDATE documents SET summary = $2 WHERE id = $1`, documentID, summary)
	if err != nil {
		return fmt.Errorf("save document summary: %w", err)
	}
	return nil
}

func (s *Service) SaveChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(`
			INSERT INTO document_chunks
				(id, document_id, chunk_text, chunk_order, word_count, start_position, end_position, embedding, embedding_generated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, c.ID, c.DocumentID, c.ChunkText, c.ChunkOrder, c.WordCount,
			c.StartPosition, c.EndPosition, c.Embedding, c.EmbeddingGenerated)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return nil
}

func (s *Service) DeleteChunks(ctx context.Context, documentID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// OrderedChunks returns every chunk of a document in chunk order.
func (s *Service) OrderedChunks(ctx context.Context, documentID uuid.UUID) ([]models.DocumentChunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, chunk_text, chunk_order, word_count, start_position, end_position, embedding, embedding_generated
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_order
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ChunksByIDs hydrates chunk rows for vector search hits. IDs with no row
// are silently absent from the result; callers drop those hits.
func (s *Service) ChunksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.DocumentChunk, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.DocumentChunk{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, chunk_text, chunk_order, word_count, start_position, end_position, embedding, embedding_generated
		FROM document_chunks
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query chunks by ids: %w", err)
	}
	defer rows.Close()

	chunks, err := scanChunks(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.DocumentChunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}
	return byID, nil
}

// ResetEmbeddings clears stored vectors and embedding flags for a document
// so the ingestion pipeline can regenerate them.
func (s *Service) ResetEmbeddings(ctx context.Context, documentID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE document_chunks SET embedding = NULL, embedding_generated = FALSE WHERE document_id = $1
	`, documentID)
	if err != nil {
		return fmt.Errorf("reset chunk embeddings: %w", err)
	}
	if err := s.SetEmbeddingsGenerated(ctx, documentID, false); err != nil {
		return err
	}
	return nil
}

// EmbeddingStats aggregates per-owner embedding coverage for the admin API.
type EmbeddingStats struct {
	TotalDocuments  int
	TotalChunks     int
	EmbeddedChunks  int
	FailedDocuments []uuid.UUID
}

func (s *Service) EmbeddingStatus(ctx context.Context, ownerID uuid.UUID) (*EmbeddingStats, error) {
	var stats EmbeddingStats

	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT d.id),
			COUNT(c.id),
			COUNT(c.id) FILTER (WHERE c.embedding_generated)
		FROM documents d
		LEFT JOIN document_chunks c ON c.document_id = d.id
		WHERE d.owner_id = $1
	`, ownerID).Scan(&stats.TotalDocuments, &stats.TotalChunks, &stats.EmbeddedChunks)
	if err != nil {
		return nil, fmt.Errorf("aggregate embedding status: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT d.id
		FROM documents d
		JOIN document_chunks c ON c.document_id = d.id
		WHERE d.owner_id = $1 AND NOT c.embedding_generated
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query failed documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan failed document id: %w", err)
		}
		stats.FailedDocuments = append(stats.FailedDocuments, id)
	}
	return &stats, rows.Err()
}

func scanChunks(rows pgx.Rows) ([]models.DocumentChunk, error) {
	var chunks []models.DocumentChunk
	for rows.Next() {
		var c models.DocumentChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkText, &c.ChunkOrder, &c.WordCount,
			&c.StartPosition, &c.EndPosition, &c.Embedding, &c.EmbeddingGenerated); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
