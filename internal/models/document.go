package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	OwnerID             uuid.UUID `json:"owner_id" db:"owner_id"`
	Filename            string    `json:"filename" db:"filename"`
	ContentHash         string    `json:"content_hash,omitempty" db:"content_hash"`
	ExtractedText       *string   `json:"-" db:"extracted_text"`
	Summary             *string   `json:"summary,omitempty" db:"summary"`
	EmbeddingsGenerated bool      `json:"embeddings_generated" db:"embeddings_generated"`
	UploadedAt          time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// DocumentChunk is the relational record for one retrieval unit. For a given
// document the chunk orders form a contiguous 0..N-1 sequence; concatenating
// chunk texts in order reproduces the source words.
type DocumentChunk struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	DocumentID         uuid.UUID `json:"document_id" db:"document_id"`
	ChunkText          string    `json:"chunk_text" db:"chunk_text"`
	ChunkOrder         int       `json:"chunk_order" db:"chunk_order"`
	WordCount          int       `json:"word_count" db:"word_count"`
	StartPosition      int       `json:"start_position" db:"start_position"`
	EndPosition        int       `json:"end_position" db:"end_position"`
	Embedding          []float32 `json:"-" db:"embedding"`
	EmbeddingGenerated bool      `json:"embedding_generated" db:"embedding_generated"`
}
