package vectorstore

import (
	"context"

	"github.com/google/uuid"
)

// Point is one stored vector with the payload needed to hydrate the matching
// relational chunk later.
type Point struct {
	ID         uuid.UUID
	Vector     []float32
	DocumentID uuid.UUID
	ChunkOrder int
	WordCount  int
}

// SearchResult is a scored match from a similarity query. The payload fields
// come back from the store; the chunk itself is loaded from the database.
type SearchResult struct {
	ChunkID    uuid.UUID
	DocumentID uuid.UUID
	ChunkOrder int
	Score      float32
}

// Store persists and searches embedding vectors. Each user gets their own
// collection; userID scopes every operation.
type Store interface {
	EnsureCollection(ctx context.Context, userID uuid.UUID) error
	Upsert(ctx context.Context, userID uuid.UUID, points []Point) error
	DeleteByDocument(ctx context.Context, userID, documentID uuid.UUID) error
	DeleteCollection(ctx context.Context, userID uuid.UUID) error
	Search(ctx context.Context, userID uuid.UUID, vector []float32, limit int) ([]SearchResult, error)
}
