package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pranav-un/kortex/internal/config"
)

// QdrantStore talks to Qdrant over its REST API. Collections are created
// with cosine distance and named "<prefix>_user_<userID>".
type QdrantStore struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	prefix    string
	dimension int
}

func NewQdrantStore(cfg config.QdrantConfig, dimension int) *QdrantStore {
	return &QdrantStore{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   cfg.URL,
		apiKey:    cfg.APIKey,
		prefix:    cfg.CollectionPrefix,
		dimension: dimension,
	}
}

func (s *QdrantStore) collectionName(userID uuid.UUID) string {
	return fmt.Sprintf("%s_user_%s", s.prefix, userID)
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, userID uuid.UUID) error {
	name := s.collectionName(userID)

	status, _, err := s.do(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("check collection %s: unexpected status %d", name, status)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	status, respBody, err := s.do(ctx, http.MethodPut, "/collections/"+name, body)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("create collection %s: status %d: %s", name, status, respBody)
	}
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, userID uuid.UUID, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	name := s.collectionName(userID)

	qdrantPoints := make([]map[string]any, 0, len(points))
	for _, p := range points {
		qdrantPoints = append(qdrantPoints, map[string]any{
			"id":     p.ID.String(),
			"vector": p.Vector,
			"payload": map[string]any{
				"documentId": p.DocumentID.String(),
				"chunkOrder": p.ChunkOrder,
				"wordCount":  p.WordCount,
			},
		})
	}

	status, respBody, err := s.do(ctx, http.MethodPut, "/collections/"+name+"/points?wait=true", map[string]any{
		"points": qdrantPoints,
	})
	if err != nil {
		return fmt.Errorf("upsert points into %s: %w", name, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("upsert points into %s: status %d: %s", name, status, respBody)
	}
	return nil
}

// DeleteByDocument removes every vector whose payload references the given
// document. A missing collection is treated as already clean.
func (s *QdrantStore) DeleteByDocument(ctx context.Context, userID, documentID uuid.UUID) error {
	name := s.collectionName(userID)

	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   "documentId",
					"match": map[string]any{"value": documentID.String()},
				},
			},
		},
	}
	status, respBody, err := s.do(ctx, http.MethodPost, "/collections/"+name+"/points/delete?wait=true", body)
	if err != nil {
		return fmt.Errorf("delete vectors for document %s: %w", documentID, err)
	}
	if status == http.StatusNotFound {
		return nil
	}
	if status != http.StatusOK {
		return fmt.Errorf("delete vectors for document %s: status %d: %s", documentID, status, respBody)
	}
	return nil
}

func (s *QdrantStore) DeleteCollection(ctx context.Context, userID uuid.UUID) error {
	name := s.collectionName(userID)

	status, respBody, err := s.do(ctx, http.MethodDelete, "/collections/"+name, nil)
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	if status == http.StatusNotFound {
		return nil
	}
	if status != http.StatusOK {
		return fmt.Errorf("delete collection %s: status %d: %s", name, status, respBody)
	}
	return nil
}

// Search returns the top matches by cosine similarity. A missing collection
// yields no results rather than an error, so a user who has never ingested
// anything just gets an empty answer.
func (s *QdrantStore) Search(ctx context.Context, userID uuid.UUID, vector []float32, limit int) ([]SearchResult, error) {
	name := s.collectionName(userID)

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	status, respBody, err := s.do(ctx, http.MethodPost, "/collections/"+name+"/points/search", body)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", name, err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search collection %s: status %d: %s", name, status, respBody)
	}

	var parsed struct {
		Result []struct {
			ID      string  `json:"id"`
			Score   float32 `json:"score"`
			Payload struct {
				DocumentID string `json:"documentId"`
				ChunkOrder int    `json:"chunkOrder"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		chunkID, err := uuid.Parse(r.ID)
		if err != nil {
			continue
		}
		docID, err := uuid.Parse(r.Payload.DocumentID)
		if err != nil {
			continue
		}
		results = append(results, SearchResult{
			ChunkID:    chunkID,
			DocumentID: docID,
			ChunkOrder: r.Payload.ChunkOrder,
			Score:      r.Score,
		})
	}
	return results, nil
}

func (s *QdrantStore) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
