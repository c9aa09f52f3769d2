package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pranav-un/kortex/internal/config"
)

// OllamaProvider embeds text through a local Ollama instance. Ollama has no
// batch endpoint, so EmbedBatch issues one request per text.
type OllamaProvider struct {
	client    *http.Client
	baseURL   string
	modelName string
	dimension int
}

func NewOllamaProvider(cfg config.EmbeddingConfig) *OllamaProvider {
	return &OllamaProvider{
		client:    &http.Client{Timeout: 60 * time.Second},
		baseURL:   cfg.OllamaURL,
		modelName: cfg.ModelName,
		dimension: cfg.Dimension,
	}
}

func (p *OllamaProvider) Dimension() int    { return p.dimension }
func (p *OllamaProvider) ModelName() string { return p.modelName }

func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]string{
		"model":  p.modelName,
		"prompt": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, truncateBody(data))
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}
	return result.Embedding, nil
}

func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			slog.Warn("embedding failed for item", "error", err)
			results = append(results, nil)
			continue
		}
		results = append(results, vec)
	}
	return results, nil
}
