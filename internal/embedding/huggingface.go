package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pranav-un/kortex/internal/config"
)

// HuggingFaceProvider calls a HuggingFace-compatible inference endpoint.
// Hosted inference URLs have moved between hosts and path styles over time,
// so the provider walks a list of candidate endpoints and sticks with the
// first one that works. Only 404/410 responses advance the walk; any other
// failure is reported to the caller.
type HuggingFaceProvider struct {
	client    *http.Client
	apiToken  string
	modelName string
	dimension int
	batchSize int

	candidates []string

	mu       sync.Mutex
	resolved string
}

func NewHuggingFaceProvider(cfg config.EmbeddingConfig) *HuggingFaceProvider {
	var candidates []string
	if cfg.EmbeddingsURL != "" {
		candidates = append(candidates, cfg.EmbeddingsURL)
	}
	candidates = append(candidates,
		strings.TrimSuffix(cfg.APIURL, "/")+"/"+cfg.ModelName,
		"https://router.huggingface.co/pipeline/feature-extraction/"+cfg.ModelName,
		"https://api-inference.huggingface.co/pipeline/feature-extraction/"+cfg.ModelName,
		"https://router.huggingface.co/embeddings/"+cfg.ModelName,
		"https://api-inference.huggingface.co/embeddings/"+cfg.ModelName,
	)

	return &HuggingFaceProvider{
		client:     &http.Client{Timeout: 60 * time.Second},
		apiToken:   cfg.APIToken,
		modelName:  cfg.ModelName,
		dimension:  cfg.Dimension,
		batchSize:  cfg.BatchSize,
		candidates: candidates,
	}
}

func (p *HuggingFaceProvider) Dimension() int    { return p.dimension }
func (p *HuggingFaceProvider) ModelName() string { return p.modelName }

func (p *HuggingFaceProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in sub-batches. When a sub-batch request fails for
// a reason other than endpoint discovery, it degrades to per-item requests;
// items that still fail get a nil vector instead of failing the batch.
func (p *HuggingFaceProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	batchSize := p.batchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		sub := texts[start:end]

		vectors, err := p.request(ctx, sub)
		if err == nil && len(vectors) == len(sub) {
			results = append(results, vectors...)
			continue
		}
		if err != nil {
			slog.Warn("batch embedding failed, retrying items individually",
				"batch_start", start, "batch_size", len(sub), "error", err)
		} else {
			slog.Warn("batch embedding returned wrong vector count, retrying items individually",
				"expected", len(sub), "got", len(vectors))
		}

		for _, text := range sub {
			vec, itemErr := p.request(ctx, []string{text})
			if itemErr != nil || len(vec) == 0 {
				slog.Warn("embedding failed for item", "error", itemErr)
				results = append(results, nil)
				continue
			}
			results = append(results, vec[0])
		}
	}

	return results, nil
}

func (p *HuggingFaceProvider) request(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	resolved := p.resolved
	p.mu.Unlock()

	if resolved != "" {
		vectors, err, retryable := p.call(ctx, resolved, texts)
		if err == nil {
			return vectors, nil
		}
		if !retryable {
			return nil, err
		}
		// Resolved endpoint disappeared; walk the full list again.
		p.mu.Lock()
		p.resolved = ""
		p.mu.Unlock()
	}

	var lastErr error
	for _, url := range p.candidates {
		vectors, err, retryable := p.call(ctx, url, texts)
		if err == nil {
			p.mu.Lock()
			p.resolved = url
			p.mu.Unlock()
			return vectors, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all embedding endpoints failed: %w", lastErr)
}

// call performs one request. The third return reports whether the failure is
// an endpoint-not-found class (404/410) that should advance the fallback walk.
func (p *HuggingFaceProvider) call(ctx context.Context, url string, texts []string) ([][]float32, error, bool) {
	body, err := json.Marshal(p.payload(url, texts))
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err), false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err), false
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request to %s: %w", url, err), false
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err), false
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, fmt.Errorf("endpoint %s returned %d", url, resp.StatusCode), true
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding endpoint %s returned %d: %s", url, resp.StatusCode, truncateBody(data)), false
	}

	vectors, err := parseVectors(data, len(texts))
	if err != nil {
		return nil, fmt.Errorf("parse embedding response from %s: %w", url, err), false
	}
	return vectors, nil, false
}

func (p *HuggingFaceProvider) payload(url string, texts []string) any {
	if strings.Contains(url, "/embeddings/") || strings.HasSuffix(url, "/embeddings") {
		return map[string]any{
			"input": texts,
			"model": p.modelName,
		}
	}
	var inputs any = texts
	if len(texts) == 1 {
		inputs = texts[0]
	}
	return map[string]any{
		"inputs":  inputs,
		"options": map[string]bool{"wait_for_model": true},
	}
}

// parseVectors accepts the three response shapes hosted endpoints produce:
// a nested array (one row per input), a flat array (single input), or an
// OpenAI-style {"data":[{"embedding":[...]}]} object.
func parseVectors(data []byte, count int) ([][]float32, error) {
	var dataShape struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &dataShape); err == nil && len(dataShape.Data) > 0 {
		vectors := make([][]float32, len(dataShape.Data))
		for i, d := range dataShape.Data {
			vectors[i] = d.Embedding
		}
		return vectors, nil
	}

	var nested [][]float32
	if err := json.Unmarshal(data, &nested); err == nil && len(nested) > 0 {
		return nested, nil
	}

	var flat []float32
	if err := json.Unmarshal(data, &flat); err == nil && len(flat) > 0 {
		if count != 1 {
			return nil, fmt.Errorf("got a single vector for %d inputs", count)
		}
		return [][]float32{flat}, nil
	}

	return nil, fmt.Errorf("unrecognized response shape")
}

func truncateBody(data []byte) string {
	const max = 200
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
