package embedding

import (
	"context"
	"fmt"

	"github.com/pranav-un/kortex/internal/config"
)

// Provider generates dense vectors for text. EmbedBatch returns one slot per
// input; a nil slot means embedding failed for that item and the caller should
// treat the item as not embedded rather than fail the whole batch.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}

func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case "huggingface":
		return NewHuggingFaceProvider(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
