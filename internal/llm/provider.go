package llm

import (
	"context"
	"fmt"

	"github.com/pranav-un/kortex/internal/config"
)

// Provider generates a completion for an assembled prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
	Model() string
}

func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "groq":
		return NewGroqProvider(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
