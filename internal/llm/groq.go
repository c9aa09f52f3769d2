package llm

import (
	"context"
	"fmt"

	"github.com/pranav-un/kortex/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// GroqProvider uses Groq's OpenAI-compatible chat completions endpoint.
type GroqProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewGroqProvider(cfg config.LLMConfig) *GroqProvider {
	clientCfg := openai.DefaultConfig(cfg.GroqAPIKey)
	clientCfg.BaseURL = cfg.GroqAPIURL

	return &GroqProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.GroqModel,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

func (p *GroqProvider) Name() string  { return "groq" }
func (p *GroqProvider) Model() string { return p.model }

func (p *GroqProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("groq completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
