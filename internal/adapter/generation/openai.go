package generation

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"kbrag/config"
	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// OpenAIGenerator produces completions through any OpenAI-compatible
// chat endpoint, including Ollama's /v1 API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// New builds a generator from configuration. Supported providers:
// "openai" and "ollama".
func New(cfg config.GenerationConfig) (port.Generator, error) {
	switch cfg.Provider {
	case "openai":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("%w: API key not found in environment variable %s", domain.ErrInvalidConfiguration, cfg.APIKeyEnv)
		}
		return newGenerator(apiKey, cfg), nil
	case "ollama":
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:11434/v1"
		}
		return newGenerator("ollama", cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown generation provider %q", domain.ErrInvalidConfiguration, cfg.Provider)
	}
}

func newGenerator(apiKey string, cfg config.GenerationConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate returns the model's completion for the prompt pair.
// An unreachable provider or an empty completion both report
// domain.ErrGenerationUnavailable.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", domain.ErrGenerationUnavailable)
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: blank completion", domain.ErrGenerationUnavailable)
	}
	return answer, nil
}

// ModelName returns the name of the generation model.
func (g *OpenAIGenerator) ModelName() string { return g.model }
