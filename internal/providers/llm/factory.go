package llm

import (
	"context"
	"fmt"

	"github.com/syllabot/syllabot/internal/config"
	"github.com/syllabot/syllabot/internal/core"
	"github.com/syllabot/syllabot/pkg/log"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens, cfg.Timeout), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.Timeout), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model, cfg.Timeout), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
