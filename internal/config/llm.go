package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/syllabot/syllabot/pkg/log"
)

type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"anthropic"`
	Model    string `env:"LLM_MODEL" envDefault:"claude-sonnet-4-20250514"`

	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OllamaBaseURL    string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`

	// MaxTokens is the per-response generation cap.
	MaxTokens int `env:"LLM_MAX_TOKENS" envDefault:"800"`

	// Timeout bounds one engine round trip.
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse llm config")
	}
	return c
}
