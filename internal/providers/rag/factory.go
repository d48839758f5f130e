package rag

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/syllabot/syllabot/internal/config"
	"github.com/syllabot/syllabot/pkg/log"
)

// NewEmbedder creates the configured embedding backend.
func NewEmbedder(ctx context.Context, cfg *config.RAGConfig) (*Embedder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.EmbeddingProvider).
		Str("model", cfg.EmbeddingModel).
		Msg("starting embedding provider")

	var client embeddings.EmbedderClient
	var err error

	switch cfg.EmbeddingProvider {
	case "openai":
		client, err = openai.New(
			openai.WithBaseURL(cfg.EmbeddingBaseURL),
			openai.WithToken(cfg.EmbeddingAPIKey),
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
		)
	case "ollama":
		client, err = ollama.New(
			ollama.WithServerURL(cfg.EmbeddingBaseURL),
			ollama.WithModel(cfg.EmbeddingModel),
		)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.EmbeddingProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("init embedding client: %w", err)
	}

	impl, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &Embedder{impl: impl}, nil
}
