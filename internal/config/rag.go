package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/syllabot/syllabot/pkg/log"
)

type RAGConfig struct {
	// ChunkSize and ChunkOverlap are character bounds for the chunking
	// pipeline.
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"800"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"100"`

	// MaxResults is the default k for similarity queries.
	MaxResults int `env:"MAX_RESULTS" envDefault:"5"`

	// TitleSimilarityFloor is the minimum catalog similarity below which a
	// course filter is treated as unresolved.
	TitleSimilarityFloor float64 `env:"TITLE_SIMILARITY_FLOOR" envDefault:"0.3"`

	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"ollama"`
	EmbeddingModel    string `env:"EMBEDDING_MODEL" envDefault:"nomic-embed-text"`
	EmbeddingBaseURL  string `env:"EMBEDDING_BASE_URL" envDefault:"http://localhost:11434"`
	EmbeddingAPIKey   string `env:"EMBEDDING_API_KEY"`
}

func NewRAGConfig(ctx context.Context) *RAGConfig {
	c := &RAGConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse rag config")
	}
	return c
}
