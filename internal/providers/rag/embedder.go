package rag

import (
	"context"

	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
)

// Embedder wraps a langchaingo embedder behind the chromem EmbeddingFunc
// contract used by the semantic index.
type Embedder struct {
	impl *embeddings.EmbedderImpl
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.impl.EmbedQuery(ctx, text)
}

// Func adapts the embedder to chromem's per-document embedding callback.
func (e *Embedder) Func() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return e.impl.EmbedQuery(ctx, text)
	}
}
