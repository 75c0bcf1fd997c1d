package rag

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Index is a prebuilt, read-only vector index.
type Index interface {
	Search(ctx context.Context, embedding []float32, k int) ([]Passage, error)
	Close() error
}

// EmbeddingCache stores question embeddings. A miss returns (nil, false, nil).
type EmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Set(ctx context.Context, text string, embedding []float32) error
}
