package rag

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const defaultTopK = 4

// Retriever embeds a question and queries the index for the top k passages.
type Retriever struct {
	index      Index
	embeddings Embedder
	topK       int
}

func NewRetriever(index Index, embeddings Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Retriever{index: index, embeddings: embeddings, topK: topK}
}

func (r *Retriever) Retrieve(ctx context.Context, question string) ([]Passage, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, validationErr("message", "is required")
	}

	vec, err := r.embeddings.Embed(ctx, q)
	if err != nil {
		return nil, dependencyErr("embed question", err)
	}

	passages, err := r.index.Search(ctx, vec, r.topK)
	if err != nil {
		return nil, dependencyErr("search index", err)
	}
	if len(passages) > r.topK {
		passages = passages[:r.topK]
	}
	return passages, nil
}

// CachedEmbedder serves repeated questions from an EmbeddingCache. Cache
// failures are logged and never fail the request.
type CachedEmbedder struct {
	next   Embedder
	cache  EmbeddingCache
	logger *zap.Logger
}

func NewCachedEmbedder(next Embedder, cache EmbeddingCache, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache, logger: logger}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, ok, err := c.cache.Get(ctx, text)
	if err != nil {
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}
	if ok {
		c.logger.Debug("embedding cache hit", zap.Int("dims", len(vec)))
		return vec, nil
	}

	vec, err = c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, text, vec); err != nil {
		c.logger.Warn("embedding cache write failed", zap.Error(err))
	}
	return vec, nil
}

var _ Embedder = (*CachedEmbedder)(nil)
