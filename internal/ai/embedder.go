package ai

import (
	"context"
	"fmt"
)

// Embedder binds the client to one embedding model and dimension. The
// pairing is fixed for the lifetime of an index: the same function must be
// used at upsert time and query time, and vectors of a different dimension
// are rejected instead of being mixed into the store.
type Embedder struct {
	client *OpenAICompatibleClient
	cfg    EmbeddingConfig
	dim    int
}

func NewEmbedder(client *OpenAICompatibleClient, cfg EmbeddingConfig, dimension int) *Embedder {
	return &Embedder{client: client, cfg: cfg, dim: dimension}
}

func (e *Embedder) Dimension() int {
	return e.dim
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.client.Embed(ctx, e.cfg, text)
	if err != nil {
		return nil, err
	}
	if err := e.checkDimension(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.client.EmbedBatch(ctx, e.cfg, texts)
	if err != nil {
		return nil, err
	}
	for _, vec := range vecs {
		if err := e.checkDimension(vec); err != nil {
			return nil, err
		}
	}
	return vecs, nil
}

func (e *Embedder) checkDimension(vec []float32) error {
	if e.dim > 0 && len(vec) != e.dim {
		return fmt.Errorf("embedding dimension %d, expected %d", len(vec), e.dim)
	}
	return nil
}
