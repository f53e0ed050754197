// Package embed adapts an upstream embedding provider to a batched
// array-in/array-out contract with bounded input size.
package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// ErrEmbeddingService reports an upstream embedding failure (network, quota,
// malformed response). Callers decide whether to retry, skip or abort.
var ErrEmbeddingService = errors.New("embedding service failure")

const DefaultMaxChars = 8000

// Embedder maps texts to fixed-dimension vectors, one per input, in input
// order. All vectors returned by a single call share one dimension.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type embeddingFunction interface {
	EmbedDocuments(ctx context.Context, texts []string) ([]embeddings.Embedding, error)
}

// FunctionEmbedder wraps a chroma embedding function (OpenAI, Gemini, ...)
// behind the Embedder contract.
type FunctionEmbedder struct {
	log      *slog.Logger
	ef       embeddingFunction
	maxChars int
}

func NewFunctionEmbedder(ef embeddings.EmbeddingFunction, maxChars int, log *slog.Logger) *FunctionEmbedder {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	return &FunctionEmbedder{
		log:      log,
		ef:       ef,
		maxChars: maxChars,
	}
}

// Embed returns one vector per input text, preserving order. Inputs longer
// than the configured cap are truncated before the upstream call; truncation
// is logged so oversized segments stay diagnosable.
func (e *FunctionEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	prepared := make([]string, len(texts))
	for i, t := range texts {
		if len(t) > e.maxChars {
			e.log.Warn("truncating embedding input",
				"index", i, "chars", len(t), "max_chars", e.maxChars)
			t = t[:e.maxChars]
		}
		prepared[i] = t
	}

	embs, err := e.ef.EmbedDocuments(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingService, err)
	}
	if len(embs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrEmbeddingService, len(embs), len(texts))
	}

	vecs := make([][]float32, len(embs))
	dim := 0
	for i, emb := range embs {
		v := emb.ContentAsFloat32()
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty vector at index %d", ErrEmbeddingService, i)
		}
		if i == 0 {
			dim = len(v)
		} else if len(v) != dim {
			return nil, fmt.Errorf("%w: vector dimension %d at index %d, expected %d",
				ErrEmbeddingService, len(v), i, dim)
		}
		vecs[i] = v
	}

	return vecs, nil
}
