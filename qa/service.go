// Package qa composes chunking, embedding, vector search and the language
// model into the document question-answering pipeline.
package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamma-omg/docqa/chunk"
	"github.com/gamma-omg/docqa/docstore"
	"github.com/gamma-omg/docqa/embed"
	"github.com/gamma-omg/docqa/prompt"
)

// ErrModelCall reports a failed language model invocation. It is distinct
// from a malformed-but-received reply, which the parser absorbs.
var ErrModelCall = errors.New("model call failure")

// Completer is the language model seen as a black box: prompt in, completion
// out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VectorIndex is the slice of the vector store the pipeline depends on.
type VectorIndex interface {
	Upsert(ctx context.Context, docID string, segs []chunk.Segment, vectors [][]float32) error
	Query(ctx context.Context, vector []float32, topK int, filterDocID string) ([]docstore.Match, error)
	Delete(ctx context.Context, docID string) error
}

type Config struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	ContextChars int
	Style        prompt.Style
	EmbedRetries int
	RetryDelay   time.Duration
}

type Service struct {
	log      *slog.Logger
	embedder embed.Embedder
	index    VectorIndex
	model    Completer
	cfg      Config
}

func NewService(log *slog.Logger, embedder embed.Embedder, index VectorIndex, model Completer, cfg Config) *Service {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1200
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.TopK == 0 {
		cfg.TopK = 5
	}
	if cfg.ContextChars == 0 {
		cfg.ContextChars = prompt.DefaultContextChars
	}
	if cfg.Style == "" {
		cfg.Style = prompt.StyleConcise
	}
	if cfg.EmbedRetries == 0 {
		cfg.EmbedRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}

	return &Service{
		log:      log,
		embedder: embedder,
		index:    index,
		model:    model,
		cfg:      cfg,
	}
}

// Ingest chunks and embeds the document text and replaces the document's
// segments in the index. Nothing is written until every vector exists, so a
// failed ingestion leaves no partial upsert behind. Stale segments are
// dropped first: a document that shrank must not keep its old tail.
func (s *Service) Ingest(ctx context.Context, docID, text string) error {
	segs, err := chunk.Split(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("failed to chunk document %s: %w", docID, err)
	}
	if len(segs) == 0 {
		return s.index.Delete(ctx, docID)
	}

	texts := make([]string, 0, len(segs))
	for _, seg := range segs {
		texts = append(texts, seg.Text)
	}

	vectors, err := s.embedWithRetry(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed document %s: %w", docID, err)
	}

	if err := s.index.Delete(ctx, docID); err != nil {
		return fmt.Errorf("failed to drop stale segments of %s: %w", docID, err)
	}
	if err := s.index.Upsert(ctx, docID, segs, vectors); err != nil {
		return fmt.Errorf("failed to index document %s: %w", docID, err)
	}

	s.log.Info("ingested document", "doc_id", docID, "segments", len(segs))
	return nil
}

// Forget removes every segment of the document from the index.
func (s *Service) Forget(ctx context.Context, docID string) error {
	if err := s.index.Delete(ctx, docID); err != nil {
		return fmt.Errorf("failed to forget document %s: %w", docID, err)
	}

	return nil
}

// Answer retrieves the segments most similar to the question, assembles the
// bounded context, makes one blocking model call and parses the reply.
// Retrieval failures degrade to a raw-excerpt-only context instead of failing
// the question; only a failed model call is an error.
func (s *Service) Answer(ctx context.Context, docID, question, rawExcerpt string) (prompt.Answer, error) {
	matches := s.retrieve(ctx, docID, question)

	pctx := prompt.AssembleContext(matches, rawExcerpt, s.cfg.ContextChars)
	p := prompt.Build(pctx, question, s.cfg.Style)

	out, err := s.model.Complete(ctx, p)
	if err != nil {
		return prompt.Answer{}, fmt.Errorf("%w: %v", ErrModelCall, err)
	}

	return prompt.ParseAnswer(out), nil
}

// AnswerGeneral answers an open question without document context.
func (s *Service) AnswerGeneral(ctx context.Context, question string) (string, error) {
	out, err := s.model.Complete(ctx, prompt.BuildGeneral(question))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCall, err)
	}

	return out, nil
}

// Retrieve embeds the question and returns the top-k most similar segments.
// Passing an empty docID searches across all documents.
func (s *Service) Retrieve(ctx context.Context, docID, question string) ([]docstore.Match, error) {
	vecs, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: expected one query vector, got %d", embed.ErrEmbeddingService, len(vecs))
	}

	return s.index.Query(ctx, vecs[0], s.cfg.TopK, docID)
}

func (s *Service) retrieve(ctx context.Context, docID, question string) []docstore.Match {
	matches, err := s.Retrieve(ctx, docID, question)
	if err != nil {
		s.log.Warn("retrieval failed, answering from raw text only",
			"doc_id", docID, "error", err)
		return nil
	}

	return matches
}

// Embedding failures are retryable with exponential backoff; anything else
// fails immediately.
func (s *Service) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.EmbedRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay(s.cfg.RetryDelay, attempt-1)):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", embed.ErrEmbeddingService, ctx.Err())
			}
		}

		vectors, err := s.embedder.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if !errors.Is(err, embed.ErrEmbeddingService) {
			return nil, err
		}

		lastErr = err
		s.log.Warn("embedding attempt failed", "attempt", attempt, "error", err)
	}

	return nil, lastErr
}

func retryDelay(base time.Duration, attempt int) time.Duration {
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}

	return d
}
