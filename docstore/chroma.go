// Package docstore persists segment vectors in a Chroma collection and
// serves top-k cosine similarity queries over them.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/gamma-omg/docqa/chunk"
)

// ErrIndexUnavailable reports that the underlying vector store could not be
// reached or refused the request. It is propagated, never swallowed here;
// callers may degrade to raw-text-only context.
var ErrIndexUnavailable = errors.New("vector index unavailable")

const (
	DocID   = "doc_id"
	Seq     = "seq"
	Snippet = "snippet"

	snippetChars = 200
)

// ChromaIndex stores one embedding record per segment under the composite id
// "{doc_id}:{seq}". The collection is created with cosine space; Chroma
// reports cosine distance, so query scores are inverted to the
// higher-is-more-similar contract.
type ChromaIndex struct {
	col chroma.Collection
}

type ChromaIndexConfig struct {
	BaseURL       string
	Collection    string
	EmbeddingFunc embeddings.EmbeddingFunction
}

func NewChromaIndex(ctx context.Context, cfg ChromaIndexConfig) (*ChromaIndex, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	name := cfg.Collection
	if name == "" {
		name = "docqa"
	}

	col, err := client.GetOrCreateCollection(ctx, name,
		chroma.WithEmbeddingFunctionCreate(cfg.EmbeddingFunc),
		chroma.WithCollectionMetadataCreate(
			chroma.NewMetadata(chroma.NewStringAttribute("hnsw:space", "cosine"))))
	if err != nil {
		return nil, fmt.Errorf("%w: get or create collection %s: %v", ErrIndexUnavailable, name, err)
	}

	return &ChromaIndex{col: col}, nil
}

// Upsert writes one record per segment. Re-upserting a composite id replaces
// its vector and metadata, so ingesting the same content twice leaves the
// index unchanged.
func (x *ChromaIndex) Upsert(ctx context.Context, docID string, segs []chunk.Segment, vectors [][]float32) error {
	if len(segs) != len(vectors) {
		return fmt.Errorf("segments and vectors length mismatch: %d vs %d", len(segs), len(vectors))
	}
	if len(segs) == 0 {
		return nil
	}

	dim := len(vectors[0])
	ids := make([]chroma.DocumentID, 0, len(segs))
	texts := make([]string, 0, len(segs))
	metas := make([]chroma.DocumentMetadata, 0, len(segs))
	embs := make([]embeddings.Embedding, 0, len(segs))
	for i, seg := range segs {
		if len(vectors[i]) != dim {
			return fmt.Errorf("vector dimension mismatch at segment %d: %d vs %d", i, len(vectors[i]), dim)
		}

		ids = append(ids, chroma.DocumentID(SegmentID(docID, seg.Seq)))
		texts = append(texts, seg.Text)
		metas = append(metas, chroma.NewDocumentMetadata(
			chroma.NewStringAttribute(DocID, docID),
			chroma.NewIntAttribute(Seq, int64(seg.Seq)),
			chroma.NewStringAttribute(Snippet, snippet(seg.Text)),
		))
		embs = append(embs, embeddings.NewEmbeddingFromFloat32(vectors[i]))
	}

	err := x.col.Upsert(ctx,
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithEmbeddings(embs...),
		chroma.WithMetadatas(metas...))
	if err != nil {
		return fmt.Errorf("%w: upsert %d segments of %s: %v", ErrIndexUnavailable, len(segs), docID, err)
	}

	return nil
}

// Query returns up to topK matches ranked by descending similarity. Asking
// for more matches than exist returns all available ones. Passing a non-empty
// filterDocID restricts matches to that document.
func (x *ChromaIndex) Query(ctx context.Context, vector []float32, topK int, filterDocID string) ([]Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top k must be positive, got %d", topK)
	}

	opts := []chroma.CollectionQueryOption{
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chroma.WithNResults(topK),
	}
	if filterDocID != "" {
		opts = append(opts, chroma.WithWhereQuery(chroma.EqString(DocID, filterDocID)))
	}

	r, err := x.col.Query(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrIndexUnavailable, err)
	}

	idGroups := r.GetIDGroups()
	docGroups := r.GetDocumentsGroups()
	metaGroups := r.GetMetadatasGroups()
	distGroups := r.GetDistancesGroups()
	if len(docGroups) == 0 || len(docGroups[0]) == 0 {
		return []Match{}, nil
	}

	docs := docGroups[0]
	metas := metaGroups[0]
	dists := distGroups[0]
	matches := make([]Match, 0, len(docs))
	for i := range docs {
		m := Match{
			Text:  docs[i].ContentString(),
			Score: similarityFromDistance(dists[i]),
		}
		if len(idGroups) > 0 && i < len(idGroups[0]) {
			m.ID = string(idGroups[0][i])
		}
		if docID, ok := metas[i].GetString(DocID); ok {
			m.DocumentID = docID
		}
		if seq, ok := metas[i].GetInt(Seq); ok {
			m.Seq = int(seq)
		}
		matches = append(matches, m)
	}

	sortMatches(matches)
	return matches, nil
}

// Delete removes every segment of the document. Deleting a document that was
// never ingested is a no-op.
func (x *ChromaIndex) Delete(ctx context.Context, docID string) error {
	err := x.col.Delete(ctx, chroma.WithWhereDelete(chroma.EqString(DocID, docID)))
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrIndexUnavailable, docID, err)
	}

	return nil
}

// Chroma's cosine space reports distance, where lower is closer. Queries
// promise the opposite, so scores are inverted here.
func similarityFromDistance(d embeddings.Distance) float32 {
	return 1 - float32(d)
}

// Descending similarity; ties broken by ascending seq, then document id,
// so identical inputs always rank identically.
func sortMatches(matches []Match) {
	slices.SortStableFunc(matches, func(a, b Match) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.Seq != b.Seq {
			return a.Seq - b.Seq
		}
		return strings.Compare(a.DocumentID, b.DocumentID)
	})
}

func snippet(text string) string {
	if len(text) <= snippetChars {
		return text
	}

	return text[:snippetChars]
}
