package docstore

import (
	"context"
	"strings"
	"testing"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamma-omg/docqa/chunk"
)

func Test_SegmentID(t *testing.T) {
	assert.Equal(t, "doc-42:0", SegmentID("doc-42", 0))
	assert.Equal(t, "doc-42:17", SegmentID("doc-42", 17))
}

func Test_Upsert_LengthMismatch(t *testing.T) {
	x := &ChromaIndex{}

	segs := []chunk.Segment{{Seq: 0, Text: "a"}, {Seq: 1, Text: "b"}}
	vectors := [][]float32{{1, 2}}

	err := x.Upsert(context.Background(), "doc", segs, vectors)
	assert.Error(t, err)
}

func Test_Upsert_DimensionMismatch(t *testing.T) {
	x := &ChromaIndex{}

	segs := []chunk.Segment{{Seq: 0, Text: "a"}, {Seq: 1, Text: "b"}}
	vectors := [][]float32{{1, 2, 3}, {1, 2}}

	err := x.Upsert(context.Background(), "doc", segs, vectors)
	assert.Error(t, err)
}

func Test_Upsert_EmptySegmentsIsNoop(t *testing.T) {
	x := &ChromaIndex{}

	require.NoError(t, x.Upsert(context.Background(), "doc", nil, nil))
}

func Test_Query_RejectsNonPositiveTopK(t *testing.T) {
	x := &ChromaIndex{}

	_, err := x.Query(context.Background(), []float32{1}, 0, "")
	assert.Error(t, err)

	_, err = x.Query(context.Background(), []float32{1}, -3, "")
	assert.Error(t, err)
}

func Test_similarityFromDistance(t *testing.T) {
	assert.InDelta(t, 1.0, similarityFromDistance(embeddings.Distance(0)), 1e-6)
	assert.InDelta(t, 0.1, similarityFromDistance(embeddings.Distance(0.9)), 1e-6)
	assert.InDelta(t, -1.0, similarityFromDistance(embeddings.Distance(2)), 1e-6)
}

func Test_sortMatches_DescendingScore(t *testing.T) {
	matches := []Match{
		{ID: "d:2", Seq: 2, Score: 0.4},
		{ID: "d:0", Seq: 0, Score: 0.9},
		{ID: "d:1", Seq: 1, Score: 0.7},
	}

	sortMatches(matches)

	assert.Equal(t, []string{"d:0", "d:1", "d:2"}, ids(matches))
}

func Test_sortMatches_TieBreaks(t *testing.T) {
	matches := []Match{
		{ID: "b:3", DocumentID: "b", Seq: 3, Score: 0.5},
		{ID: "b:1", DocumentID: "b", Seq: 1, Score: 0.5},
		{ID: "a:1", DocumentID: "a", Seq: 1, Score: 0.5},
		{ID: "a:0", DocumentID: "a", Seq: 0, Score: 0.8},
	}

	sortMatches(matches)

	assert.Equal(t, []string{"a:0", "a:1", "b:1", "b:3"}, ids(matches))
}

func Test_snippet(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, snippet(short))

	long := strings.Repeat("x", 500)
	assert.Len(t, snippet(long), 200)
}

func ids(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.ID)
	}

	return out
}
