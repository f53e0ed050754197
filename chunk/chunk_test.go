package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Split(t *testing.T) {
	var cases = []struct {
		input   string
		size    int
		overlap int
		output  []string
	}{
		{input: "abcdefg", size: 3, overlap: 0, output: []string{"abc", "def", "g"}},
		{input: "abcdefg", size: 3, overlap: 1, output: []string{"abc", "cde", "efg"}},
		{input: "abcdefg", size: 9, overlap: 5, output: []string{"abcdefg"}},
		{input: "", size: 9, overlap: 5, output: []string{}},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			segs, err := Split(c.input, c.size, c.overlap)
			require.NoError(t, err)

			texts := make([]string, 0, len(segs))
			for _, s := range segs {
				texts = append(texts, s.Text)
			}
			assert.Equal(t, c.output, texts)
		})
	}
}

func Test_Split_InvalidParameters(t *testing.T) {
	var cases = []struct {
		size    int
		overlap int
	}{
		{size: 0, overlap: 0},
		{size: -1, overlap: 0},
		{size: 10, overlap: 10},
		{size: 10, overlap: 20},
		{size: 10, overlap: -1},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			_, err := Split("some text", c.size, c.overlap)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func Test_Split_SequenceAndOffsets(t *testing.T) {
	text := strings.Repeat("x", 2500)

	segs, err := Split(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, segs, 3)

	assert.Equal(t, 0, segs[0].Offset)
	assert.Equal(t, 800, segs[1].Offset)
	assert.Equal(t, 1600, segs[2].Offset)

	assert.Len(t, segs[0].Text, 1000)
	assert.Len(t, segs[1].Text, 1000)
	assert.Len(t, segs[2].Text, 900)

	for i, s := range segs {
		assert.Equal(t, i, s.Seq)
	}
}

func Test_Split_ConsecutiveSegmentsOverlap(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " +
		"Pack my box with five dozen liquor jugs. " +
		"How vexingly quick daft zebras jump."

	segs, err := Split(text, 40, 10)
	require.NoError(t, err)
	require.Greater(t, len(segs), 1)

	for i := 1; i < len(segs); i++ {
		prev, cur := segs[i-1], segs[i]
		assert.Equal(t, prev.Text[len(prev.Text)-10:], cur.Text[:10])
	}
}

// Concatenating each segment's non-overlapping suffix onto the first segment
// must reconstruct the original text exactly.
func Test_Split_CoversInput(t *testing.T) {
	var cases = []struct {
		text    string
		size    int
		overlap int
	}{
		{text: strings.Repeat("abc", 100), size: 17, overlap: 5},
		{text: strings.Repeat("z", 999), size: 100, overlap: 0},
		{text: "short", size: 1000, overlap: 200},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			segs, err := Split(c.text, c.size, c.overlap)
			require.NoError(t, err)

			var sb strings.Builder
			for j, s := range segs {
				if j == 0 {
					sb.WriteString(s.Text)
					continue
				}
				sb.WriteString(s.Text[c.overlap:])
			}
			assert.Equal(t, c.text, sb.String())
		})
	}
}

func Test_Split_Deterministic(t *testing.T) {
	text := strings.Repeat("determinism ", 50)

	first, err := Split(text, 64, 16)
	require.NoError(t, err)
	second, err := Split(text, 64, 16)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
