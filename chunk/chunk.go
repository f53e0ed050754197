// Package chunk splits raw document text into overlapping fixed-size
// segments used as the unit of retrieval.
package chunk

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter reports chunking parameters that can never produce a
// valid segmentation. It indicates a caller bug and is not retryable.
var ErrInvalidParameter = errors.New("invalid chunking parameter")

// Segment is an immutable slice of a document. Seq is zero-based and
// strictly increasing within the document; Offset is the byte position of
// the segment's first character in the original text.
type Segment struct {
	Seq    int
	Text   string
	Offset int
}

// Split walks a window of maxChars over text; each window after the first
// starts overlap characters before the previous window's end, so consecutive
// segments share overlap characters. Splitting happens at raw byte positions,
// not word boundaries: predictable sizing is preferred over linguistic
// correctness. Empty text yields no segments and no error.
func Split(text string, maxChars, overlap int) ([]Segment, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max chars must be positive, got %d", ErrInvalidParameter, maxChars)
	}
	if overlap >= maxChars {
		return nil, fmt.Errorf("%w: overlap %d >= max chars %d", ErrInvalidParameter, overlap, maxChars)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidParameter, overlap)
	}

	l := len(text)
	if l == 0 {
		return []Segment{}, nil
	}

	step := maxChars - overlap
	pos := 0
	segs := make([]Segment, 0, l/step+1)

	for {
		end := min(pos+maxChars, l)
		segs = append(segs, Segment{
			Seq:    len(segs),
			Text:   text[pos:end],
			Offset: pos,
		})
		if end >= l {
			break
		}

		pos = end - overlap
	}

	return segs, nil
}
