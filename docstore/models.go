package docstore

import "fmt"

// Match is one retrieved segment. Transient: produced per query, never
// persisted. Score follows the normalized contract where higher means more
// similar.
type Match struct {
	ID         string
	DocumentID string
	Seq        int
	Text       string
	Score      float32
}

// SegmentID builds the composite vector-record id. The "{doc_id}:{seq}"
// format is a public contract other tooling relies on for debugging and
// export.
func SegmentID(docID string, seq int) string {
	return fmt.Sprintf("%s:%d", docID, seq)
}
