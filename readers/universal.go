// Package readers extracts plain text from document files. File-format
// parsing is delegated to docconv; the rest of the pipeline only ever sees
// the extracted text.
package readers

import (
	"fmt"
	"path/filepath"

	"code.sajari.com/docconv/v2"
)

// UniversalFileReader converts the rich-document formats docconv understands.
type UniversalFileReader struct{}

func (r *UniversalFileReader) CanRead(path string) bool {
	switch filepath.Ext(path) {
	case ".pdf", ".docx", ".odt", ".rtf", ".html", ".xml":
		return true
	}

	return false
}

func (r *UniversalFileReader) ReadText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to convert document: %w", err)
	}

	return res.Body, nil
}
