package readers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TxtFileReader_CanRead(t *testing.T) {
	r := TxtFileReader{}

	assert.True(t, r.CanRead("some/file.txt"))
	assert.True(t, r.CanRead("notes.md"))
	assert.False(t, r.CanRead("some/file.pdf"))
}

func Test_TxtFileReader_ReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	r := TxtFileReader{}
	txt, err := r.ReadText(path)
	require.NoError(t, err)

	assert.Equal(t, "hello world", txt)
}

func Test_TxtFileReader_ReadText_MissingFile(t *testing.T) {
	r := TxtFileReader{}

	_, err := r.ReadText(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func Test_UniversalFileReader_CanRead(t *testing.T) {
	r := UniversalFileReader{}

	assert.True(t, r.CanRead("some/file.pdf"))
	assert.True(t, r.CanRead("some/file.docx"))
	assert.True(t, r.CanRead("some/file.odt"))
	assert.True(t, r.CanRead("some/file.html"))
	assert.True(t, r.CanRead("some/file.xml"))
	assert.False(t, r.CanRead("some/file.txt"))
	assert.False(t, r.CanRead("some/file.bin"))
}
