package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()

	l, err := OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	return l
}

func Test_Ledger_PutGet(t *testing.T) {
	l := openTestLedger(t)

	entry := LedgerEntry{DocID: "abc123", Crc: 42, Excerpt: "first lines"}
	require.NoError(t, l.Put("docs/facts.txt", entry))

	got, found, err := l.Get("docs/facts.txt")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry, got)
}

func Test_Ledger_GetMissing(t *testing.T) {
	l := openTestLedger(t)

	_, found, err := l.Get("docs/unknown.txt")
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Ledger_PutReplaces(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.Put("f.txt", LedgerEntry{DocID: "d1", Crc: 1}))
	require.NoError(t, l.Put("f.txt", LedgerEntry{DocID: "d1", Crc: 2}))

	got, found, err := l.Get("f.txt")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint32(2), got.Crc)
}

func Test_Ledger_Delete(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.Put("f.txt", LedgerEntry{DocID: "d1"}))
	require.NoError(t, l.Delete("f.txt"))
	require.NoError(t, l.Delete("f.txt"), "deleting twice is a no-op")

	_, found, err := l.Get("f.txt")
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Ledger_All(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.Put("a.txt", LedgerEntry{DocID: "da", Crc: 1}))
	require.NoError(t, l.Put("b.txt", LedgerEntry{DocID: "db", Crc: 2}))

	all, err := l.All()
	require.NoError(t, err)

	assert.Len(t, all, 2)
	assert.Equal(t, "da", all["a.txt"].DocID)
	assert.Equal(t, "db", all["b.txt"].DocID)
}
