package server

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileStore(t *testing.T) *FileStore {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "filestore-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := NewFileStore(tmpDir)
	require.NoError(t, err)
	return store
}

func TestFileStoreAppend(t *testing.T) {
	store := setupFileStore(t)

	n, err := store.Append("sales", []json.RawMessage{
		json.RawMessage(`{"id":1,"total":500}`),
		json.RawMessage(`{"id":2,"total":700}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Appends accumulate rather than replace
	n, err = store.Append("sales", []json.RawMessage{json.RawMessage(`{"id":3}`)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := store.Read("sales")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestFileStoreUnknownCollection(t *testing.T) {
	store := setupFileStore(t)

	_, err := store.Append("passwords", []json.RawMessage{json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownCollection)

	_, err = store.Read("passwords")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestFileStoreCounts(t *testing.T) {
	store := setupFileStore(t)

	_, err := store.Append("expenses", []json.RawMessage{json.RawMessage(`{"id":1}`)})
	require.NoError(t, err)

	counts, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, counts["expenses"])
	assert.Equal(t, 0, counts["sales"])
	assert.Len(t, counts, 4)
}
