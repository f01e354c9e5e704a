package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreSaveAndOpen(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("2026/timetable.csv", []byte("a,b,c\n"))
	require.NoError(t, err)
	assert.Equal(t, "2026/timetable.csv", rel)

	file, err := store.Open(rel)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n", string(content))
}

func TestFileStoreDeleteIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("timetable.pdf", []byte("%PDF"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(rel))
	require.NoError(t, store.Delete(rel))

	_, err = store.Open(rel)
	assert.Error(t, err)
}

func TestFileStoreCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	oldRel, err := store.Save("old.csv", []byte("stale"))
	require.NoError(t, err)
	freshRel, err := store.Save("fresh.csv", []byte("current"))
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, oldRel), stale, stale))

	removed, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.csv"}, removed)

	_, err = store.Open(oldRel)
	assert.Error(t, err)
	file, err := store.Open(freshRel)
	require.NoError(t, err)
	_ = file.Close()
}
