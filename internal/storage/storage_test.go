package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutGetAnalysis(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"summary":{"total_rows":3}}`)
	require.NoError(t, s.PutAnalysis(ctx, "ws1", "file1", data))

	got, err := s.GetAnalysis(ctx, "ws1", "file1")
	require.NoError(t, err)
	assert.Equal(t, string(data), string(got))

	expectedPath := filepath.Join(dir, "ws1", "analyses", "file1.json")
	_, err = os.Stat(expectedPath)
	assert.NoError(t, err)
	assert.Equal(t, "ws1/analyses/file1.json", Ref("ws1", "file1"))
}

func TestLocalStorageGetNotFound(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	_, err := s.GetAnalysis(context.Background(), "ws1", "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageDelete(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.PutAnalysis(ctx, "ws1", "file1", []byte(`{}`)))
	require.NoError(t, s.DeleteAnalysis(ctx, "ws1", "file1"))

	_, err := s.GetAnalysis(ctx, "ws1", "file1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	assert.NoError(t, s.DeleteAnalysis(ctx, "ws1", "file1"))
}

func TestNewSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	c, err := New(context.Background(), Config{Backend: "local", LocalPath: dir})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, c)

	c, err = New(context.Background(), Config{LocalPath: dir})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, c)

	_, err = New(context.Background(), Config{Backend: "ftp"})
	assert.Error(t, err)
}
