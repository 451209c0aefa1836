package fs_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/linkcrawl/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Atomic URL Output
// The URL list replaces the target file only on commit

func TestWriteURLs_NewlineTerminatesEveryURL(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := fs.WriteURLs(&buf, []string{"https://a.com/", "https://a.com/x"})

	require.NoError(t, err)
	assert.Equal(t, "https://a.com/\nhttps://a.com/x\n", buf.String())
}

func TestWriteURLs_EmptyListWritesNothing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, fs.WriteURLs(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestURLFile_WriteDoesNotTouchTarget(t *testing.T) {
	t.Parallel()

	// Given an existing output file
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	// When I write new URLs without committing
	f := fs.NewURLFile(path)
	require.NoError(t, f.Write([]string{"https://a.com/"}))

	// Then the target still holds the old content
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(content))

	require.NoError(t, f.Abort())
}

func TestURLFile_CommitReplacesTarget(t *testing.T) {
	t.Parallel()

	// Given an existing output file
	dir := t.TempDir()
	path := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	// When I write and commit
	f := fs.NewURLFile(path)
	require.NoError(t, f.Write([]string{"https://a.com/", "https://a.com/b"}))
	require.NoError(t, f.Commit())

	// Then the target holds the new URLs
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://a.com/\nhttps://a.com/b\n", string(content))

	// And no temporary files remain
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestURLFile_AbortRemovesTempFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "urls.txt")

	f := fs.NewURLFile(path)
	require.NoError(t, f.Write([]string{"https://a.com/"}))
	require.NoError(t, f.Abort())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteURLFile_CreatesParentDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "nested", "urls.txt")

	require.NoError(t, fs.WriteURLFile(path, []string{"https://a.com/"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://a.com/\n", string(content))
}
