package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdekker/ragserve/internal/embedder"
	"github.com/mdekker/ragserve/internal/store"
	"github.com/mdekker/ragserve/pkg/types"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), embedder.NewRegistry(), store.WithDefaultModel("local"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, root, "readme.md",
		"# Project\n\n"+strings.Repeat("This project indexes documents for semantic retrieval. ", 5))
	writeFile(t, root, "src/main.go",
		"package main\n\n"+strings.Repeat("// handles startup and request routing\n", 10)+"func main() {}\n")
	writeFile(t, root, "docs/guide.txt",
		strings.Repeat("The guide explains configuration and deployment in detail. ", 5))

	// Excluded by default patterns.
	writeFile(t, root, "node_modules/pkg/index.js", strings.Repeat("module.exports = {};\n", 20))
	writeFile(t, root, "debug.log", strings.Repeat("log line\n", 50))

	// Excluded by a discovered ignore file.
	writeFile(t, root, ".gitignore", "secret.txt\n")
	writeFile(t, root, "secret.txt", strings.Repeat("do not index this content. ", 10))

	// Skipped without error: binary and empty.
	writeFile(t, root, "image.bin", "\xff\xfe\x00\x01binarycontent\x80\x81")
	writeFile(t, root, "empty.txt", "")

	return root
}

func TestIndexDirectory(t *testing.T) {
	s := newTestStore(t)
	ix := New(s, Config{})
	root := buildTree(t)
	ctx := context.Background()

	result, err := ix.IndexDirectory(ctx, root, "codebase", "")
	require.NoError(t, err)

	// readme.md, src/main.go, docs/guide.txt, .gitignore, image.bin,
	// empty.txt survive the ignore filter.
	assert.Equal(t, 6, result.TotalFiles)
	assert.Equal(t, 4, result.FilesIndexed)
	assert.Equal(t, 2, result.FilesSkipped)
	assert.Greater(t, result.TotalChunks, 0)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "codebase", result.Collection)

	infos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, int64(result.TotalChunks), infos[0].DocumentCount)

	// Indexed content is searchable with file metadata attached.
	hits, err := s.Search(ctx, "codebase", "configuration and deployment", 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Contains(t, h.Metadata, "file_name")
		assert.Contains(t, h.Metadata, "file_hash")
		assert.Contains(t, h.Metadata, "chunk_index")
		assert.Contains(t, h.Metadata, "language")
	}
}

func TestIndexDirectoryIgnores(t *testing.T) {
	s := newTestStore(t)
	ix := New(s, Config{})
	root := buildTree(t)
	ctx := context.Background()

	_, err := ix.IndexDirectory(ctx, root, "codebase", "")
	require.NoError(t, err)

	// Nothing from the ignored files made it into the collection.
	count, err := s.List(ctx)
	require.NoError(t, err)
	hits, err := s.Search(ctx, "codebase", "do not index this content", int(count[0].DocumentCount))
	require.NoError(t, err)
	for _, h := range hits {
		assert.NotContains(t, h.Text, "do not index this content")
		assert.NotContains(t, h.Metadata["file_name"], "secret")
		assert.NotContains(t, h.Metadata["file_name"], "index.js")
	}
}

func TestIndexDirectoryMissingRoot(t *testing.T) {
	s := newTestStore(t)
	ix := New(s, Config{})

	_, err := ix.IndexDirectory(context.Background(), "/nonexistent/path/xyz", "c", "")
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
}

func TestIndexDirectoryRootIsFile(t *testing.T) {
	s := newTestStore(t)
	ix := New(s, Config{})

	root := t.TempDir()
	writeFile(t, root, "file.txt", "content")

	_, err := ix.IndexDirectory(context.Background(), filepath.Join(root, "file.txt"), "c", "")
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
}

func TestIndexDirectoryMaxFileSize(t *testing.T) {
	s := newTestStore(t)
	ix := New(s, Config{MaxFileSize: 500})

	root := t.TempDir()
	writeFile(t, root, "big.txt", strings.Repeat("oversized content line. ", 100))
	writeFile(t, root, "small.txt", strings.Repeat("small enough to index. ", 10))

	result, err := ix.IndexDirectory(context.Background(), root, "sized", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 1, result.FilesIndexed)
	assert.Equal(t, 1, result.FilesSkipped)
}

func TestIndexDirectoryCancelled(t *testing.T) {
	s := newTestStore(t)
	ix := New(s, Config{})
	root := buildTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.IndexDirectory(ctx, root, "codebase", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndexDirectoryModelMismatchIsFatal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetOrCreate(ctx, "bound", "local")
	require.NoError(t, err)

	ix := New(s, Config{})
	_, err = ix.IndexDirectory(ctx, buildTree(t), "bound", "openai/text-embedding-3-small")
	require.Error(t, err)
	assert.Equal(t, types.KindModelMismatch, types.KindOf(err))
}
