package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortesi/ra/internal/analyzer"
	"github.com/cortesi/ra/internal/config"
	"github.com/cortesi/ra/internal/index"
)

func openTestStore(t *testing.T) index.Store {
	t.Helper()
	a, err := analyzer.New("english")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := index.Open(path, a)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIndexTreeAddsNewDocuments(t *testing.T) {
	store := openTestStore(t)
	idx := New(store, nil)
	root := t.TempDir()
	writeFile(t, root, "a.md", "# Hello\n\nworld content here.\n")

	tree := config.Tree{Name: "docs", Root: root}
	stats, err := idx.IndexTree(context.Background(), tree, Config{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocsAdded)
	assert.Equal(t, 0, stats.DocsModified)
	assert.Equal(t, 0, stats.DocsFailed)
}

func TestIndexTreeSecondPassIsUnchanged(t *testing.T) {
	store := openTestStore(t)
	idx := New(store, nil)
	root := t.TempDir()
	writeFile(t, root, "a.md", "# Hello\n\nworld content here.\n")

	tree := config.Tree{Name: "docs", Root: root}
	ctx := context.Background()
	_, err := idx.IndexTree(ctx, tree, Config{})
	require.NoError(t, err)

	stats, err := idx.IndexTree(ctx, tree, Config{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DocsAdded)
	assert.Equal(t, 0, stats.DocsModified)
	assert.Equal(t, 1, stats.DocsUnchanged)
	assert.Equal(t, 0, stats.DocsRemoved)
}

func TestIndexTreeDetectsModifiedContent(t *testing.T) {
	store := openTestStore(t)
	idx := New(store, nil)
	root := t.TempDir()
	writeFile(t, root, "a.md", "# Hello\n\nworld content here.\n")

	tree := config.Tree{Name: "docs", Root: root}
	ctx := context.Background()
	_, err := idx.IndexTree(ctx, tree, Config{})
	require.NoError(t, err)

	writeFile(t, root, "a.md", "# Hello\n\ncompletely different body now.\n")
	stats, err := idx.IndexTree(ctx, tree, Config{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocsModified)
}

func TestIndexTreeRemovesDeletedFiles(t *testing.T) {
	store := openTestStore(t)
	idx := New(store, nil)
	root := t.TempDir()
	writeFile(t, root, "a.md", "# Hello\n\nworld content here.\n")
	writeFile(t, root, "b.md", "# Second\n\nmore content.\n")

	tree := config.Tree{Name: "docs", Root: root}
	ctx := context.Background()
	_, err := idx.IndexTree(ctx, tree, Config{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "b.md")))
	stats, err := idx.IndexTree(ctx, tree, Config{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocsRemoved)

	remaining, err := store.ManifestDocIDs(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs:a.md"}, remaining)
}

func TestEnsureConfigClearsIndexOnHashChange(t *testing.T) {
	store := openTestStore(t)
	idx := New(store, nil)
	root := t.TempDir()
	writeFile(t, root, "a.md", "# Hello\n\nworld content here.\n")

	tree := config.Tree{Name: "docs", Root: root}
	ctx := context.Background()
	_, err := idx.IndexTree(ctx, tree, Config{})
	require.NoError(t, err)

	// No hash recorded yet: the first call only records it, it never rebuilds.
	rebuilt, err := idx.EnsureConfig(ctx, index.HashConfig([]byte("english")))
	require.NoError(t, err)
	assert.False(t, rebuilt)

	// Same hash again: still no rebuild.
	rebuilt, err = idx.EnsureConfig(ctx, index.HashConfig([]byte("english")))
	require.NoError(t, err)
	assert.False(t, rebuilt)

	// Changed hash (e.g. stemmer_language flipped): clears the whole index.
	rebuilt, err = idx.EnsureConfig(ctx, index.HashConfig([]byte("french")))
	require.NoError(t, err)
	assert.True(t, rebuilt)

	remaining, err := store.ManifestDocIDs(ctx, "docs")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestIndexTreeInvokesInvalidateCacheOnCommit(t *testing.T) {
	store := openTestStore(t)
	idx := New(store, nil)
	root := t.TempDir()
	writeFile(t, root, "a.md", "# Hello\n\nworld content here.\n")

	calls := 0
	tree := config.Tree{Name: "docs", Root: root}
	_, err := idx.IndexTree(context.Background(), tree, Config{InvalidateCache: func() { calls++ }})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
