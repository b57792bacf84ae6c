package document

import (
	"testing"

	"github.com/cortesi/ra/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEndToEndScenario(t *testing.T) {
	content := []byte("# Intro\n## A\ntext\n## B\ntext\n")
	b := NewBuilder("docs")
	tr, chunks, err := b.Build("g/a.md", content)
	require.NoError(t, err)
	require.NotNil(t, tr)

	ids := make(map[string]types.Chunk)
	for _, c := range chunks {
		ids[c.ID] = c
	}

	require.Contains(t, ids, "docs:g/a.md")
	require.Contains(t, ids, "docs:g/a.md#a")
	require.Contains(t, ids, "docs:g/a.md#b")

	doc := ids["docs:g/a.md"]
	assert.Equal(t, 0, doc.Depth)
	assert.Equal(t, "Intro", doc.Title)

	a := ids["docs:g/a.md#a"]
	assert.Equal(t, 2, a.Depth)
	assert.Equal(t, "Intro › A", a.Breadcrumb)

	bChunk := ids["docs:g/a.md#b"]
	assert.Equal(t, 2, bChunk.Depth)
}

func TestBuildEmptyFileProducesNoChunks(t *testing.T) {
	b := NewBuilder("docs")
	tr, chunks, err := b.Build("empty.md", []byte("   \n\n  "))
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.Nil(t, chunks)
}

func TestBuildFrontmatterOnlyDocument(t *testing.T) {
	content := []byte("---\ntitle: My Doc\ntags: [a, b]\n---\nhello\n")
	b := NewBuilder("docs")
	_, chunks, err := b.Build("doc.md", content)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "My Doc", chunks[0].Title)
	assert.Equal(t, []string{"a", "b"}, chunks[0].Tags)
}

func TestBuildConsecutiveSameLevelHeadingsDiscardsEarlier(t *testing.T) {
	content := []byte("# One\n# Two\ntext\n")
	b := NewBuilder("docs")
	_, chunks, err := b.Build("doc.md", content)
	require.NoError(t, err)

	var titles []string
	for _, c := range chunks {
		if c.Kind == types.KindHeading {
			titles = append(titles, c.Title)
		}
	}
	assert.Equal(t, []string{"Two"}, titles)
}

func TestBuildPlainTextFile(t *testing.T) {
	b := NewBuilder("docs")
	_, chunks, err := b.Build("notes.txt", []byte("# not a heading\njust text\n"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "notes", chunks[0].Title)
	assert.Equal(t, types.KindDocument, chunks[0].Kind)
}

func TestBuildSlugCollisionHeadingText(t *testing.T) {
	content := []byte("# Doc\n## ???\ntext\n## 日本語\nmore\n")
	b := NewBuilder("docs")
	_, chunks, err := b.Build("doc.md", content)
	require.NoError(t, err)

	var slugs []string
	for _, c := range chunks {
		if c.Kind == types.KindHeading {
			slugs = append(slugs, c.Slug)
		}
	}
	assert.Equal(t, []string{"doc", "heading", "heading-1"}, slugs)
}

func TestPositionsArePreorderPrefix(t *testing.T) {
	content := []byte("# Doc\n## A\n### A1\ntext\n## B\ntext\n")
	b := NewBuilder("docs")
	_, chunks, err := b.Build("doc.md", content)
	require.NoError(t, err)

	positions := make([]int, len(chunks))
	for i, c := range chunks {
		positions[i] = c.Position
	}
	for i, p := range positions {
		assert.Equal(t, i, p)
	}
}
