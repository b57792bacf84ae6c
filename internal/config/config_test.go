package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".ra.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesTreesAndSections(t *testing.T) {
	path := writeTempConfig(t, `
[[tree]]
name = "docs"
root = "./docs"
include = ["*.md"]
exclude = ["drafts/*"]

[[tree]]
name = "shared"
root = "/opt/shared-docs"
global = true

[index]
stemmer_language = "english"
fuzzy_distance = 1
candidate_limit = 200

[context]
terms = 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Tree, 2)
	assert.Equal(t, "docs", cfg.Tree[0].Name)
	assert.Equal(t, []string{"*.md"}, cfg.Tree[0].Include)
	assert.False(t, cfg.Tree[0].Global)
	assert.True(t, cfg.Tree[1].Global)

	assert.Equal(t, "english", cfg.Index.StemmerLanguage)
	assert.Equal(t, 200, cfg.Index.CandidateLimit)
	assert.Equal(t, 10, cfg.Context.Terms)
}

func TestLoadRejectsUnknownStemmerLanguage(t *testing.T) {
	path := writeTempConfig(t, `
[[tree]]
name = "docs"
root = "./docs"

[index]
stemmer_language = "klingon"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateTreeNames(t *testing.T) {
	path := writeTempConfig(t, `
[[tree]]
name = "docs"
root = "./a"

[[tree]]
name = "docs"
root = "./b"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsTreeMissingRoot(t *testing.T) {
	path := writeTempConfig(t, `
[[tree]]
name = "docs"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestIsLocalDefaultsTrueForUnknownTree(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.IsLocal("nonexistent"))
}

func TestIsLocalReflectsGlobalFlag(t *testing.T) {
	cfg := &Config{Tree: []Tree{
		{Name: "docs", Global: false},
		{Name: "shared", Global: true},
	}}
	assert.True(t, cfg.IsLocal("docs"))
	assert.False(t, cfg.IsLocal("shared"))
}

func TestTreeMatchesIncludeAndExclude(t *testing.T) {
	tree := Tree{Include: []string{"*.md"}, Exclude: []string{"drafts/*"}}
	assert.True(t, tree.Matches("guide.md"))
	assert.False(t, tree.Matches("guide.txt"))
	assert.False(t, tree.Matches("drafts/scratch.md"))
}

func TestTreeMatchesEverythingWithNoInclude(t *testing.T) {
	tree := Tree{}
	assert.True(t, tree.Matches("anything.md"))
	assert.True(t, tree.Matches("nested/path/file.txt"))
}

func TestTreeByNameFindsConfiguredTree(t *testing.T) {
	cfg := &Config{Tree: []Tree{{Name: "docs", Root: "./docs"}}}
	tree, ok := cfg.TreeByName("docs")
	assert.True(t, ok)
	assert.Equal(t, "./docs", tree.Root)

	_, ok = cfg.TreeByName("missing")
	assert.False(t, ok)
}
