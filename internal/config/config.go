// Package config loads the TOML-shaped configuration describing trees to
// index, index-time tuning, and context-analysis tuning.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/cortesi/ra/internal/analyzer"
)

// Tree describes one named directory of documents.
type Tree struct {
	Name    string   `toml:"name"`
	Root    string   `toml:"root"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	Global  bool     `toml:"global"`
}

// IndexSettings tunes index-time analysis and the search pipeline's
// defaults.
type IndexSettings struct {
	StemmerLanguage      string  `toml:"stemmer_language"`
	FuzzyDistance        int     `toml:"fuzzy_distance"`
	CandidateLimit       int     `toml:"candidate_limit"`
	CutoffRatio          float64 `toml:"cutoff_ratio"`
	AggregationThreshold float64 `toml:"aggregation_threshold"`
	MaxResults           int     `toml:"max_results"`
	LocalBoost           float64 `toml:"local_boost"`
}

// ContextSettings tunes the context analyzer.
type ContextSettings struct {
	SampleSize       int `toml:"sample_size"`
	MinWordLength    int `toml:"min_word_length"`
	MaxWordLength    int `toml:"max_word_length"`
	MinTermFrequency int `toml:"min_term_frequency"`
	Terms            int `toml:"terms"`
}

// Config is the full contents of one .ra.toml file.
type Config struct {
	Tree    []Tree          `toml:"tree"`
	Index   IndexSettings   `toml:"index"`
	Context ContextSettings `toml:"context"`
}

// Load parses path as TOML into a Config, validates it, and returns it.
// Validation failures (an unrecognized stemmer language, a tree with no
// name or root) are construction-time errors: no partial config is ever
// returned alongside an error.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural and semantic constraints that Load's TOML
// decode alone cannot catch: duplicate tree names, missing roots, and an
// unrecognized stemmer language.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for _, t := range c.Tree {
		if t.Name == "" {
			return fmt.Errorf("config: tree missing name")
		}
		if t.Root == "" {
			return fmt.Errorf("config: tree %q missing root", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("config: duplicate tree name %q", t.Name)
		}
		seen[t.Name] = true
	}
	if lang := c.Index.StemmerLanguage; lang != "" {
		if _, err := analyzer.New(lang); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// IsLocal reports whether the named tree is local (the default) rather
// than declared global in the user-level config. Implements
// search.TreeResolver. An unknown tree name is treated as local.
func (c *Config) IsLocal(tree string) bool {
	for _, t := range c.Tree {
		if t.Name == tree {
			return !t.Global
		}
	}
	return true
}

// TreeByName returns the tree configuration with the given name, and
// whether it was found.
func (c *Config) TreeByName(name string) (Tree, bool) {
	for _, t := range c.Tree {
		if t.Name == name {
			return t, true
		}
	}
	return Tree{}, false
}

// Matches reports whether relPath (tree-relative, forward-slash separated)
// should be indexed under t: it must match at least one include pattern
// (or include is empty, meaning "everything") and no exclude pattern.
func (t Tree) Matches(relPath string) bool {
	if len(t.Exclude) > 0 && matchesAny(t.Exclude, relPath) {
		return false
	}
	if len(t.Include) == 0 {
		return true
	}
	return matchesAny(t.Include, relPath)
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, err := filepath.Match(p, path); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(p, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}
