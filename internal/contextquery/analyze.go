package contextquery

import (
	"strings"

	"github.com/cortesi/ra/internal/document"
	"github.com/cortesi/ra/pkg/types"
)

// Default tuning values for Config, mirroring the [context] section of the
// TOML config surface.
const (
	DefaultSampleSize       = 50000
	DefaultMinWordLength    = 4
	DefaultMaxWordLength    = 30
	DefaultMinTermFrequency = 2
)

// Config tunes one run of Analyze.
type Config struct {
	SampleSize       int
	MinWordLength    int
	MaxWordLength    int
	MinTermFrequency int
	TermLimit        int
	ExtraStopwords   []string
	Rules            []Rule
}

// WithDefaults returns a copy of c with every zero field set to its default.
func (c Config) WithDefaults() Config {
	if c.SampleSize <= 0 {
		c.SampleSize = DefaultSampleSize
	}
	if c.MinWordLength <= 0 {
		c.MinWordLength = DefaultMinWordLength
	}
	if c.MaxWordLength <= 0 {
		c.MaxWordLength = DefaultMaxWordLength
	}
	if c.MinTermFrequency <= 0 {
		c.MinTermFrequency = DefaultMinTermFrequency
	}
	if c.TermLimit <= 0 {
		c.TermLimit = DefaultTermLimit
	}
	return c
}

// Analysis is the full result of analyzing one source file for context.
type Analysis struct {
	Terms          []WeightedTerm
	RankedTerms    []RankedTerm
	Query          ContextQuery
	RestrictTrees  []string
	ForceIncludeID []string
}

// IsEmpty reports whether the analysis produced no searchable query. Path
// terms exempt from the frequency filter can populate a.Terms without ever
// surviving ranking (e.g. a filename the corpus has never otherwise seen),
// so emptiness is judged on the built query, not the raw extracted terms.
func (a Analysis) IsEmpty() bool {
	return a.Query.IsEmpty()
}

// Analyze extracts weighted terms from path and content, ranks them
// against provider, merges in any matching rules, and builds a boosted OR
// query from the top-ranked survivors. Returns types.ErrUnsupportedFile if
// path names a binary file.
func Analyze(path string, content []byte, provider IDFProvider, cfg Config) (Analysis, error) {
	if document.IsBinaryFile(path) {
		return Analysis{}, types.ErrUnsupportedFile
	}
	cfg = cfg.WithDefaults()

	if len(content) > cfg.SampleSize {
		content = content[:cfg.SampleSize]
	}

	stop := NewStopwords(cfg.ExtraStopwords...)

	terms := extractPathTerms(path, cfg.MinWordLength, cfg.MaxWordLength)
	contentTerms := ParserFor(path).ExtractTerms(content, stop, cfg.MinWordLength, cfg.MaxWordLength)
	terms = mergeWeightedTerms(append(terms, contentTerms...))

	terms = filterByFrequency(terms, cfg.MinTermFrequency)

	merge := applyRules(path, cfg.Rules)
	for _, t := range merge.ExtraTerms {
		terms = append(terms, WeightedTerm{Term: strings.ToLower(t), Weight: SourceBody.DefaultWeight(), Source: SourceBody, Frequency: cfg.MinTermFrequency})
	}
	terms = mergeWeightedTerms(terms)

	if len(terms) == 0 {
		return Analysis{RestrictTrees: merge.RestrictTrees, ForceIncludeID: merge.ForceIncludeID}, nil
	}

	ranked := rankTerms(terms, provider)
	built := BuildQuery(ranked, cfg.TermLimit)

	return Analysis{
		Terms:          terms,
		RankedTerms:    ranked,
		Query:          built,
		RestrictTrees:  merge.RestrictTrees,
		ForceIncludeID: merge.ForceIncludeID,
	}, nil
}

// filterByFrequency drops every term whose aggregate occurrence count is
// below min, preserving order. Path terms (filename and directory
// components) are exempt: extractPathTerms always assigns them Frequency 1,
// so a min above that would silently drop the highest-weighted signal a
// path carries before it ever reaches ranking.
func filterByFrequency(terms []WeightedTerm, min int) []WeightedTerm {
	out := make([]WeightedTerm, 0, len(terms))
	for _, t := range terms {
		if t.Source != SourcePathFilename && t.Source != SourcePathDirectory && t.Frequency < min {
			continue
		}
		out = append(out, t)
	}
	return out
}
