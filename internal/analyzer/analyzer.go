// Package analyzer implements the text analysis pipeline shared by indexing
// and query evaluation: tokenize, lowercase, drop long tokens, stem.
package analyzer

import (
	"fmt"
	"strings"
	"unicode"

	snowballstem "github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/arabic"
	"github.com/blevesearch/snowballstem/danish"
	"github.com/blevesearch/snowballstem/dutch"
	"github.com/blevesearch/snowballstem/english"
	"github.com/blevesearch/snowballstem/finnish"
	"github.com/blevesearch/snowballstem/french"
	"github.com/blevesearch/snowballstem/german"
	"github.com/blevesearch/snowballstem/hungarian"
	"github.com/blevesearch/snowballstem/italian"
	"github.com/blevesearch/snowballstem/norwegian"
	"github.com/blevesearch/snowballstem/portuguese"
	"github.com/blevesearch/snowballstem/romanian"
	"github.com/blevesearch/snowballstem/russian"
	"github.com/blevesearch/snowballstem/spanish"
	"github.com/blevesearch/snowballstem/swedish"
	"github.com/blevesearch/snowballstem/turkish"
)

// MaxTokenLength is the longest token kept by the length filter, in bytes.
const MaxTokenLength = 40

// stemFunc applies an in-place Snowball stemming pass to env's current word.
type stemFunc func(env *snowballstem.Env) bool

// stemmers maps a language name to its Snowball stemming function. Greek and
// Tamil have no implementation in blevesearch/snowballstem; they use an
// identity stemmer (tokens pass through unchanged) rather than a language
// this package silently mis-stems.
var stemmers = map[string]stemFunc{
	"arabic":     arabic.Stem,
	"danish":     danish.Stem,
	"dutch":      dutch.Stem,
	"english":    english.Stem,
	"finnish":    finnish.Stem,
	"french":     french.Stem,
	"german":     german.Stem,
	"greek":      identityStem,
	"hungarian":  hungarian.Stem,
	"italian":    italian.Stem,
	"norwegian":  norwegian.Stem,
	"portuguese": portuguese.Stem,
	"romanian":   romanian.Stem,
	"russian":    russian.Stem,
	"spanish":    spanish.Stem,
	"swedish":    swedish.Stem,
	"tamil":      identityStem,
	"turkish":    turkish.Stem,
}

func identityStem(_ *snowballstem.Env) bool { return true }

// Languages lists every recognized stemmer language name.
func Languages() []string {
	names := make([]string, 0, len(stemmers))
	for name := range stemmers {
		names = append(names, name)
	}
	return names
}

// Analyzer runs the four-stage pipeline: tokenize, lowercase, drop long
// tokens, stem. One Analyzer is immutable after construction and safe to
// share across goroutines.
type Analyzer struct {
	language string
	stem     stemFunc
}

// New builds an Analyzer for the given language name (case-insensitive).
// Returns an error if the language is not recognized.
func New(language string) (*Analyzer, error) {
	name := strings.ToLower(language)
	stem, ok := stemmers[name]
	if !ok {
		return nil, fmt.Errorf("analyzer: unrecognized stemmer language %q", language)
	}
	return &Analyzer{language: name, stem: stem}, nil
}

// Language returns the configured stemmer language name.
func (a *Analyzer) Language() string {
	return a.language
}

// Analyze runs the full pipeline over text and returns the resulting tokens
// in order.
func (a *Analyzer) Analyze(text string) []string {
	tokens := tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(tok)
		if len(tok) > MaxTokenLength {
			continue
		}
		out = append(out, a.stemToken(tok))
	}
	return out
}

func (a *Analyzer) stemToken(tok string) string {
	env := snowballstem.NewEnv(tok)
	a.stem(env)
	return env.Current()
}

// tokenize splits on whitespace and punctuation, keeping underscores as part
// of a token.
func tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
