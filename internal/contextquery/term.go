// Package contextquery turns a source file's path and content into a
// ranked set of search terms, then into a boosted disjunctive query — the
// context-analysis feature of the search pipeline.
package contextquery

// TermSource records where a term was extracted from, which determines its
// base weight before TF-IDF ranking.
type TermSource int

const (
	SourcePathFilename TermSource = iota
	SourcePathDirectory
	SourceMarkdownH1
	SourceMarkdownH2H3
	SourceMarkdownH4H6
	SourceBody
)

// DefaultWeight returns the base weight for terms from this source. Path
// components are weighted highest since they are deliberate naming
// choices; body text is the lowest signal-to-noise source.
func (s TermSource) DefaultWeight() float64 {
	switch s {
	case SourcePathFilename:
		return 4.0
	case SourcePathDirectory:
		return 3.0
	case SourceMarkdownH1:
		return 3.0
	case SourceMarkdownH2H3:
		return 2.0
	case SourceMarkdownH4H6:
		return 1.5
	default:
		return 1.0
	}
}

func (s TermSource) String() string {
	switch s {
	case SourcePathFilename:
		return "filename"
	case SourcePathDirectory:
		return "directory"
	case SourceMarkdownH1:
		return "md:h1"
	case SourceMarkdownH2H3:
		return "md:h2-h3"
	case SourceMarkdownH4H6:
		return "md:h4-h6"
	default:
		return "body"
	}
}

// WeightedTerm is a term extracted from a file with source attribution and
// an occurrence count, the raw material for TF-IDF ranking.
type WeightedTerm struct {
	Term      string
	Weight    float64
	Source    TermSource
	Frequency int
}
