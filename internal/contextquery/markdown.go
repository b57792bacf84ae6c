package contextquery

import (
	"path/filepath"
	"strings"

	"github.com/cortesi/ra/internal/document"
)

// ContentParser turns file content into weighted terms. Markdown files get
// heading-aware weighting; everything else falls back to a flat body weight.
type ContentParser interface {
	ExtractTerms(content []byte, stop *Stopwords, minLen, maxLen int) []WeightedTerm
}

// ParserFor returns the ContentParser appropriate for path's extension.
func ParserFor(path string) ContentParser {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".md" || ext == ".markdown" {
		return markdownParser{}
	}
	return textParser{}
}

type markdownParser struct{}

// ExtractTerms strips frontmatter, then walks headings in document order,
// extracting the heading text itself at the weight for its level and the
// text strictly between one heading and the next (or end of document) at
// body weight. Text before the first heading is body weight too.
func (markdownParser) ExtractTerms(content []byte, stop *Stopwords, minLen, maxLen int) []WeightedTerm {
	_, body, err := document.SplitFrontmatter(content)
	if err != nil {
		body = content
	}

	headings := document.ExtractHeadings(body)
	if len(headings) == 0 {
		return extractTermsFromText(string(body), SourceBody, SourceBody.DefaultWeight(), stop, minLen, maxLen)
	}

	var sections []WeightedTerm
	prevEnd := 0
	for i, h := range headings {
		if h.LineStart > prevEnd {
			sections = append(sections, extractTermsFromText(string(body[prevEnd:h.LineStart]), SourceBody, SourceBody.DefaultWeight(), stop, minLen, maxLen)...)
		}
		source := headingSource(h.Level)
		sections = append(sections, extractTermsFromText(h.Text, source, source.DefaultWeight(), stop, minLen, maxLen)...)

		var next int
		if i+1 < len(headings) {
			next = headings[i+1].LineStart
		} else {
			next = len(body)
		}
		start := h.LineEnd
		if start < len(body) && body[start] == '\n' {
			start++
		}
		if next > start {
			sections = append(sections, extractTermsFromText(string(body[start:next]), SourceBody, SourceBody.DefaultWeight(), stop, minLen, maxLen)...)
		}
		prevEnd = next
	}
	return mergeWeightedTerms(sections)
}

func headingSource(level int) TermSource {
	switch {
	case level == 1:
		return SourceMarkdownH1
	case level == 2, level == 3:
		return SourceMarkdownH2H3
	default:
		return SourceMarkdownH4H6
	}
}

type textParser struct{}

// ExtractTerms treats the whole file as one uniformly-weighted body.
func (textParser) ExtractTerms(content []byte, stop *Stopwords, minLen, maxLen int) []WeightedTerm {
	return extractTermsFromText(string(content), SourceBody, SourceBody.DefaultWeight(), stop, minLen, maxLen)
}

// mergeWeightedTerms combines terms that share a Term and Source, summing
// their frequencies, preserving first-appearance order.
func mergeWeightedTerms(terms []WeightedTerm) []WeightedTerm {
	type key struct {
		term   string
		source TermSource
	}
	index := map[key]int{}
	var out []WeightedTerm
	for _, t := range terms {
		k := key{t.Term, t.Source}
		if idx, ok := index[k]; ok {
			out[idx].Frequency += t.Frequency
			continue
		}
		index[k] = len(out)
		out = append(out, t)
	}
	return out
}
