package contextquery

import (
	"strings"
	"unicode"
)

// lowSignalDirs and lowSignalExtensions are dropped from path terms even
// when they pass the length filter: they name structure, not topic.
var lowSignalDirs = map[string]bool{
	"src": true, "lib": true, "bin": true, "test": true, "tests": true,
	"docs": true, "doc": true,
}

var lowSignalExtensions = map[string]bool{
	"rs": true, "py": true, "js": true, "ts": true, "go": true,
	"md": true, "txt": true, "html": true, "css": true, "json": true,
}

// tokenize splits text on whitespace and punctuation, lowercases each
// piece and keeps only alphanumeric runs within [minLen, maxLen].
func tokenize(text string, minLen, maxLen int) []string {
	var out []string
	for _, raw := range strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) {
		tok := strings.ToLower(raw)
		if len(tok) < minLen || len(tok) > maxLen {
			continue
		}
		if !isAlphanumeric(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// extractTermsFromText tokenizes text, drops stopwords, and aggregates the
// survivors into one WeightedTerm per distinct token with its occurrence
// count as Frequency.
func extractTermsFromText(text string, source TermSource, weight float64, stop *Stopwords, minLen, maxLen int) []WeightedTerm {
	counts := map[string]int{}
	order := make([]string, 0)
	for _, tok := range tokenize(text, minLen, maxLen) {
		if stop.Contains(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	terms := make([]WeightedTerm, 0, len(order))
	for _, tok := range order {
		terms = append(terms, WeightedTerm{Term: tok, Weight: weight, Source: source, Frequency: counts[tok]})
	}
	return terms
}

// extractPathTerms splits path into components, then each component on
// '_', '-', '.', keeping tokens that pass the length filter and are not a
// low-signal directory name or source-file extension. The filename
// component is weighted SourcePathFilename, every other component
// SourcePathDirectory. Order of first appearance is preserved and
// duplicates are dropped.
func extractPathTerms(path string, minLen, maxLen int) []WeightedTerm {
	components := strings.Split(strings.Trim(path, "/"), "/")
	if len(components) == 0 {
		return nil
	}
	lastIdx := len(components) - 1

	seen := map[string]bool{}
	var terms []WeightedTerm
	for i, comp := range components {
		source := SourcePathDirectory
		if i == lastIdx {
			source = SourcePathFilename
		}
		for _, part := range strings.FieldsFunc(comp, func(r rune) bool {
			return r == '_' || r == '-' || r == '.'
		}) {
			part = strings.ToLower(part)
			if !isMeaningfulPathTerm(part, minLen, maxLen) {
				continue
			}
			if seen[part] {
				continue
			}
			seen[part] = true
			terms = append(terms, WeightedTerm{Term: part, Weight: source.DefaultWeight(), Source: source, Frequency: 1})
		}
	}
	return terms
}

func isMeaningfulPathTerm(term string, minLen, maxLen int) bool {
	if len(term) < minLen || len(term) > maxLen {
		return false
	}
	if lowSignalExtensions[term] || lowSignalDirs[term] {
		return false
	}
	return isAlphanumeric(term)
}
