package index

import "github.com/agnivade/levenshtein"

// FuzzyMatch reports whether candidate is within maxDistance edits of term.
// Used to expand a query term against the index vocabulary; matches are
// scored alongside the exact term.
func FuzzyMatch(term, candidate string, maxDistance int) bool {
	if term == candidate {
		return true
	}
	if abs(len(term)-len(candidate)) > maxDistance {
		return false
	}
	return levenshtein.ComputeDistance(term, candidate) <= maxDistance
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
