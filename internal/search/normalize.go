package search

import "github.com/cortesi/ra/pkg/types"

// applyLocalBoost multiplies every local-tree candidate's score by boost.
// isLocal reports whether a tree name belongs to a local (non-global) tree.
func applyLocalBoost(candidates []types.Candidate, boost float64, isLocal func(tree string) bool) {
	for i := range candidates {
		if isLocal(candidates[i].Tree) {
			candidates[i].Score *= boost
		}
	}
}

// normalizeAcrossTrees divides every candidate's score by the maximum score
// observed within its own tree, when candidates span two or more trees.
// Single-tree result sets, or sets where only one tree actually produced
// results, are left unchanged.
func normalizeAcrossTrees(candidates []types.Candidate) []types.Candidate {
	maxByTree := map[string]float64{}
	for _, c := range candidates {
		if m, ok := maxByTree[c.Tree]; !ok || c.Score > m {
			maxByTree[c.Tree] = c.Score
		}
	}
	if len(maxByTree) <= 1 {
		return candidates
	}
	for i := range candidates {
		divisor := maxByTree[candidates[i].Tree]
		if divisor <= 0 {
			divisor = 1
		}
		candidates[i].Score /= divisor
	}
	sortCandidates(candidates)
	return candidates
}
