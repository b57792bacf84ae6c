package search

import "github.com/cortesi/ra/pkg/types"

// elbowCutoff finds the ratio-drop elbow in a descending-score candidate
// list and truncates there, falling back to maxResults when no elbow is
// found. candidates must already be sorted by score descending.
//
// A non-positive score cuts immediately at its first occurrence: if
// candidates[i].Score <= 0, the cut lands before i; if it's the following
// score that is non-positive, the cut lands after i. The ratio threshold is
// strict: a ratio exactly equal to cutoffRatio does not cut.
func elbowCutoff(candidates []types.Candidate, cutoffRatio float64, maxResults int) []types.Candidate {
	if len(candidates) <= 1 {
		return candidates
	}

	cutoffIndex := len(candidates)
	for i := 0; i < len(candidates)-1; i++ {
		current := candidates[i].Score
		next := candidates[i+1].Score

		if current <= 0 {
			cutoffIndex = i
			break
		}
		if next <= 0 {
			cutoffIndex = i + 1
			break
		}
		if next/current < cutoffRatio {
			cutoffIndex = i + 1
			break
		}
	}

	final := cutoffIndex
	if maxResults < final {
		final = maxResults
	}
	return candidates[:final]
}
