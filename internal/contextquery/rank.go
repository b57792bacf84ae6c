package contextquery

import (
	"math"
	"sort"
)

// IDFProvider answers document-frequency questions for ranking. An
// index.Store satisfies this through a thin adapter; tests use a fake.
type IDFProvider interface {
	// DocFreq returns the number of documents containing term, across
	// whatever field set the provider considers relevant to ranking.
	DocFreq(term string) int
	// NumDocs returns the total number of documents known to the provider.
	NumDocs() int
}

// RankedTerm is a WeightedTerm after TF-IDF scoring.
type RankedTerm struct {
	WeightedTerm
	IDF   float64
	Score float64
}

// idf computes ln((N+1)/(df+1)) + 1, the smoothed IDF used throughout
// ranking. Terms with df == 0 carry no signal and are dropped by the
// caller before this is ever reached for them in rankTerms, but the
// formula itself is safe regardless.
func idf(numDocs, docFreq int) float64 {
	return math.Log(float64(numDocs+1)/float64(docFreq+1)) + 1
}

// rankTerms scores each term as frequency * weight * idf, drops terms with
// no document frequency (df == 0, meaning the corpus has never seen the
// term and it carries no discriminating power), and sorts by score
// descending, breaking ties by term ascending for determinism.
func rankTerms(terms []WeightedTerm, provider IDFProvider) []RankedTerm {
	numDocs := provider.NumDocs()
	ranked := make([]RankedTerm, 0, len(terms))
	for _, t := range terms {
		df := provider.DocFreq(t.Term)
		if df == 0 {
			continue
		}
		termIDF := idf(numDocs, df)
		ranked = append(ranked, RankedTerm{
			WeightedTerm: t,
			IDF:          termIDF,
			Score:        float64(t.Frequency) * t.Weight * termIDF,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Term < ranked[j].Term
	})
	return ranked
}
