// Package search implements the candidate-retrieval and post-processing
// pipeline: BM25-style scoring, elbow cutoff, hierarchical aggregation,
// ancestor subsumption and the query result cache.
package search

import "github.com/cortesi/ra/internal/index"

// Params configures one search pipeline run. Zero-value fields fall back to
// the index package's defaults in Normalize. FuzzyDistance is a pointer so
// Normalize can tell "never set" (defaults to index.DefaultFuzzyDistance)
// apart from an explicit 0, which disables fuzzy matching.
type Params struct {
	CandidateLimit       int
	CutoffRatio          float64
	AggregationThreshold float64
	MaxResults           int
	Limit                int
	Trees                []string
	EnableAggregation    bool
	FuzzyDistance        *int
	LocalBoost           float64
}

// Normalize fills unset fields with defaults and returns the result; it
// never mutates the receiver.
func (p Params) Normalize() Params {
	if p.CandidateLimit <= 0 {
		p.CandidateLimit = index.DefaultCandidateLimit
	}
	if p.CutoffRatio <= 0 {
		p.CutoffRatio = index.DefaultCutoffRatio
	}
	if p.AggregationThreshold <= 0 {
		p.AggregationThreshold = index.DefaultAggregationThreshold
	}
	if p.MaxResults <= 0 {
		p.MaxResults = index.DefaultMaxResults
	}
	if p.Limit <= 0 {
		p.Limit = p.MaxResults
	}
	if p.LocalBoost <= 0 {
		p.LocalBoost = index.DefaultLocalBoost
	}
	if p.FuzzyDistance == nil {
		d := index.DefaultFuzzyDistance
		p.FuzzyDistance = &d
	}
	return p
}

// ContextParams configures the context-analysis query generator (§4.8).
type ContextParams struct {
	SampleSize       int
	MinWordLength    int
	MaxWordLength    int
	MinTermFrequency int
	Terms            int
	Stopwords        map[string]bool
}

// Normalize fills unset fields with defaults.
func (p ContextParams) Normalize() ContextParams {
	if p.SampleSize <= 0 {
		p.SampleSize = 50000
	}
	if p.MinWordLength <= 0 {
		p.MinWordLength = 4
	}
	if p.MaxWordLength <= 0 {
		p.MaxWordLength = 30
	}
	if p.MinTermFrequency <= 0 {
		p.MinTermFrequency = 2
	}
	if p.Terms <= 0 {
		p.Terms = 15
	}
	return p
}
