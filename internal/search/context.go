package search

import (
	"context"

	"github.com/cortesi/ra/internal/contextquery"
	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/pkg/types"
)

// ContextResult is the outcome of analyzing a source file for related
// documentation: the generated query plus the results of executing it.
type ContextResult struct {
	Query         string
	IncludedTerms []string
	Results       []types.Result
}

// storeIDFProvider adapts an index.Store's per-field document frequencies
// into the single-field IDFProvider contextquery ranks against. It sums
// DocFreq across every analyzed field, since a context term is meant to
// match the same multi-field disjunction a bare query term expands into.
type storeIDFProvider struct {
	ctx   context.Context
	store index.Store
}

func (p storeIDFProvider) DocFreq(term string) int {
	total := 0
	for _, f := range index.AnalyzedFields {
		n, err := p.store.DocFreq(p.ctx, f, term)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}

func (p storeIDFProvider) NumDocs() int {
	n, err := p.store.NumDocs(p.ctx)
	if err != nil {
		return 0
	}
	return n
}

// Context analyzes filePath/content into a ranked term query, executes it
// through the same pipeline as any other query, and returns both. Rules
// matching filePath that restrict trees are merged into params.Trees;
// force-included chunk ids are appended to the result set even if the
// ranked query would not otherwise surface them.
func (s *Searcher) Context(ctx context.Context, filePath string, content []byte, params ContextParams) (ContextResult, error) {
	params = params.Normalize()

	cfg := contextquery.Config{
		SampleSize:       params.SampleSize,
		MinWordLength:    params.MinWordLength,
		MaxWordLength:    params.MaxWordLength,
		MinTermFrequency: params.MinTermFrequency,
		TermLimit:        params.Terms,
		ExtraStopwords:   stopwordKeys(params.Stopwords),
		Rules:            s.contextRules,
	}

	analysis, err := contextquery.Analyze(filePath, content, storeIDFProvider{ctx: ctx, store: s.store}, cfg)
	if err != nil {
		return ContextResult{}, err
	}
	if analysis.IsEmpty() {
		if len(analysis.ForceIncludeID) == 0 {
			return ContextResult{}, nil
		}
		return ContextResult{Results: s.withForceIncludes(ctx, nil, analysis.ForceIncludeID)}, nil
	}

	searchParams := Params{Trees: analysis.RestrictTrees}
	res, err := s.Search(ctx, analysis.Query.QueryString, searchParams)
	if err != nil {
		return ContextResult{}, err
	}

	results := res.Results
	if len(analysis.ForceIncludeID) > 0 {
		results = s.withForceIncludes(ctx, results, analysis.ForceIncludeID)
	}

	return ContextResult{
		Query:         analysis.Query.QueryString,
		IncludedTerms: analysis.Query.IncludedTerms,
		Results:       results,
	}, nil
}

// withForceIncludes appends any id in ids not already present in results,
// fetched directly by Get so rule-forced chunks survive even when the
// ranked query would have filtered them out.
func (s *Searcher) withForceIncludes(ctx context.Context, results []types.Result, ids []string) []types.Result {
	present := map[string]bool{}
	for _, r := range results {
		present[r.ID] = true
	}
	for _, id := range ids {
		if present[id] {
			continue
		}
		chunk, err := s.Get(ctx, id, false)
		if err != nil {
			continue
		}
		results = append(results, candidateToResult(types.Candidate{
			ID:         chunk.ID,
			DocID:      chunk.DocID,
			ParentID:   chunk.ParentID,
			Tree:       chunk.Tree,
			Path:       chunk.Path,
			Title:      chunk.Title,
			Breadcrumb: chunk.Breadcrumb,
			Depth:      chunk.Depth,
			Position:   chunk.Position,
			Score:      0,
		}))
	}
	return results
}

func stopwordKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, ok := range m {
		if ok {
			out = append(out, k)
		}
	}
	return out
}
