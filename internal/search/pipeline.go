package search

import (
	"context"

	"github.com/cortesi/ra/internal/contextquery"
	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/internal/query"
	"github.com/cortesi/ra/pkg/types"
)

// Results is the outcome of one search pipeline run.
type Results struct {
	Query   string
	Results []types.Result
}

// TreeResolver reports whether a named tree is local, for the locality
// boost in §4.7 step 2. Implemented by the config package; kept as a
// narrow interface here so search does not import config.
type TreeResolver interface {
	IsLocal(tree string) bool
}

// Searcher runs the full query pipeline against one index.Store: parse,
// compile, retrieve, locality boost, per-tree normalize, elbow cutoff,
// hierarchical aggregation, ancestor subsumption, final sort.
type Searcher struct {
	store    index.Store
	trees    TreeResolver
	analyzer query.Analyzer
	cache    *resultCache

	// contextRules configures §4.8 rule merging for Context; set via
	// SetContextRules, empty (no rules) by default.
	contextRules []contextquery.Rule
}

// NewSearcher builds a Searcher over store, consulting trees to decide
// locality boosts. analyzer normalizes every query term and phrase token the
// same way the indexer normalized the content it matches against; it must be
// built from the same stemmer language the index was populated with. Query
// results are cached with DefaultCacheTTL until the next InvalidateCache
// call.
func NewSearcher(store index.Store, trees TreeResolver, analyzer query.Analyzer) *Searcher {
	return &Searcher{store: store, trees: trees, analyzer: analyzer, cache: newResultCache(DefaultCacheTTL)}
}

// SetContextRules installs the glob-driven rules Context merges into every
// generated query, replacing any previously installed set.
func (s *Searcher) SetContextRules(rules []contextquery.Rule) {
	s.contextRules = rules
}

// InvalidateCache drops every cached query result. Called by the indexer
// after any successful write, since a document change can affect an
// arbitrary, unpredictable subset of cached queries.
func (s *Searcher) InvalidateCache() {
	s.cache.invalidateAll()
}

// Search runs one query string through the full pipeline.
func (s *Searcher) Search(ctx context.Context, queryString string, params Params) (Results, error) {
	params = params.Normalize()
	if cached, ok := s.cache.get(queryString, params); ok {
		return cached, nil
	}

	ast, err := query.Parse(queryString)
	if err != nil {
		return Results{}, err
	}
	op := query.Compile(ast, s.analyzer)

	results, err := s.run(ctx, op, params)
	if err != nil {
		return Results{}, err
	}
	out := Results{Query: queryString, Results: results}
	s.cache.put(queryString, params, out)
	return out, nil
}

// SearchMulti runs each query independently and merges the results: dedupe
// by chunk id keeping the maximum score, union match ranges, concatenate
// snippets with " … ".
func (s *Searcher) SearchMulti(ctx context.Context, queries []string, params Params) (Results, error) {
	merged := map[string]types.Result{}
	order := make([]string, 0)
	for _, q := range queries {
		res, err := s.Search(ctx, q, params)
		if err != nil {
			return Results{}, err
		}
		for _, r := range res.Results {
			existing, ok := merged[r.ID]
			if !ok {
				merged[r.ID] = r
				order = append(order, r.ID)
				continue
			}
			merged[r.ID] = mergeResult(existing, r)
		}
	}
	out := make([]types.Result, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	sortResults(out)
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return Results{Query: query.JoinArgs(queries), Results: out}, nil
}

func mergeResult(a, b types.Result) types.Result {
	out := a
	if b.Score > out.Score {
		out.Score = b.Score
	}
	out.MatchRanges = mergeRanges(append(append([]types.MatchRange{}, a.MatchRanges...), b.MatchRanges...))
	switch {
	case a.Snippet == "":
		out.Snippet = b.Snippet
	case b.Snippet == "" || a.Snippet == b.Snippet:
		out.Snippet = a.Snippet
	default:
		out.Snippet = a.Snippet + " … " + b.Snippet
	}
	return out
}

// run executes steps 1-7 of the pipeline over an already-compiled query.
func (s *Searcher) run(ctx context.Context, op query.Op, params Params) ([]types.Result, error) {
	candidates, err := retrieve(ctx, s.store, op, *params.FuzzyDistance, params.CandidateLimit)
	if err != nil {
		return nil, err
	}
	candidates = filterTrees(candidates, params.Trees)

	applyLocalBoost(candidates, params.LocalBoost, s.isLocal)
	sortCandidates(candidates)

	candidates = normalizeAcrossTrees(candidates)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates = elbowCutoff(candidates, params.CutoffRatio, params.MaxResults)

	candidates, err = annotate(ctx, s.store, op, candidates)
	if err != nil {
		return nil, err
	}

	var results []types.Result
	if params.EnableAggregation {
		results, err = aggregate(ctx, s.store, candidates, params.AggregationThreshold)
		if err != nil {
			return nil, err
		}
	} else {
		results = make([]types.Result, len(candidates))
		for i, c := range candidates {
			results[i] = candidateToResult(c)
		}
	}

	results = subsumeAncestors(results)
	sortResults(results)
	if params.Limit > 0 && len(results) > params.Limit {
		results = results[:params.Limit]
	}
	return results, nil
}

func (s *Searcher) isLocal(tree string) bool {
	if s.trees == nil {
		return true
	}
	return s.trees.IsLocal(tree)
}

func filterTrees(candidates []types.Candidate, trees []string) []types.Candidate {
	if len(trees) == 0 {
		return candidates
	}
	allowed := map[string]bool{}
	for _, t := range trees {
		allowed[t] = true
	}
	out := candidates[:0]
	for _, c := range candidates {
		if allowed[c.Tree] {
			out = append(out, c)
		}
	}
	return out
}

// Get fetches a single chunk by id. With fullDocument set it returns the
// chunk of the document that contains it instead (or the chunk itself when
// that lookup fails). Only chunk metadata is returned; Get does not
// reconstruct or return body text.
func (s *Searcher) Get(ctx context.Context, id string, fullDocument bool) (types.Chunk, error) {
	chunk, err := s.store.GetChunk(ctx, id)
	if err != nil {
		return types.Chunk{}, err
	}
	if !fullDocument {
		return *chunk, nil
	}
	doc, err := s.store.GetChunk(ctx, chunk.DocID)
	if err != nil {
		return *chunk, nil
	}
	return *doc, nil
}

// Explain parses queryString and returns its AST in serializable form
// without executing a search.
func Explain(queryString string) (query.ExplainNode, error) {
	return query.Explain(queryString)
}
