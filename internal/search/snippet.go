package search

import (
	"context"
	"sort"
	"strings"

	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/internal/query"
	"github.com/cortesi/ra/pkg/types"
)

const snippetRadius = 80

// annotate fills in Snippet and MatchRanges on each candidate by locating
// every leaf query term as a case-insensitive substring of the candidate's
// reconstructed body. Terms are already stemmed by the analyzer, so a match
// covers the stem rather than the whole surface word; that is an accepted
// approximation since original byte offsets are not retained in postings.
func annotate(ctx context.Context, store index.Store, op query.Op, candidates []types.Candidate) ([]types.Candidate, error) {
	terms := leafTerms(op)
	if len(terms) == 0 {
		return candidates, nil
	}
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := store.GetBody(ctx, candidates[i].ID)
		if err != nil {
			return nil, err
		}
		if body == "" {
			continue
		}
		ranges := findRanges(body, terms)
		candidates[i].MatchRanges = ranges
		candidates[i].Snippet = buildSnippet(body, ranges)
	}
	return candidates, nil
}

func leafTerms(op query.Op) []string {
	seen := map[string]bool{}
	var out []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	var walk func(query.Op)
	walk = func(o query.Op) {
		switch v := o.(type) {
		case *query.TermOp:
			add(v.Term)
		case *query.PhraseOp:
			for _, t := range v.Tokens {
				add(t)
			}
		case *query.AndOp:
			for _, c := range v.Clauses {
				walk(c)
			}
		case *query.OrOp:
			for _, c := range v.Clauses {
				walk(c)
			}
		case *query.NotOp:
			// excluded terms are never highlighted
		}
	}
	walk(op)
	return out
}

func findRanges(body string, terms []string) []types.MatchRange {
	lower := strings.ToLower(body)
	var ranges []types.MatchRange
	for _, term := range terms {
		t := strings.ToLower(term)
		if t == "" {
			continue
		}
		start := 0
		for {
			idx := strings.Index(lower[start:], t)
			if idx < 0 {
				break
			}
			abs := start + idx
			ranges = append(ranges, types.MatchRange{Start: abs, End: abs + len(t)})
			start = abs + len(t)
		}
	}
	return mergeRanges(ranges)
}

func mergeRanges(ranges []types.MatchRange) []types.MatchRange {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	merged := []types.MatchRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func buildSnippet(body string, ranges []types.MatchRange) string {
	if len(ranges) == 0 {
		if len(body) > snippetRadius*2 {
			return strings.TrimSpace(body[:snippetRadius*2]) + "…"
		}
		return strings.TrimSpace(body)
	}
	first := ranges[0]
	start := first.Start - snippetRadius
	if start < 0 {
		start = 0
	}
	end := first.End + snippetRadius
	if end > len(body) {
		end = len(body)
	}
	snippet := strings.TrimSpace(body[start:end])
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(body) {
		snippet += "…"
	}
	return snippet
}
