package search

import (
	"context"
	"errors"
	"sort"

	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/pkg/types"
)

// resultNode is the bookkeeping unit used while aggregating: a result plus
// the sibling count needed to evaluate the next shallower grouping, since
// types.Result itself does not carry sibling count.
type resultNode struct {
	result       types.Result
	siblingCount int
	depth        int
}

// aggregate implements §4.7 step 5: bottom-up hierarchical sibling
// aggregation. Candidates are processed one depth at a time, deepest first;
// a parent whose matching children clear aggregationThreshold absorbs them
// into a single aggregated result that re-enters the process one depth
// shallower, so aggregation can cascade to the document root.
func aggregate(ctx context.Context, store index.Store, candidates []types.Candidate, aggregationThreshold float64) ([]types.Result, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	nodes := map[string]*resultNode{}
	maxDepth := 0
	for _, c := range candidates {
		nodes[c.ID] = &resultNode{result: candidateToResult(c), siblingCount: c.SiblingCount, depth: c.Depth}
		if c.Depth > maxDepth {
			maxDepth = c.Depth
		}
	}

	for depth := maxDepth; depth >= 1; depth-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		groups := map[string][]string{}
		for id, n := range nodes {
			if n.depth != depth {
				continue
			}
			pid := n.result.ParentID
			if pid == "" {
				continue
			}
			groups[pid] = append(groups[pid], id)
		}

		parentIDs := make([]string, 0, len(groups))
		for pid := range groups {
			parentIDs = append(parentIDs, pid)
		}
		sort.Strings(parentIDs)

		for _, pid := range parentIDs {
			childIDs := groups[pid]
			sort.Strings(childIDs)

			siblingCount := nodes[childIDs[0]].siblingCount
			ratio := float64(len(childIDs)) / float64(siblingCount)
			if ratio < aggregationThreshold {
				continue
			}

			parentChunk, err := store.GetChunk(ctx, pid)
			if err != nil {
				if errors.Is(err, types.ErrUnknownID) {
					continue
				}
				return nil, err
			}

			var constituents []types.Result
			maxScore := 0.0
			if existing, ok := nodes[pid]; ok {
				if existing.result.IsAggregated() {
					constituents = append(constituents, existing.result.Constituents...)
				} else {
					constituents = append(constituents, existing.result)
				}
				if existing.result.Score > maxScore {
					maxScore = existing.result.Score
				}
				delete(nodes, pid)
			}
			for _, cid := range childIDs {
				child := nodes[cid]
				if child.result.IsAggregated() {
					constituents = append(constituents, child.result.Constituents...)
				} else {
					constituents = append(constituents, child.result)
				}
				if child.result.Score > maxScore {
					maxScore = child.result.Score
				}
				delete(nodes, cid)
			}

			aggregated := candidateFromChunk(*parentChunk, maxScore)
			result := candidateToResult(aggregated)
			result.Constituents = constituents
			nodes[pid] = &resultNode{result: result, siblingCount: parentChunk.SiblingCount, depth: parentChunk.Depth}
		}
	}

	results := make([]types.Result, 0, len(nodes))
	for _, n := range nodes {
		results = append(results, n.result)
	}
	sortResults(results)
	return results, nil
}

func candidateToResult(c types.Candidate) types.Result {
	return types.Result{
		ID:          c.ID,
		DocID:       c.DocID,
		Tree:        c.Tree,
		Path:        c.Path,
		Title:       c.Title,
		Breadcrumb:  c.Breadcrumb,
		Depth:       c.Depth,
		Score:       c.Score,
		Snippet:     c.Snippet,
		MatchRanges: c.MatchRanges,
		ParentID:    c.ParentID,
		Position:    c.Position,
	}
}

// subsumeAncestors implements §4.7 step 6: drop any result whose ancestor,
// found by walking the parent_id chain transitively, is also present in the
// result set.
func subsumeAncestors(results []types.Result) []types.Result {
	byID := map[string]types.Result{}
	for _, r := range results {
		byID[r.ID] = r
	}

	kept := make([]types.Result, 0, len(results))
	for _, r := range results {
		subsumed := false
		pid := r.ParentID
		for pid != "" {
			parent, ok := byID[pid]
			if !ok {
				break
			}
			subsumed = true
			pid = parent.ParentID
		}
		if !subsumed {
			kept = append(kept, r)
		}
	}
	return kept
}

func sortResults(results []types.Result) {
	sort.Slice(results, func(i, j int) bool {
		a, c := results[i], results[j]
		if a.Score != c.Score {
			return a.Score > c.Score
		}
		if a.Depth != c.Depth {
			return a.Depth < c.Depth
		}
		if a.Position != c.Position {
			return a.Position < c.Position
		}
		return a.ID < c.ID
	})
}
