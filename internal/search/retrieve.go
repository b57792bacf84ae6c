package search

import (
	"context"
	"sort"

	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/internal/query"
	"github.com/cortesi/ra/pkg/types"
)

// retrieve evaluates a compiled query and returns up to limit candidates,
// sorted by score descending (ties broken by depth, then position, then id
// per §4.7's deterministic tie-break rule).
func retrieve(ctx context.Context, store index.Store, op query.Op, fuzzyDistance, limit int) ([]types.Candidate, error) {
	scores, err := evaluate(ctx, store, op, fuzzyDistance)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := sortedChunkIDs(scores)
	candidates := make([]types.Candidate, 0, len(ids))
	for _, id := range ids {
		chunk, err := store.GetChunk(ctx, id)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidateFromChunk(*chunk, scores[id]))
	}

	sortCandidates(candidates)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func candidateFromChunk(c types.Chunk, score float64) types.Candidate {
	return types.Candidate{
		ID:           c.ID,
		DocID:        c.DocID,
		ParentID:     c.ParentID,
		Tree:         c.Tree,
		Path:         c.Path,
		Title:        c.Title,
		Breadcrumb:   c.Breadcrumb,
		Depth:        c.Depth,
		Position:     c.Position,
		ByteStart:    c.ByteStart,
		ByteEnd:      c.ByteEnd,
		SiblingCount: c.SiblingCount,
		Score:        score,
	}
}

func sortCandidates(candidates []types.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, c := candidates[i], candidates[j]
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
