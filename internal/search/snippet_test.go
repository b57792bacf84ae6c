package search

import (
	"context"
	"testing"

	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/internal/query"
	"github.com/cortesi/ra/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRangesLocatesCaseInsensitiveMatches(t *testing.T) {
	ranges := findRanges("The Widget is red.", []string{"widget", "red"})
	require.Len(t, ranges, 2)
	assert.Equal(t, "Widget", "The Widget is red."[ranges[0].Start:ranges[0].End])
	assert.Equal(t, "red", "The Widget is red."[ranges[1].Start:ranges[1].End])
}

func TestFindRangesNoMatchReturnsNil(t *testing.T) {
	ranges := findRanges("nothing here", []string{"widget"})
	assert.Nil(t, ranges)
}

func TestMergeRangesCombinesOverlapping(t *testing.T) {
	ranges := []types.MatchRange{{Start: 0, End: 5}, {Start: 3, End: 8}, {Start: 20, End: 25}}
	merged := mergeRanges(ranges)
	require.Len(t, merged, 2)
	assert.Equal(t, types.MatchRange{Start: 0, End: 8}, merged[0])
	assert.Equal(t, types.MatchRange{Start: 20, End: 25}, merged[1])
}

func TestMergeRangesEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, mergeRanges(nil))
}

func TestBuildSnippetCentersOnFirstMatch(t *testing.T) {
	body := "lead in text widget appears here at the end"
	snippet := buildSnippet(body, []types.MatchRange{{Start: 13, End: 19}})
	assert.Contains(t, snippet, "widget")
}

func TestBuildSnippetNoRangesTruncatesLongBody(t *testing.T) {
	body := make([]byte, snippetRadius*3)
	for i := range body {
		body[i] = 'x'
	}
	snippet := buildSnippet(string(body), nil)
	assert.Contains(t, snippet, "…")
}

func TestBuildSnippetNoRangesShortBodyUntouched(t *testing.T) {
	snippet := buildSnippet("short body", nil)
	assert.Equal(t, "short body", snippet)
}

func TestLeafTermsCollectsFromNestedOps(t *testing.T) {
	op := &query.AndOp{Clauses: []query.Op{
		&query.TermOp{Term: "widget"},
		&query.OrOp{Clauses: []query.Op{
			&query.PhraseOp{Tokens: []string{"red", "car"}},
			&query.NotOp{Inner: &query.TermOp{Term: "excluded"}},
		}},
	}}
	terms := leafTerms(op)
	assert.ElementsMatch(t, []string{"widget", "red", "car"}, terms)
}

func TestAnnotateFillsSnippetAndMatchRanges(t *testing.T) {
	store := newFakeStore(chunk("doc#s1", "doc", 1, 1))
	store.bodies = map[string]string{"doc#s1": "a short passage about widgets and gears"}
	op := &query.TermOp{Field: index.FieldBody, Term: "widget"}
	candidates := []types.Candidate{{ID: "doc#s1"}}
	out, err := annotate(context.Background(), store, op, candidates)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].Snippet)
	assert.NotEmpty(t, out[0].MatchRanges)
}

func TestAnnotateEmptyBodySkipsCandidate(t *testing.T) {
	store := newFakeStore(chunk("doc#s1", "doc", 1, 1))
	op := &query.TermOp{Field: index.FieldBody, Term: "widget"}
	candidates := []types.Candidate{{ID: "doc#s1"}}
	out, err := annotate(context.Background(), store, op, candidates)
	require.NoError(t, err)
	assert.Empty(t, out[0].Snippet)
}
