package search

import (
	"context"
	"testing"

	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBM25ZeroWhenNoDocFreq(t *testing.T) {
	assert.Equal(t, 0.0, bm25(3, 10, 8.0, 0, 5))
}

func TestBM25ZeroWhenNoDocs(t *testing.T) {
	assert.Equal(t, 0.0, bm25(3, 10, 8.0, 2, 0))
}

func TestBM25IncreasesWithTermFrequency(t *testing.T) {
	low := bm25(1, 10, 10.0, 2, 5)
	high := bm25(4, 10, 10.0, 2, 5)
	assert.Greater(t, high, low)
}

func TestBM25PenalizesLongerFields(t *testing.T) {
	short := bm25(2, 5, 10.0, 2, 5)
	long := bm25(2, 40, 10.0, 2, 5)
	assert.Greater(t, short, long)
}

func TestBM25RarerTermsScoreHigher(t *testing.T) {
	rare := bm25(2, 10, 10.0, 1, 10)
	common := bm25(2, 10, 10.0, 8, 10)
	assert.Greater(t, rare, common)
}

func withPostings(store *fakeStore, field index.Field, term string, postings ...index.Posting) {
	if store.postings == nil {
		store.postings = map[index.Field]map[string][]index.Posting{}
	}
	if store.postings[field] == nil {
		store.postings[field] = map[string][]index.Posting{}
	}
	store.postings[field][term] = postings
}

func TestEvaluateTermScoresMatchingChunks(t *testing.T) {
	store := newFakeStore(chunk("doc#s1", "doc", 1, 1))
	withPostings(store, index.FieldBody, "widget", index.Posting{ChunkID: "doc#s1", Field: index.FieldBody, Term: "widget", Position: 0})
	store.docFreq = map[index.Field]map[string]int{index.FieldBody: {"widget": 1}}
	store.fieldLength = map[index.Field]map[string]int{index.FieldBody: {"doc#s1": 5}}
	store.avgFieldLen = map[index.Field]float64{index.FieldBody: 5}
	store.numDocsResult = 3

	op := &query.TermOp{Field: index.FieldBody, Term: "widget", Boost: 1.0}
	scores, err := evaluateTerm(context.Background(), store, op, 1)
	require.NoError(t, err)
	require.Contains(t, scores, "doc#s1")
	assert.Greater(t, scores["doc#s1"], 0.0)
}

func TestEvaluateTermNoMatchesReturnsEmpty(t *testing.T) {
	store := newFakeStore()
	op := &query.TermOp{Field: index.FieldBody, Term: "missing", Boost: 1.0}
	scores, err := evaluateTerm(context.Background(), store, op, 1)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestEvaluatePhraseRequiresAdjacentPositions(t *testing.T) {
	store := newFakeStore(chunk("doc#s1", "doc", 1, 1))
	withPostings(store, index.FieldBody, "red", index.Posting{ChunkID: "doc#s1", Position: 0})
	withPostings(store, index.FieldBody, "widget", index.Posting{ChunkID: "doc#s1", Position: 1})
	store.fieldLength = map[index.Field]map[string]int{index.FieldBody: {"doc#s1": 5}}
	store.avgFieldLen = map[index.Field]float64{index.FieldBody: 5}
	store.numDocsResult = 2

	op := &query.PhraseOp{Field: index.FieldBody, Tokens: []string{"red", "widget"}, Boost: 1.0}
	scores, err := evaluatePhrase(context.Background(), store, op)
	require.NoError(t, err)
	assert.Contains(t, scores, "doc#s1")
}

func TestEvaluatePhraseNonAdjacentNoMatch(t *testing.T) {
	store := newFakeStore(chunk("doc#s1", "doc", 1, 1))
	withPostings(store, index.FieldBody, "red", index.Posting{ChunkID: "doc#s1", Position: 0})
	withPostings(store, index.FieldBody, "widget", index.Posting{ChunkID: "doc#s1", Position: 5})
	store.fieldLength = map[index.Field]map[string]int{index.FieldBody: {"doc#s1": 10}}
	store.avgFieldLen = map[index.Field]float64{index.FieldBody: 10}
	store.numDocsResult = 2

	op := &query.PhraseOp{Field: index.FieldBody, Tokens: []string{"red", "widget"}, Boost: 1.0}
	scores, err := evaluatePhrase(context.Background(), store, op)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestEvaluateAndIntersectsPositiveClauses(t *testing.T) {
	store := newFakeStore(chunk("doc#s1", "doc", 1, 1), chunk("doc#s2", "doc", 1, 1))
	withPostings(store, index.FieldBody, "red", index.Posting{ChunkID: "doc#s1", Position: 0}, index.Posting{ChunkID: "doc#s2", Position: 0})
	withPostings(store, index.FieldBody, "widget", index.Posting{ChunkID: "doc#s1", Position: 3})
	store.docFreq = map[index.Field]map[string]int{index.FieldBody: {"red": 2, "widget": 1}}
	store.fieldLength = map[index.Field]map[string]int{index.FieldBody: {"doc#s1": 5, "doc#s2": 5}}
	store.avgFieldLen = map[index.Field]float64{index.FieldBody: 5}
	store.numDocsResult = 2

	and := &query.AndOp{Clauses: []query.Op{
		&query.TermOp{Field: index.FieldBody, Term: "red", Boost: 1.0},
		&query.TermOp{Field: index.FieldBody, Term: "widget", Boost: 1.0},
	}}
	scores, err := evaluateAnd(context.Background(), store, and, 1)
	require.NoError(t, err)
	assert.Contains(t, scores, "doc#s1")
	assert.NotContains(t, scores, "doc#s2")
}

func TestEvaluateAndSubtractsNotClause(t *testing.T) {
	store := newFakeStore(chunk("doc#s1", "doc", 1, 1), chunk("doc#s2", "doc", 1, 1))
	withPostings(store, index.FieldBody, "red", index.Posting{ChunkID: "doc#s1", Position: 0}, index.Posting{ChunkID: "doc#s2", Position: 0})
	withPostings(store, index.FieldBody, "widget", index.Posting{ChunkID: "doc#s2", Position: 0})
	store.docFreq = map[index.Field]map[string]int{index.FieldBody: {"red": 2, "widget": 1}}
	store.fieldLength = map[index.Field]map[string]int{index.FieldBody: {"doc#s1": 5, "doc#s2": 5}}
	store.avgFieldLen = map[index.Field]float64{index.FieldBody: 5}
	store.numDocsResult = 2

	and := &query.AndOp{Clauses: []query.Op{
		&query.TermOp{Field: index.FieldBody, Term: "red", Boost: 1.0},
		&query.NotOp{Inner: &query.TermOp{Field: index.FieldBody, Term: "widget", Boost: 1.0}},
	}}
	scores, err := evaluateAnd(context.Background(), store, and, 1)
	require.NoError(t, err)
	assert.Contains(t, scores, "doc#s1")
	assert.NotContains(t, scores, "doc#s2")
}

func TestEvaluateOrUnionsClausesAndSkipsBareNot(t *testing.T) {
	store := newFakeStore(chunk("doc#s1", "doc", 1, 1), chunk("doc#s2", "doc", 1, 1))
	withPostings(store, index.FieldBody, "red", index.Posting{ChunkID: "doc#s1", Position: 0})
	withPostings(store, index.FieldBody, "widget", index.Posting{ChunkID: "doc#s2", Position: 0})
	store.docFreq = map[index.Field]map[string]int{index.FieldBody: {"red": 1, "widget": 1}}
	store.fieldLength = map[index.Field]map[string]int{index.FieldBody: {"doc#s1": 5, "doc#s2": 5}}
	store.avgFieldLen = map[index.Field]float64{index.FieldBody: 5}
	store.numDocsResult = 2

	or := &query.OrOp{Clauses: []query.Op{
		&query.TermOp{Field: index.FieldBody, Term: "red", Boost: 1.0},
		&query.TermOp{Field: index.FieldBody, Term: "widget", Boost: 1.0},
		&query.NotOp{Inner: &query.TermOp{Field: index.FieldBody, Term: "red", Boost: 1.0}},
	}}
	scores, err := evaluateOr(context.Background(), store, or, 1)
	require.NoError(t, err)
	assert.Contains(t, scores, "doc#s1")
	assert.Contains(t, scores, "doc#s2")
}

func TestEvaluateExactMatchesWholeFieldValue(t *testing.T) {
	store := newFakeStore()
	op := &query.ExactOp{Field: index.FieldTree, Value: "local", Boost: 2.0}
	// LookupExact is a stub returning nil on fakeStore; verify it degrades
	// to no matches rather than erroring.
	scores, err := evaluateExact(context.Background(), store, op)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestSortedChunkIDsIsDeterministic(t *testing.T) {
	scores := map[string]float64{"b": 1, "a": 2, "c": 0.5}
	assert.Equal(t, []string{"a", "b", "c"}, sortedChunkIDs(scores))
}
