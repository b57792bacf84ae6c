package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore implements index.Store over plain maps. Only the methods a
// given test exercises need populated data; the rest return zero values.
type fakeStore struct {
	chunks        map[string]types.Chunk
	bodies        map[string]string
	postings      map[index.Field]map[string][]index.Posting
	docFreq       map[index.Field]map[string]int
	fieldLength   map[index.Field]map[string]int
	avgFieldLen   map[index.Field]float64
	vocabulary    map[index.Field][]string
	numDocsResult int
	lookupCalls   int
}

func newFakeStore(chunks ...types.Chunk) *fakeStore {
	m := map[string]types.Chunk{}
	for _, c := range chunks {
		m[c.ID] = c
	}
	return &fakeStore{chunks: m}
}

func (f *fakeStore) GetChunk(_ context.Context, id string) (*types.Chunk, error) {
	c, ok := f.chunks[id]
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", id, types.ErrUnknownID)
	}
	return &c, nil
}

func (f *fakeStore) AddChunks(context.Context, string, []types.Chunk, int64) error { return nil }
func (f *fakeStore) RemoveDoc(context.Context, string) error                       { return nil }

func (f *fakeStore) Lookup(_ context.Context, field index.Field, term string) ([]index.Posting, error) {
	f.lookupCalls++
	if f.postings == nil {
		return nil, nil
	}
	return f.postings[field][term], nil
}

func (f *fakeStore) LookupExact(context.Context, index.Field, string) ([]types.Chunk, error) {
	return nil, nil
}

func (f *fakeStore) Vocabulary(_ context.Context, field index.Field) ([]string, error) {
	return f.vocabulary[field], nil
}

func (f *fakeStore) DocFreq(_ context.Context, field index.Field, term string) (int, error) {
	if f.docFreq == nil {
		return 0, nil
	}
	return f.docFreq[field][term], nil
}

func (f *fakeStore) NumDocs(context.Context) (int, error) { return f.numDocsResult, nil }

func (f *fakeStore) FieldLength(_ context.Context, field index.Field, chunkID string) (int, error) {
	if f.fieldLength == nil {
		return 0, nil
	}
	return f.fieldLength[field][chunkID], nil
}

func (f *fakeStore) AvgFieldLength(_ context.Context, field index.Field) (float64, error) {
	return f.avgFieldLen[field], nil
}

func (f *fakeStore) IndexBody(context.Context, string, string) error { return nil }

func (f *fakeStore) GetBody(_ context.Context, id string) (string, error) {
	return f.bodies[id], nil
}

func (f *fakeStore) Manifest(context.Context, string) (int64, [32]byte, bool, error) {
	return 0, [32]byte{}, false, nil
}
func (f *fakeStore) ConfigHash(context.Context) ([32]byte, bool, error) {
	return [32]byte{}, false, nil
}
func (f *fakeStore) SetConfigHash(context.Context, [32]byte) error { return nil }
func (f *fakeStore) ManifestDocIDs(context.Context, string) ([]string, error) {
	return nil, nil
}
func (f *fakeStore) Clear(context.Context) error                   { return nil }
func (f *fakeStore) BeginTx(context.Context) (index.Tx, error) {
	return nil, fmt.Errorf("not supported")
}
func (f *fakeStore) Close() error { return nil }

func cand(id, parentID string, score float64, depth, siblingCount int) types.Candidate {
	return types.Candidate{
		ID: id, ParentID: parentID, Score: score, Depth: depth, SiblingCount: siblingCount,
		DocID: "local:test.md", Tree: "local", Path: "test.md",
	}
}

func chunk(id, parentID string, depth, siblingCount int) types.Chunk {
	return types.Chunk{
		ID: id, ParentID: parentID, DocID: "local:test.md", Tree: "local", Path: "test.md",
		Kind: kindFor(parentID), Depth: depth, SiblingCount: siblingCount, ByteStart: 0, ByteEnd: 1,
	}
}

func kindFor(parentID string) types.NodeKind {
	if parentID == "" {
		return types.KindDocument
	}
	return types.KindHeading
}

func TestAggregateEmptyInput(t *testing.T) {
	results, err := aggregate(context.Background(), newFakeStore(), nil, 0.5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAggregateSingleCandidateNoAggregation(t *testing.T) {
	store := newFakeStore()
	results, err := aggregate(context.Background(), store,
		[]types.Candidate{cand("doc#intro", "doc", 5.0, 1, 3)}, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].IsAggregated())
}

func TestAggregateBelowThresholdStaysSeparate(t *testing.T) {
	store := newFakeStore()
	c1 := cand("doc#s1", "doc", 5.0, 1, 5)
	c2 := cand("doc#s2", "doc", 4.0, 1, 5)
	results, err := aggregate(context.Background(), store, []types.Candidate{c1, c2}, 0.5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestAggregateAtThresholdAggregates(t *testing.T) {
	store := newFakeStore(chunk("doc", "", 0, 1))
	c1 := cand("doc#s1", "doc", 5.0, 1, 4)
	c2 := cand("doc#s2", "doc", 4.0, 1, 4)
	results, err := aggregate(context.Background(), store, []types.Candidate{c1, c2}, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsAggregated())
	assert.Equal(t, "doc", results[0].ID)
	assert.Len(t, results[0].Constituents, 2)
}

func TestAggregateScoreIsMaxOfConstituents(t *testing.T) {
	store := newFakeStore(chunk("doc", "", 0, 1))
	c1 := cand("doc#s1", "doc", 8.0, 1, 3)
	c2 := cand("doc#s2", "doc", 6.0, 1, 3)
	c3 := cand("doc#s3", "doc", 4.0, 1, 3)
	results, err := aggregate(context.Background(), store, []types.Candidate{c1, c2, c3}, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 8.0, results[0].Score)
}

func TestAggregateCascadesToDocument(t *testing.T) {
	store := newFakeStore(
		chunk("doc#section", "doc", 1, 1),
		chunk("doc", "", 0, 1),
	)
	sub1 := cand("doc#section#sub1", "doc#section", 5.0, 2, 2)
	sub2 := cand("doc#section#sub2", "doc#section", 4.0, 2, 2)
	results, err := aggregate(context.Background(), store, []types.Candidate{sub1, sub2}, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc", results[0].ID)
	assert.Len(t, results[0].Constituents, 2)
}

func TestAggregateNoParentInfoSkipsAggregation(t *testing.T) {
	store := newFakeStore()
	c1 := cand("doc#s1", "doc", 5.0, 1, 2)
	c2 := cand("doc#s2", "doc", 4.0, 1, 2)
	results, err := aggregate(context.Background(), store, []types.Candidate{c1, c2}, 0.5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.IsAggregated())
	}
}

func TestSubsumeAncestorsDropsDescendant(t *testing.T) {
	doc := types.Result{ID: "doc", ParentID: ""}
	child := types.Result{ID: "doc#s1", ParentID: "doc"}
	kept := subsumeAncestors([]types.Result{doc, child})
	require.Len(t, kept, 1)
	assert.Equal(t, "doc", kept[0].ID)
}

func TestSubsumeAncestorsTransitiveChain(t *testing.T) {
	doc := types.Result{ID: "doc", ParentID: ""}
	section := types.Result{ID: "doc#s1", ParentID: "doc"}
	sub := types.Result{ID: "doc#s1#sub1", ParentID: "doc#s1"}
	kept := subsumeAncestors([]types.Result{doc, section, sub})
	require.Len(t, kept, 1)
	assert.Equal(t, "doc", kept[0].ID)
}

func TestSubsumeAncestorsNoOverlapKeepsAll(t *testing.T) {
	a := types.Result{ID: "doc#a", ParentID: "doc"}
	b := types.Result{ID: "doc#b", ParentID: "doc"}
	kept := subsumeAncestors([]types.Result{a, b})
	assert.Len(t, kept, 2)
}
