package search

import (
	"testing"
	"time"

	"github.com/cortesi/ra/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCacheGetMissReturnsFalse(t *testing.T) {
	c := newResultCache(time.Hour)
	_, ok := c.get("widget", Params{})
	assert.False(t, ok)
}

func TestResultCachePutThenGetHits(t *testing.T) {
	c := newResultCache(time.Hour)
	want := Results{Query: "widget", Results: []types.Result{{ID: "doc#s1", Score: 1.5}}}
	c.put("widget", Params{}, want)

	got, ok := c.get("widget", Params{})
	require.True(t, ok)
	assert.Equal(t, want.Query, got.Query)
	assert.Equal(t, want.Results, got.Results)
}

func TestResultCacheDifferentParamsDifferentKey(t *testing.T) {
	c := newResultCache(time.Hour)
	c.put("widget", Params{Limit: 10}, Results{Query: "widget"})
	_, ok := c.get("widget", Params{Limit: 20})
	assert.False(t, ok)
}

func TestResultCacheExpiresAfterTTL(t *testing.T) {
	c := newResultCache(-time.Nanosecond)
	c.ttl = time.Nanosecond
	c.put("widget", Params{}, Results{Query: "widget"})
	time.Sleep(time.Millisecond)
	_, ok := c.get("widget", Params{})
	assert.False(t, ok)
}

func TestResultCacheInvalidateAllClears(t *testing.T) {
	c := newResultCache(time.Hour)
	c.put("widget", Params{}, Results{Query: "widget"})
	c.invalidateAll()
	_, ok := c.get("widget", Params{})
	assert.False(t, ok)
}

func TestResultCacheStoreIsIsolatedFromMutation(t *testing.T) {
	c := newResultCache(time.Hour)
	original := Results{Results: []types.Result{{ID: "doc#s1", MatchRanges: []types.MatchRange{{Start: 0, End: 3}}}}}
	c.put("widget", Params{}, original)

	original.Results[0].MatchRanges[0].Start = 99

	got, ok := c.get("widget", Params{})
	require.True(t, ok)
	assert.Equal(t, 0, got.Results[0].MatchRanges[0].Start)
}

func TestResultCacheFetchIsIsolatedFromCallerMutation(t *testing.T) {
	c := newResultCache(time.Hour)
	c.put("widget", Params{}, Results{Results: []types.Result{{ID: "doc#s1", MatchRanges: []types.MatchRange{{Start: 0, End: 3}}}}})

	got, ok := c.get("widget", Params{})
	require.True(t, ok)
	got.Results[0].MatchRanges[0].Start = 99

	again, ok := c.get("widget", Params{})
	require.True(t, ok)
	assert.Equal(t, 0, again.Results[0].MatchRanges[0].Start)
}

func TestCopyResultDeepCopiesConstituents(t *testing.T) {
	r := types.Result{
		ID: "doc",
		Constituents: []types.Result{
			{ID: "doc#s1", MatchRanges: []types.MatchRange{{Start: 1, End: 2}}},
		},
	}
	cp := copyResult(r)
	cp.Constituents[0].MatchRanges[0].Start = 50
	assert.Equal(t, 1, r.Constituents[0].MatchRanges[0].Start)
}
