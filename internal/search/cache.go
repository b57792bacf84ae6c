package search

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cortesi/ra/pkg/types"
)

const defaultCacheSize = 1000

// DefaultCacheTTL is how long a cached search result stays valid.
const DefaultCacheTTL = time.Hour

// cacheEntry pairs a cached result set with its expiry time.
type cacheEntry struct {
	results   Results
	expiresAt time.Time
}

// resultCache is an LRU of query results keyed by a hash of the query
// string and its params, with a TTL on top. Entries are deep-copied on
// both store and fetch so a caller mutating a returned Results value can
// never corrupt the cached copy, and invalidated wholesale on any index
// write since there is no cheap way to know which cached queries a given
// document change could affect.
type resultCache struct {
	cache *lru.Cache[[32]byte, cacheEntry]
	ttl   time.Duration
	mu    sync.RWMutex
}

func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c, err := lru.New[[32]byte, cacheEntry](defaultCacheSize)
	if err != nil {
		panic(fmt.Sprintf("create result cache: %v", err))
	}
	return &resultCache{cache: c, ttl: ttl}
}

func cacheKey(queryString string, params Params) [32]byte {
	fuzzyDistance := -1
	if params.FuzzyDistance != nil {
		fuzzyDistance = *params.FuzzyDistance
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%.4f|%.4f|%d|%d|%v|%t|%d|%.4f",
		queryString, params.CandidateLimit, params.CutoffRatio, params.AggregationThreshold,
		params.MaxResults, params.Limit, params.Trees, params.EnableAggregation,
		fuzzyDistance, params.LocalBoost)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (c *resultCache) get(queryString string, params Params) (Results, bool) {
	key := cacheKey(queryString, params)

	c.mu.RLock()
	entry, ok := c.cache.Get(key)
	if !ok {
		c.mu.RUnlock()
		return Results{}, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.RUnlock()
		c.mu.Lock()
		c.cache.Remove(key)
		c.mu.Unlock()
		return Results{}, false
	}
	out := copyResults(entry.results)
	c.mu.RUnlock()
	return out, true
}

func (c *resultCache) put(queryString string, params Params, results Results) {
	key := cacheKey(queryString, params)
	entry := cacheEntry{results: copyResults(results), expiresAt: time.Now().Add(c.ttl)}
	c.mu.Lock()
	c.cache.Add(key, entry)
	c.mu.Unlock()
}

func (c *resultCache) invalidateAll() {
	c.mu.Lock()
	c.cache.Purge()
	c.mu.Unlock()
}

func copyResults(src Results) Results {
	dst := Results{Query: src.Query, Results: make([]types.Result, len(src.Results))}
	for i, r := range src.Results {
		dst.Results[i] = copyResult(r)
	}
	return dst
}

func copyResult(r types.Result) types.Result {
	out := r
	if r.MatchRanges != nil {
		out.MatchRanges = append([]types.MatchRange(nil), r.MatchRanges...)
	}
	if r.Constituents != nil {
		out.Constituents = make([]types.Result, len(r.Constituents))
		for i, c := range r.Constituents {
			out.Constituents[i] = copyResult(c)
		}
	}
	return out
}
