package search

import (
	"context"
	"math"
	"sort"

	"github.com/cortesi/ra/internal/index"
	"github.com/cortesi/ra/internal/query"
)

// k1 and b are the classic Okapi BM25 saturation and length-normalization
// constants.
const (
	k1 = 1.2
	b  = 0.75
)

// bm25 scores a single term occurrence in one field of one chunk.
func bm25(termFreq, fieldLen int, avgFieldLen float64, docFreq, numDocs int) float64 {
	if numDocs == 0 || docFreq == 0 || avgFieldLen == 0 {
		return 0
	}
	idf := math.Log((float64(numDocs)-float64(docFreq))/(float64(docFreq)+0.5) + 1)
	lengthRatio := float64(fieldLen) / avgFieldLen
	denom := float64(termFreq) + k1*(1-b+b*lengthRatio)
	tfNorm := (float64(termFreq) * (k1 + 1)) / denom
	return idf * tfNorm
}

// evaluate runs a compiled query operation against store and returns every
// matching chunk id with its accumulated score. Fuzzy expansion applies only
// to terms longer than fuzzyMinLength (4) characters (§4.1).
func evaluate(ctx context.Context, store index.Store, op query.Op, fuzzyDistance int) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch v := op.(type) {
	case *query.TermOp:
		return evaluateTerm(ctx, store, v, fuzzyDistance)
	case *query.PhraseOp:
		return evaluatePhrase(ctx, store, v)
	case *query.ExactOp:
		return evaluateExact(ctx, store, v)
	case *query.AndOp:
		return evaluateAnd(ctx, store, v, fuzzyDistance)
	case *query.OrOp:
		return evaluateOr(ctx, store, v, fuzzyDistance)
	case *query.NotOp:
		// A bare NOT has no positive meaning outside an AND clause; it
		// contributes nothing on its own.
		return map[string]float64{}, nil
	}
	return map[string]float64{}, nil
}

const fuzzyMinLength = 4

func evaluateTerm(ctx context.Context, store index.Store, op *query.TermOp, fuzzyDistance int) (map[string]float64, error) {
	numDocs, err := store.NumDocs(ctx)
	if err != nil {
		return nil, err
	}
	avgLen, err := store.AvgFieldLength(ctx, op.Field)
	if err != nil {
		return nil, err
	}

	terms := []string{op.Term}
	if op.Fuzzy && fuzzyDistance > 0 && len(op.Term) > fuzzyMinLength {
		vocab, err := store.Vocabulary(ctx, op.Field)
		if err != nil {
			return nil, err
		}
		for _, candidate := range vocab {
			if candidate != op.Term && index.FuzzyMatch(op.Term, candidate, fuzzyDistance) {
				terms = append(terms, candidate)
			}
		}
	}

	scores := map[string]float64{}
	for _, term := range terms {
		postings, err := store.Lookup(ctx, op.Field, term)
		if err != nil {
			return nil, err
		}
		if len(postings) == 0 {
			continue
		}
		docFreq, err := store.DocFreq(ctx, op.Field, term)
		if err != nil {
			return nil, err
		}
		freqs := map[string]int{}
		for _, p := range postings {
			freqs[p.ChunkID]++
		}
		for chunkID, tf := range freqs {
			fieldLen, err := store.FieldLength(ctx, op.Field, chunkID)
			if err != nil {
				return nil, err
			}
			scores[chunkID] += op.Boost * bm25(tf, fieldLen, avgLen, docFreq, numDocs)
		}
	}
	return scores, nil
}

func evaluatePhrase(ctx context.Context, store index.Store, op *query.PhraseOp) (map[string]float64, error) {
	if len(op.Tokens) == 0 {
		return map[string]float64{}, nil
	}
	positionsByChunk := make([]map[string][]int, len(op.Tokens))
	for i, tok := range op.Tokens {
		postings, err := store.Lookup(ctx, op.Field, tok)
		if err != nil {
			return nil, err
		}
		m := map[string][]int{}
		for _, p := range postings {
			m[p.ChunkID] = append(m[p.ChunkID], p.Position)
		}
		positionsByChunk[i] = m
	}

	numDocs, err := store.NumDocs(ctx)
	if err != nil {
		return nil, err
	}
	avgLen, err := store.AvgFieldLength(ctx, op.Field)
	if err != nil {
		return nil, err
	}

	matchCounts := map[string]int{}
	for chunkID, starts := range positionsByChunk[0] {
		var n int
		for _, start := range starts {
			if phraseStartsAt(positionsByChunk, chunkID, start) {
				n++
			}
		}
		if n > 0 {
			matchCounts[chunkID] = n
		}
	}
	docFreq := len(matchCounts)

	scores := map[string]float64{}
	for chunkID, n := range matchCounts {
		fieldLen, err := store.FieldLength(ctx, op.Field, chunkID)
		if err != nil {
			return nil, err
		}
		scores[chunkID] += op.Boost * bm25(n, fieldLen, avgLen, docFreq, numDocs)
	}
	return scores, nil
}

func phraseStartsAt(positionsByChunk []map[string][]int, chunkID string, start int) bool {
	for i := 1; i < len(positionsByChunk); i++ {
		positions := positionsByChunk[i][chunkID]
		if !containsInt(positions, start+i) {
			return false
		}
	}
	return true
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func evaluateExact(ctx context.Context, store index.Store, op *query.ExactOp) (map[string]float64, error) {
	chunks, err := store.LookupExact(ctx, op.Field, op.Value)
	if err != nil {
		return nil, err
	}
	scores := map[string]float64{}
	for _, c := range chunks {
		scores[c.ID] += op.Boost
	}
	return scores, nil
}

func evaluateAnd(ctx context.Context, store index.Store, op *query.AndOp, fuzzyDistance int) (map[string]float64, error) {
	var positives []map[string]float64
	var banned map[string]bool

	for _, clause := range op.Clauses {
		if not, ok := clause.(*query.NotOp); ok {
			inner, err := evaluate(ctx, store, not.Inner, fuzzyDistance)
			if err != nil {
				return nil, err
			}
			if banned == nil {
				banned = map[string]bool{}
			}
			for id := range inner {
				banned[id] = true
			}
			continue
		}
		m, err := evaluate(ctx, store, clause, fuzzyDistance)
		if err != nil {
			return nil, err
		}
		positives = append(positives, m)
	}

	if len(positives) == 0 {
		return map[string]float64{}, nil
	}

	result := map[string]float64{}
	for id, score := range positives[0] {
		if banned[id] {
			continue
		}
		total, inAll := score, true
		for _, m := range positives[1:] {
			s, ok := m[id]
			if !ok {
				inAll = false
				break
			}
			total += s
		}
		if inAll {
			result[id] = total
		}
	}
	return result, nil
}

func evaluateOr(ctx context.Context, store index.Store, op *query.OrOp, fuzzyDistance int) (map[string]float64, error) {
	result := map[string]float64{}
	for _, clause := range op.Clauses {
		if _, ok := clause.(*query.NotOp); ok {
			continue
		}
		m, err := evaluate(ctx, store, clause, fuzzyDistance)
		if err != nil {
			return nil, err
		}
		for id, score := range m {
			result[id] += score
		}
	}
	return result, nil
}

// sortedChunkIDs returns scores' keys sorted for deterministic iteration in
// tests and candidate construction.
func sortedChunkIDs(scores map[string]float64) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
