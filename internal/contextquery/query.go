package contextquery

import (
	"fmt"
	"math"
	"strings"

	"github.com/cortesi/ra/internal/query"
)

// DefaultTermLimit is the number of top-ranked terms included in a
// generated context query when the caller does not override it.
const DefaultTermLimit = 15

// ContextQuery is a generated query together with the metadata a caller
// needs to explain or display it.
type ContextQuery struct {
	AST           query.Node
	QueryString   string
	IncludedTerms []string
}

// IsEmpty reports whether the query carries no terms at all.
func (q ContextQuery) IsEmpty() bool {
	return len(q.IncludedTerms) == 0
}

// BuildQuery takes ranked terms (already sorted by score descending),
// keeps the top limit of them, and builds a boosted OR query: each term
// becomes query.Boost(query.Term(t), t.Score). A single surviving term
// skips the Or wrapper entirely. Returns the zero ContextQuery if ranked
// is empty.
func BuildQuery(ranked []RankedTerm, limit int) ContextQuery {
	if limit <= 0 {
		limit = DefaultTermLimit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if len(ranked) == 0 {
		return ContextQuery{}
	}

	clauses := make([]query.Node, 0, len(ranked))
	parts := make([]string, 0, len(ranked))
	included := make([]string, 0, len(ranked))
	for _, t := range ranked {
		factor := roundTo2(t.Score)
		clauses = append(clauses, &query.Boost{Inner: &query.Term{Text: t.Term}, Factor: factor})
		parts = append(parts, fmt.Sprintf("%s^%.2f", t.Term, factor))
		included = append(included, t.Term)
	}

	var node query.Node
	if len(clauses) == 1 {
		node = clauses[0]
	} else {
		node = query.NewOr(clauses...)
	}

	return ContextQuery{
		AST: node,
		// QueryString is formatted directly (always two decimals) rather
		// than via query.String(node), whose formatBoost prints the
		// shortest round-trip-safe representation (e.g. "13.8") instead
		// of the fixed two-decimal display form generated queries use.
		QueryString:   strings.Join(parts, " OR "),
		IncludedTerms: included,
	}
}

// roundTo2 rounds to two decimal places, matching the display precision
// generated context queries use for boost factors.
func roundTo2(f float64) float64 {
	return math.Round(f*100) / 100
}
