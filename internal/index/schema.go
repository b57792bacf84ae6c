package index

// Field boosts applied to a bare term's multi-field disjunction, and to the
// equivalent field when a query explicitly names it.
const (
	BoostTitle          = 3.0
	BoostTags           = 2.5
	BoostPath           = 2.0
	BoostPathComponents = 2.0
	BoostBody           = 1.0
)

// Pipeline defaults, overridable per search call.
const (
	DefaultCandidateLimit       = 100
	DefaultLocalBoost           = 1.5
	DefaultCutoffRatio          = 0.5
	DefaultAggregationThreshold = 0.5
	DefaultMaxResults           = 20
	// DefaultFuzzyDistance is the max edit distance fuzzy term expansion
	// uses when a caller leaves it unset. Fuzzy matching is only disabled
	// by an explicit distance of 0, never by omission.
	DefaultFuzzyDistance = 1
)

// Field is one of the closed set of queryable chunk fields.
type Field string

const (
	FieldTitle          Field = "title"
	FieldBody           Field = "body"
	FieldTags           Field = "tags"
	FieldPath           Field = "path"
	FieldTree           Field = "tree"
	FieldPathComponents Field = "path_components"
)

// AnalyzedFields are the text fields that a bare term expands into, in the
// order their boosts are applied.
var AnalyzedFields = []Field{FieldTitle, FieldTags, FieldPath, FieldBody}

// FieldBoost returns the boost factor for a named field, or BoostBody if the
// field is not one of the known boosted fields (e.g. tree, which is an exact
// match with no boost concept).
func FieldBoost(f Field) float64 {
	switch f {
	case FieldTitle:
		return BoostTitle
	case FieldTags:
		return BoostTags
	case FieldPath:
		return BoostPath
	default:
		return BoostBody
	}
}
