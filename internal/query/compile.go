package query

import "github.com/cortesi/ra/internal/index"

// Analyzer normalizes raw query text into the same token form indexed
// postings use (lowercased, stemmed), so a query for "Rust" or "running"
// matches postings stored as "rust" or "run". *analyzer.Analyzer satisfies
// this; kept as a narrow interface here so query does not import analyzer.
type Analyzer interface {
	Analyze(text string) []string
}

// Op is a lowered, field-scoped leaf operation the search pipeline
// evaluates against index.Store.
type Op interface {
	op()
}

// TermOp matches a single analyzed term in one field. When Fuzzy is set the
// term is also expanded to close vocabulary matches, whether or not exact
// postings exist.
type TermOp struct {
	Field index.Field
	Term  string
	Fuzzy bool
	Boost float64
}

// PhraseOp matches an ordered token sequence at adjacent positions in one
// field. Never fuzzy.
type PhraseOp struct {
	Field  index.Field
	Tokens []string
	Boost  float64
}

// ExactOp matches a field's stored value exactly (tree:).
type ExactOp struct {
	Field index.Field
	Value string
	Boost float64
}

// AndOp/OrOp/NotOp mirror the AST's boolean structure after lowering.
type AndOp struct{ Clauses []Op }
type OrOp struct{ Clauses []Op }
type NotOp struct{ Inner Op }

func (*TermOp) op()   {}
func (*PhraseOp) op() {}
func (*ExactOp) op()  {}
func (*AndOp) op()    {}
func (*OrOp) op()     {}
func (*NotOp) op()    {}

// Compile lowers a parsed AST into index operations, analyzing every leaf
// term and phrase token through a, so the compiled ops carry the same
// lowercased, stemmed form stored in postings. a must be built from the same
// stemmer language the index was populated with. A bare term or phrase with
// no field prefix expands into a disjunction over every analyzed field, each
// carrying that field's boost; tree: lowers to an exact match against the
// raw, unanalyzed text instead, since tree names are stored verbatim.
func Compile(n Node, a Analyzer) Op {
	return compile(n, "", 1.0, a)
}

// analyzeOne runs a through text and returns the first resulting token, or
// "" if analysis drops the text entirely (e.g. it exceeds the analyzer's
// max token length). A raw query word almost always analyzes to exactly one
// token; the rare word that splits into several (an embedded apostrophe or
// similar) loses its trailing pieces, the same approximation annotate's
// snippet highlighting already accepts for stemmed substring matches.
func analyzeOne(a Analyzer, text string) string {
	tokens := a.Analyze(text)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

func compile(n Node, field string, boost float64, a Analyzer) Op {
	switch v := n.(type) {
	case *Term:
		if field != "" {
			fld := index.Field(field)
			if fld == index.FieldTree {
				return &ExactOp{Field: fld, Value: v.Text, Boost: boost}
			}
			return compileFieldLeaf(fld, analyzeOne(a, v.Text), boost)
		}
		return compileBareTerm(analyzeOne(a, v.Text), boost)
	case *Phrase:
		tokens := make([]string, len(v.Tokens))
		for i, tok := range v.Tokens {
			tokens[i] = analyzeOne(a, tok)
		}
		if field != "" {
			return &PhraseOp{Field: index.Field(field), Tokens: tokens, Boost: boost}
		}
		return compileBarePhrase(tokens, boost)
	case *Field:
		return compile(v.Inner, v.Name, boost, a)
	case *Boost:
		return compile(v.Inner, field, boost*v.Factor, a)
	case *Not:
		return &NotOp{Inner: compile(v.Inner, field, boost, a)}
	case *And:
		clauses := make([]Op, len(v.Clauses))
		for i, c := range v.Clauses {
			clauses[i] = compile(c, field, boost, a)
		}
		return &AndOp{Clauses: clauses}
	case *Or:
		clauses := make([]Op, len(v.Clauses))
		for i, c := range v.Clauses {
			clauses[i] = compile(c, field, boost, a)
		}
		return &OrOp{Clauses: clauses}
	}
	return &OrOp{}
}

func compileFieldLeaf(field index.Field, text string, boost float64) Op {
	return &TermOp{Field: field, Term: text, Fuzzy: true, Boost: boost * index.FieldBoost(field)}
}

func compileBareTerm(text string, boost float64) Op {
	clauses := make([]Op, 0, len(index.AnalyzedFields)+1)
	for _, f := range index.AnalyzedFields {
		clauses = append(clauses, &TermOp{Field: f, Term: text, Fuzzy: true, Boost: boost * index.FieldBoost(f)})
	}
	clauses = append(clauses, &TermOp{
		Field: index.FieldPathComponents, Term: text, Fuzzy: true, Boost: boost * index.BoostPathComponents,
	})
	return &OrOp{Clauses: clauses}
}

func compileBarePhrase(tokens []string, boost float64) Op {
	clauses := make([]Op, 0, len(index.AnalyzedFields))
	for _, f := range index.AnalyzedFields {
		clauses = append(clauses, &PhraseOp{Field: f, Tokens: tokens, Boost: boost * index.FieldBoost(f)})
	}
	return &OrOp{Clauses: clauses}
}
