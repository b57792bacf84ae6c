package query

import (
	"strconv"
	"strings"
)

// String renders n back into query syntax. Re-parsing the result yields an
// AST equivalent to n modulo And/Or flattening: parenthesization is always
// explicit, so precedence round-trips even though whitespace does not.
func String(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Term:
		b.WriteString(v.Text)
	case *Phrase:
		b.WriteByte('"')
		b.WriteString(strings.Join(v.Tokens, " "))
		b.WriteByte('"')
	case *Not:
		b.WriteByte('-')
		writeAtom(b, v.Inner)
	case *Field:
		b.WriteString(v.Name)
		b.WriteByte(':')
		writeAtom(b, v.Inner)
	case *Boost:
		writeAtom(b, v.Inner)
		b.WriteByte('^')
		b.WriteString(formatBoost(v.Factor))
	case *And:
		writeJoined(b, v.Clauses, " ")
	case *Or:
		writeJoined(b, v.Clauses, " OR ")
	}
}

// writeAtom wraps n in parentheses when it is a multi-clause node, so the
// boost/field/not prefix it follows binds only to the intended subtree.
// The node passed to String is never wrapped; an And/Or is wrapped when it
// sits under a Not/Field/Boost or is a clause of another And/Or.
func writeAtom(b *strings.Builder, n Node) {
	switch n.(type) {
	case *And, *Or:
		b.WriteByte('(')
		writeNode(b, n)
		b.WriteByte(')')
	default:
		writeNode(b, n)
	}
}

func writeJoined(b *strings.Builder, clauses []Node, sep string) {
	for i, c := range clauses {
		if i > 0 {
			b.WriteString(sep)
		}
		writeAtom(b, c)
	}
}

func formatBoost(factor float64) string {
	s := strconv.FormatFloat(factor, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
