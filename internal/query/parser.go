package query

import (
	"strings"

	"github.com/cortesi/ra/pkg/types"
)

// Fields is the closed set of queryable field names.
var Fields = map[string]bool{
	"title": true,
	"body":  true,
	"tags":  true,
	"path":  true,
	"tree":  true,
}

type parser struct {
	lex  *lexer
	cur  token
	peek token
}

func newParser(src string) *parser {
	p := &parser{lex: newLexer(src)}
	p.cur = p.lex.next()
	p.peek = p.lex.next()
	return p
}

func (p *parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.next()
}

func canStartAtom(k tokenKind) bool {
	switch k {
	case tokWord, tokPhrase, tokLParen, tokMinus:
		return true
	}
	return false
}

// Parse parses a query string into its AST. Returns types.ErrEmptyQuery
// for blank input, or a *types.QueryParseError for any syntax problem.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, types.ErrEmptyQuery
	}
	p := newParser(input)
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, unexpectedToken(p.cur)
	}
	if !hasPositive(node) {
		return nil, &types.QueryParseError{Kind: types.ParseErrPureNegation, Position: 0}
	}
	return node, nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	clauses := []Node{left}
	for p.cur.kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, right)
	}
	return NewOr(clauses...), nil
}

func (p *parser) parseAnd() (Node, error) {
	if p.cur.kind == tokOr {
		return nil, &types.QueryParseError{Kind: types.ParseErrOrWithoutLeft, Position: p.cur.pos}
	}
	var clauses []Node
	for canStartAtom(p.cur.kind) {
		n, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, n)
	}
	if len(clauses) == 0 {
		return nil, unexpectedToken(p.cur)
	}
	return NewAnd(clauses...), nil
}

func (p *parser) parseNot() (Node, error) {
	if p.cur.kind != tokMinus {
		return p.parseFieldPrefixed()
	}
	p.advance()
	if !canStartAtom(p.cur.kind) {
		return nil, unexpectedToken(p.cur)
	}
	inner, err := p.parseFieldPrefixed()
	if err != nil {
		return nil, err
	}
	return &Not{Inner: inner}, nil
}

func (p *parser) parseFieldPrefixed() (Node, error) {
	if p.cur.kind == tokWord && p.peek.kind == tokColon {
		name := strings.ToLower(p.cur.text)
		pos := p.cur.pos
		p.advance() // word
		p.advance() // colon
		if !Fields[name] {
			return nil, &types.QueryParseError{Kind: types.ParseErrUnknownField, Position: pos, Detail: name}
		}
		if !canStartAtom(p.cur.kind) || p.cur.kind == tokMinus {
			return nil, &types.QueryParseError{Kind: types.ParseErrFieldWithoutAtom, Position: p.cur.pos}
		}
		inner, err := p.parseGroupOrAtom()
		if err != nil {
			return nil, err
		}
		return p.parseBoostSuffix(&Field{Name: name, Inner: inner})
	}
	atom, err := p.parseGroupOrAtom()
	if err != nil {
		return nil, err
	}
	return p.parseBoostSuffix(atom)
}

func (p *parser) parseGroupOrAtom() (Node, error) {
	switch p.cur.kind {
	case tokLParen:
		openPos := p.cur.pos
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, &types.QueryParseError{Kind: types.ParseErrUnclosedParen, Position: openPos}
		}
		p.advance()
		return inner, nil
	case tokWord:
		t := &Term{Text: p.cur.text}
		p.advance()
		return t, nil
	case tokPhrase:
		if p.cur.unterminated {
			return nil, &types.QueryParseError{Kind: types.ParseErrUnclosedQuote, Position: p.cur.pos}
		}
		tokens := strings.Fields(p.cur.text)
		p.advance()
		return &Phrase{Tokens: tokens}, nil
	default:
		return nil, unexpectedToken(p.cur)
	}
}

func (p *parser) parseBoostSuffix(n Node) (Node, error) {
	if p.cur.kind != tokCaret {
		return n, nil
	}
	p.advance()
	if p.cur.kind != tokWord {
		return nil, &types.QueryParseError{Kind: types.ParseErrInvalidBoost, Position: p.cur.pos}
	}
	factor, ok := parseBoostFactor(p.cur.text)
	if !ok {
		return nil, &types.QueryParseError{Kind: types.ParseErrInvalidBoost, Position: p.cur.pos, Detail: p.cur.text}
	}
	p.advance()
	return &Boost{Inner: n, Factor: factor}, nil
}

func unexpectedToken(t token) error {
	switch t.kind {
	case tokCaret:
		return &types.QueryParseError{Kind: types.ParseErrBoostWithoutExpr, Position: t.pos}
	case tokOr:
		return &types.QueryParseError{Kind: types.ParseErrOrWithoutLeft, Position: t.pos}
	case tokRParen:
		return &types.QueryParseError{Kind: types.ParseErrUnclosedParen, Position: t.pos}
	default:
		return &types.QueryParseError{Kind: types.ParseErrFieldWithoutAtom, Position: t.pos, Detail: t.text}
	}
}

// hasPositive reports whether node contributes at least one non-negated
// match, used to reject a query that is entirely negation.
func hasPositive(n Node) bool {
	switch v := n.(type) {
	case *Term, *Phrase:
		return true
	case *Not:
		return false
	case *Field:
		return hasPositive(v.Inner)
	case *Boost:
		return hasPositive(v.Inner)
	case *And:
		for _, c := range v.Clauses {
			if hasPositive(c) {
				return true
			}
		}
		return false
	case *Or:
		for _, c := range v.Clauses {
			if hasPositive(c) {
				return true
			}
		}
		return false
	}
	return false
}

// JoinArgs wraps each raw argument in parentheses and OR-joins them, the
// command-line multi-argument convention. A single argument passes through
// unchanged.
func JoinArgs(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	wrapped := make([]string, len(args))
	for i, a := range args {
		wrapped[i] = "(" + a + ")"
	}
	return strings.Join(wrapped, " OR ")
}
