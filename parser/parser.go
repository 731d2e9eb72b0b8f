// Package parser matches token streams against a grammar definition and
// extracts call chains from the resulting parse trees.
//
// Parsing is PEG style: alternatives are tried in declaration order and the
// first match wins, quantifiers are greedy, and a rule that fails rewinds to
// where it started. The parse tree keeps a node per rule and a leaf per
// matched token; tokens consumed by ignored terminals never reach the
// parser at all.
package parser

import (
	"slices"
	"strconv"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/grammar"
	"github.com/Conceptual-Machines/grammar-school-go/tokenizer"
)

// Parse matches tokens against the definition's start rule. The token slice
// should end with the end-of-input token produced by tokenizer.All; one is
// appended when missing. The whole input must be consumed: a trailing token
// the start rule cannot absorb is a parse error, not a shorter tree.
func Parse(tokens []tokenizer.Token, def *grammar.Definition) (*Tree, error) {
	if n := len(tokens); n == 0 || !tokens[n-1].EOF() {
		end := grammarschool.Position{Line: 1, Column: 1}
		if n > 0 {
			last := tokens[n-1]
			end = last.Pos
			end.Column += len(last.Value)
			end.Offset += len(last.Value)
		}
		tokens = append(slices.Clone(tokens), tokenizer.Token{Terminal: tokenizer.EOFTerminal, Pos: end})
	}
	p := &parser{
		def:         def,
		tokens:      tokens,
		farExpected: map[string]struct{}{},
		active:      map[guardKey]struct{}{},
	}
	node, next, ok := p.rule(def.Start(), 0)
	if ok {
		if p.tokens[next].EOF() {
			return &Tree{Root: node}, nil
		}
		p.fail(next, "end of input")
	}
	return nil, p.parseError()
}

type parser struct {
	def    *grammar.Definition
	tokens []tokenizer.Token

	// Farthest failure, reported when the whole parse fails.
	farPos      int
	farExpected map[string]struct{}

	// Rules currently expanding, keyed by input position. A rule
	// re-entered at the same position is left recursion the validator
	// missed (through an ignored-terminal cycle) and fails instead of
	// looping forever.
	active map[guardKey]struct{}
}

type guardKey struct {
	rule string
	pos  int
}

func (p *parser) rule(r *grammar.Rule, pos int) (*Node, int, bool) {
	key := guardKey{rule: r.Name, pos: pos}
	if _, busy := p.active[key]; busy {
		return nil, pos, false
	}
	p.active[key] = struct{}{}
	children, next, ok := p.expr(r.Expr, pos)
	delete(p.active, key)
	if !ok {
		return nil, pos, false
	}
	return &Node{Rule: r.Name, Children: children}, next, true
}

func (p *parser) expr(e *grammar.Expr, pos int) ([]*Node, int, bool) {
	switch e.Kind {
	case grammar.ExprSeq:
		var nodes []*Node
		next := pos
		for _, sub := range e.Subs {
			matched, after, ok := p.expr(sub, next)
			if !ok {
				return nil, pos, false
			}
			nodes = append(nodes, matched...)
			next = after
		}
		return nodes, next, true
	case grammar.ExprAlt:
		for _, sub := range e.Subs {
			if nodes, next, ok := p.expr(sub, pos); ok {
				return nodes, next, true
			}
		}
		return nil, pos, false
	case grammar.ExprRef:
		return p.ref(e, pos)
	case grammar.ExprLit:
		return p.lit(e.Text, pos)
	case grammar.ExprOpt:
		if nodes, next, ok := p.expr(e.Subs[0], pos); ok {
			return nodes, next, true
		}
		return nil, pos, true
	case grammar.ExprStar:
		return p.repeat(e.Subs[0], pos, 0)
	case grammar.ExprPlus:
		return p.repeat(e.Subs[0], pos, 1)
	default:
		// ExprRegex cannot appear in rule bodies after validation.
		return nil, pos, false
	}
}

func (p *parser) repeat(sub *grammar.Expr, pos, min int) ([]*Node, int, bool) {
	var nodes []*Node
	next := pos
	count := 0
	for {
		matched, after, ok := p.expr(sub, next)
		if !ok || after == next {
			break
		}
		nodes = append(nodes, matched...)
		next = after
		count++
	}
	if count < min {
		return nil, pos, false
	}
	return nodes, next, true
}

func (p *parser) ref(e *grammar.Expr, pos int) ([]*Node, int, bool) {
	if r := p.def.Rule(e.Name); r != nil {
		node, next, ok := p.rule(r, pos)
		if !ok {
			return nil, pos, false
		}
		return []*Node{node}, next, true
	}
	if tok := &p.tokens[pos]; tok.Terminal == e.Name {
		return []*Node{{Token: tok}}, pos + 1, true
	}
	p.fail(pos, e.Name)
	return nil, pos, false
}

// lit matches a token by text rather than by terminal so that keyword
// literals like "true" work even when a broader terminal such as
// IDENTIFIER produced the token.
func (p *parser) lit(text string, pos int) ([]*Node, int, bool) {
	if tok := &p.tokens[pos]; !tok.EOF() && tok.Value == text {
		return []*Node{{Token: tok}}, pos + 1, true
	}
	p.fail(pos, strconv.Quote(text))
	return nil, pos, false
}

func (p *parser) fail(pos int, expected string) {
	if pos > p.farPos {
		p.farPos = pos
		clear(p.farExpected)
	}
	if pos == p.farPos {
		p.farExpected[expected] = struct{}{}
	}
}

func (p *parser) parseError() *ParseError {
	pos := min(p.farPos, len(p.tokens)-1)
	expected := make([]string, 0, len(p.farExpected))
	for name := range p.farExpected {
		expected = append(expected, name)
	}
	slices.Sort(expected)
	tok := p.tokens[pos]
	return &ParseError{Position: tok.Pos, Expected: expected, Got: tok.String()}
}
