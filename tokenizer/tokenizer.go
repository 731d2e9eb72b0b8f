// Package tokenizer splits DSL source into the terminals of a compiled
// grammar. It has no fixed token set of its own: the grammar's terminal set
// decides what a token is, which is what lets one engine serve many DSLs.
package tokenizer

import (
	"iter"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/grammar"
)

// Tokenizer scans one source string against a terminal set. At every offset
// each terminal is tried and the longest match wins; on a tie the terminal
// declared first in the grammar wins, so keyword-like terminals beat
// catch-all identifier patterns only when declared above them.
type Tokenizer struct {
	src  string
	set  *grammar.TerminalSet
	pos  int
	line int
	col  int
}

// New returns a tokenizer over src. The terminal set comes from
// (*grammar.Definition).TerminalSet.
func New(src string, set *grammar.TerminalSet) *Tokenizer {
	return &Tokenizer{src: src, set: set, line: 1, col: 1}
}

// Tokens yields the tokens of the source in order, consuming ignored
// terminals silently and ending with the EOFTerminal token. Iteration stops
// at the first lexical error.
func (t *Tokenizer) Tokens() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for t.pos < len(t.src) {
			term, text, ok := t.set.Match(t.src[t.pos:])
			if !ok {
				yield(Token{}, &Error{Pos: t.position(), Excerpt: excerpt(t.src[t.pos:])})
				return
			}
			tok := Token{Terminal: term.Name, Value: text, Pos: t.position()}
			t.advance(text)
			if term.Ignore {
				continue
			}
			if !yield(tok, nil) {
				return
			}
		}
		yield(Token{Terminal: EOFTerminal, Pos: t.position()}, nil)
	}
}

// All collects every token eagerly, including the trailing end-of-input
// token. On a lexical error the tokens scanned so far are returned along
// with it.
func (t *Tokenizer) All() ([]Token, error) {
	var tokens []Token
	for tok, err := range t.Tokens() {
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func (t *Tokenizer) advance(text string) {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			t.line++
			t.col = 1
		} else {
			t.col++
		}
	}
	t.pos += len(text)
}

func (t *Tokenizer) position() grammarschool.Position {
	return grammarschool.Position{Line: t.line, Column: t.col, Offset: t.pos}
}

// excerpt trims the remaining input to one short line for error messages.
func excerpt(rest string) string {
	const max = 20
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\n' {
			rest = rest[:i]
			break
		}
	}
	if len(rest) > max {
		rest = rest[:max] + "..."
	}
	return rest
}
