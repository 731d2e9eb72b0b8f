package tokenizer

import (
	"errors"
	"fmt"
	"strconv"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// EOFTerminal is the synthetic terminal name of the end-of-input token the
// tokenizer appends after the last real token.
const EOFTerminal = "$END"

// Token is one lexeme of DSL source, tagged with the terminal that matched
// it. For literals synthesized from rule bodies the terminal name is the
// quoted literal text, e.g. `"("`.
type Token struct {
	Terminal string
	Value    string
	Pos      grammarschool.Position
}

// EOF reports whether this is the end-of-input token.
func (t Token) EOF() bool { return t.Terminal == EOFTerminal }

// String describes the token for error messages.
func (t Token) String() string {
	if t.EOF() {
		return "end of input"
	}
	if t.Terminal == strconv.Quote(t.Value) {
		return t.Terminal
	}
	return fmt.Sprintf("%s %q", t.Terminal, t.Value)
}

// Sentinel errors returned by the tokenizer.
var (
	// ErrUnexpectedCharacter is returned when no terminal of the grammar
	// matches the remaining input.
	ErrUnexpectedCharacter = errors.New("unexpected character")
)

// Error is a lexical failure with its source position and a short excerpt
// of the offending input.
type Error struct {
	Pos     grammarschool.Position
	Excerpt string
}

func (e *Error) Error() string {
	return fmt.Sprintf("unexpected character at line %d, column %d: %q", e.Pos.Line, e.Pos.Column, e.Excerpt)
}

func (e *Error) Unwrap() error { return ErrUnexpectedCharacter }
