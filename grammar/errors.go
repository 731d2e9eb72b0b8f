package grammar

import (
	"errors"
	"fmt"
	"strings"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// Sentinel errors for grammar parsing and validation.
var (
	// ErrInvalidGrammar is the umbrella sentinel for every grammar that
	// cannot be turned into a usable definition, whether the text is
	// malformed or the structure is unsound.
	ErrInvalidGrammar = errors.New("invalid grammar")
)

// SyntaxError reports malformed grammar text: an unterminated literal, a
// definition without a colon, a stray token in a body.
type SyntaxError struct {
	Pos     grammarschool.Position
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("grammar syntax error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func (e *SyntaxError) Unwrap() error { return ErrInvalidGrammar }

// Finding is one structural problem found while validating a grammar.
type Finding struct {
	Pos     grammarschool.Position
	Message string
}

func (f Finding) String() string {
	if f.Pos.IsZero() {
		return f.Message
	}
	return fmt.Sprintf("%s at line %d, column %d", f.Message, f.Pos.Line, f.Pos.Column)
}

// ValidationError reports every structural problem in a grammar at once:
// missing start rule, undefined references, duplicate definitions, broken
// terminal patterns, left recursion.
type ValidationError struct {
	Findings []Finding
}

func (e *ValidationError) Error() string {
	if len(e.Findings) == 1 {
		return "grammar validation failed: " + e.Findings[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "grammar validation failed with %d problems:", len(e.Findings))
	for _, f := range e.Findings {
		sb.WriteString("\n  - ")
		sb.WriteString(f.String())
	}
	return sb.String()
}

func (e *ValidationError) Unwrap() error { return ErrInvalidGrammar }

// findings accumulates validation problems so a grammar author sees all of
// them in one pass instead of fixing them one at a time.
type findings struct {
	list []Finding
}

func (f *findings) add(pos grammarschool.Position, format string, args ...any) {
	f.list = append(f.list, Finding{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (f *findings) err() error {
	if len(f.list) == 0 {
		return nil
	}
	return &ValidationError{Findings: f.list}
}
