package parser

import (
	"errors"
	"fmt"
	"strings"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// Sentinel errors for the parsing stage.
var (
	// ErrParse is wrapped by every parse failure.
	ErrParse = errors.New("parse error")
	// ErrExtract is wrapped when a parse tree contains a construct the
	// call-chain extractor cannot map. It is itself a parse error.
	ErrExtract = fmt.Errorf("%w: unsupported construct", ErrParse)
)

// ParseError reports the farthest point the parser reached before failing,
// with every terminal that could have continued the parse there. PEG
// parsing tries many alternatives; the farthest failure is the one the
// script author actually cares about.
type ParseError struct {
	Position grammarschool.Position
	Expected []string
	Got      string
}

func (e *ParseError) Error() string {
	expected := "nothing"
	switch len(e.Expected) {
	case 0:
	case 1:
		expected = e.Expected[0]
	case 2:
		expected = e.Expected[0] + " or " + e.Expected[1]
	default:
		expected = strings.Join(e.Expected[:len(e.Expected)-1], ", ") + " or " + e.Expected[len(e.Expected)-1]
	}
	return fmt.Sprintf("parse error at line %d, column %d: unexpected %s, expected %s",
		e.Position.Line, e.Position.Column, e.Got, expected)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ExtractError reports a parse-tree shape with no call-chain meaning, such
// as an argument value the extractor has no literal form for.
type ExtractError struct {
	Rule string
	Pos  grammarschool.Position
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("cannot extract an argument value from rule %s at line %d, column %d",
		e.Rule, e.Pos.Line, e.Pos.Column)
}

func (e *ExtractError) Unwrap() error { return ErrExtract }
