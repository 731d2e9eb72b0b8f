package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/testhelper"
)

func TestParseDefaultGrammar(t *testing.T) {
	def, err := Parse(grammarschool.DefaultGrammarSource)
	assert.NoError(t, err)

	assert.Equal(t, 8, len(def.Rules()))
	assert.NotZero(t, def.Start())
	assert.Equal(t, ExprPlus, def.Start().Expr.Kind)
	assert.Equal(t, "Default call-chain grammar.", def.Start().Description)

	// 7 declared terminals plus WS from %import common.WS.
	assert.Equal(t, 8, len(def.Terminals()))
	assert.NotZero(t, def.Terminal("WS"))
	assert.Equal(t, []string{"WS"}, def.Ignored())

	boolean := def.Terminal("BOOLEAN")
	assert.NotZero(t, boolean)
	assert.Equal(t, ExprAlt, boolean.Expr.Kind)
	assert.Equal(t, 2, len(boolean.Expr.Subs))
}

func TestDefaultGrammarRoundTrip(t *testing.T) {
	def, err := Parse(grammarschool.DefaultGrammarSource)
	assert.NoError(t, err)
	assert.Equal(t, grammarschool.DefaultGrammarSource, def.Source())
}

func TestDefaultIsShared(t *testing.T) {
	assert.True(t, Default() == Default())
}

func TestParseContinuationLines(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		start: value
		value: NUMBER
		     | STRING
		     | IDENTIFIER
		NUMBER: /\d+/
		STRING: /"[^"]*"/
		IDENTIFIER: /[a-z]+/
	`)
	def, err := Parse(src)
	assert.NoError(t, err)

	value := def.Rule("value")
	assert.NotZero(t, value)
	assert.Equal(t, ExprAlt, value.Expr.Kind)
	assert.Equal(t, 3, len(value.Expr.Subs))
}

func TestParseDescriptions(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		// A stray header comment.

		// Entry point.
		// Runs every statement.
		start: WORD

		WORD: /[a-z]+/
	`)
	def, err := Parse(src)
	assert.NoError(t, err)

	// The blank line detaches the header comment from start.
	assert.Equal(t, "Entry point.\nRuns every statement.", def.Start().Description)
	assert.Equal(t, "", def.Terminal("WORD").Description)
}

func TestParseTrailingComment(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		start: WORD // words only
		WORD: /[a-z]+/ // lower case
	`)
	def, err := Parse(src)
	assert.NoError(t, err)
	assert.Equal(t, ExprRef, def.Start().Expr.Kind)
	assert.Equal(t, "WORD", def.Start().Expr.Name)
}

func TestParseQuantifiersAndGroups(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		start: item ("," item)* tail?
		item: WORD+
		tail: ";"
		WORD: /[a-z]+/
	`)
	def, err := Parse(src)
	assert.NoError(t, err)

	start := def.Start().Expr
	assert.Equal(t, ExprSeq, start.Kind)
	assert.Equal(t, 3, len(start.Subs))
	assert.Equal(t, ExprStar, start.Subs[1].Kind)
	assert.Equal(t, ExprSeq, start.Subs[1].Subs[0].Kind)
	assert.Equal(t, ExprOpt, start.Subs[2].Kind)
	assert.Equal(t, ExprPlus, def.Rule("item").Expr.Kind)
}

func TestParseEscapedLiterals(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		start: QUOTED
		QUOTED: "say \"hi\"" | 'don\'t'
	`)
	def, err := Parse(src)
	assert.NoError(t, err)

	quoted := def.Terminal("QUOTED")
	assert.Equal(t, ExprAlt, quoted.Expr.Kind)
	assert.Equal(t, `say "hi"`, quoted.Expr.Subs[0].Text)
	assert.Equal(t, "don't", quoted.Expr.Subs[1].Text)
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name:    "missing colon",
			src:     "start WORD\nWORD: /[a-z]+/\n",
			wantMsg: "missing ':'",
		},
		{
			name:    "mixed case name",
			src:     "Start: WORD\nWORD: /[a-z]+/\n",
			wantMsg: "invalid definition name",
		},
		{
			name:    "unterminated string",
			src:     "start: \"oops\n",
			wantMsg: "unterminated string literal",
		},
		{
			name:    "unterminated regex",
			src:     "start: WORD\nWORD: /[a-z]+\n",
			wantMsg: "unterminated regex",
		},
		{
			name:    "continuation without definition",
			src:     "| WORD\n",
			wantMsg: "without a definition",
		},
		{
			name:    "unclosed group",
			src:     "start: (WORD\nWORD: /[a-z]+/\n",
			wantMsg: "malformed expression",
		},
		{
			name:    "stray close paren",
			src:     "start: WORD)\nWORD: /[a-z]+/\n",
			wantMsg: `unexpected ")"`,
		},
		{
			name:    "empty body",
			src:     "start:\nWORD: /[a-z]+/\n",
			wantMsg: "empty definition body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			assert.Error(t, err)
			assert.IsError(t, err, ErrInvalidGrammar)
			assert.True(t, strings.Contains(err.Error(), tt.wantMsg))
		})
	}
}

func TestParseSyntaxErrorPosition(t *testing.T) {
	src := "start: WORD\nWORD: \"oops\n"
	_, err := Parse(src)

	var syntaxErr *SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 2, syntaxErr.Pos.Line)
	assert.Equal(t, 7, syntaxErr.Pos.Column)
}

func TestConstraintSourceStripsDirectives(t *testing.T) {
	def, err := Parse(grammarschool.DefaultGrammarSource)
	assert.NoError(t, err)

	constraint := def.ConstraintSource()
	assert.False(t, strings.Contains(constraint, "%import"))
	assert.False(t, strings.Contains(constraint, "%ignore"))
	assert.True(t, strings.Contains(constraint, "start: statement+"))

	// The directive-free text must itself be a loadable grammar apart
	// from the WS terminal the directives provided.
	assert.True(t, strings.HasSuffix(constraint, "\n"))
}
