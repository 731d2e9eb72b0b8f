package grammar

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/Conceptual-Machines/grammar-school-go/testhelper"
)

func TestTerminalSetMatchDefault(t *testing.T) {
	set, err := Default().TerminalSet()
	assert.NoError(t, err)

	tests := []struct {
		name     string
		src      string
		wantTerm string
		wantText string
	}{
		{name: "identifier", src: `track("A")`, wantTerm: "IDENTIFIER", wantText: "track"},
		{name: "string", src: `"hello" rest`, wantTerm: "STRING", wantText: `"hello"`},
		{name: "single quoted string", src: `'hi' rest`, wantTerm: "STRING", wantText: `'hi'`},
		{name: "integer", src: "42,", wantTerm: "NUMBER", wantText: "42"},
		{name: "negative decimal", src: "-3.5)", wantTerm: "NUMBER", wantText: "-3.5"},
		{name: "dot", src: ".clip", wantTerm: "DOT", wantText: "."},
		{name: "at", src: "@handler", wantTerm: "AT", wantText: "@"},
		{name: "open paren", src: "(1)", wantTerm: `"("`, wantText: "("},
		{name: "boolean wins tie by declaration order", src: "true", wantTerm: "BOOLEAN", wantText: "true"},
		{name: "longer identifier beats boolean", src: "truest", wantTerm: "IDENTIFIER", wantText: "truest"},
		{name: "whitespace", src: "   x", wantTerm: "WS", wantText: "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, text, ok := set.Match(tt.src)
			assert.True(t, ok)
			assert.Equal(t, tt.wantTerm, term.Name)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestTerminalSetIgnoreFlag(t *testing.T) {
	set, err := Default().TerminalSet()
	assert.NoError(t, err)

	term, _, ok := set.Match("  track")
	assert.True(t, ok)
	assert.True(t, term.Ignore)

	term, _, ok = set.Match("track")
	assert.True(t, ok)
	assert.False(t, term.Ignore)
}

func TestTerminalSetNoMatch(t *testing.T) {
	set, err := Default().TerminalSet()
	assert.NoError(t, err)

	_, _, ok := set.Match("§nope")
	assert.False(t, ok)
}

func TestTerminalSetInlineLiterals(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		start: "track" "(" NAME ")"
		NAME: /[a-z]+/
	`)
	def, err := Parse(src)
	assert.NoError(t, err)

	set, err := def.TerminalSet()
	assert.NoError(t, err)

	// NAME first, then one synthesized terminal per distinct literal.
	names := make([]string, 0, len(set.Terminals()))
	for _, term := range set.Terminals() {
		names = append(names, term.Name)
	}
	assert.Equal(t, []string{"NAME", `"track"`, `"("`, `")"`}, names)

	// A keyword that also fits NAME goes to NAME: equal length, and the
	// declared terminal is tried first.
	term, text, ok := set.Match("track(")
	assert.True(t, ok)
	assert.Equal(t, "NAME", term.Name)
	assert.Equal(t, "track", text)
}

func TestTerminalSetDeclaredLiteralNotDuplicated(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		start: DOT NAME "."
		DOT: "."
		NAME: /[a-z]+/
	`)
	def, err := Parse(src)
	assert.NoError(t, err)

	set, err := def.TerminalSet()
	assert.NoError(t, err)

	dots := 0
	for _, term := range set.Terminals() {
		if term.Literal == "." {
			dots++
		}
	}
	assert.Equal(t, 1, dots)
}

func TestTerminalAlternationPrefersLongestLiteral(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		start: KW
		KW: "for" | "foreach"
	`)
	def, err := Parse(src)
	assert.NoError(t, err)

	set, err := def.TerminalSet()
	assert.NoError(t, err)

	_, text, ok := set.Match("foreach x")
	assert.True(t, ok)
	assert.Equal(t, "foreach", text)
}

func TestTerminalRepetition(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		start: SP
		SP: " "+
	`)
	def, err := Parse(src)
	assert.NoError(t, err)

	set, err := def.TerminalSet()
	assert.NoError(t, err)

	_, text, ok := set.Match("   x")
	assert.True(t, ok)
	assert.Equal(t, "   ", text)
}
