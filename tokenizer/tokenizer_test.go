package tokenizer

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/Conceptual-Machines/grammar-school-go/grammar"
	"github.com/Conceptual-Machines/grammar-school-go/testhelper"
)

func defaultSet(t *testing.T) *grammar.TerminalSet {
	t.Helper()
	set, err := grammar.Default().TerminalSet()
	assert.NoError(t, err)
	return set
}

func TestTokenizeCallChain(t *testing.T) {
	src := `track(name="Drums").add_clip(start=0)`
	tokens, err := New(src, defaultSet(t)).All()
	assert.NoError(t, err)

	type tok struct {
		terminal string
		value    string
	}
	var got []tok
	for _, tk := range tokens {
		got = append(got, tok{tk.Terminal, tk.Value})
	}
	want := []tok{
		{"IDENTIFIER", "track"},
		{`"("`, "("},
		{"IDENTIFIER", "name"},
		{`"="`, "="},
		{"STRING", `"Drums"`},
		{`")"`, ")"},
		{"DOT", "."},
		{"IDENTIFIER", "add_clip"},
		{`"("`, "("},
		{"IDENTIFIER", "start"},
		{`"="`, "="},
		{"NUMBER", "0"},
		{`")"`, ")"},
		{EOFTerminal, ""},
	}
	assert.Equal(t, want, got)
}

func TestTokenizeSkipsIgnoredTerminals(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		track("A")
		track("B")
	`)
	tokens, err := New(src, defaultSet(t)).All()
	assert.NoError(t, err)

	// No WS tokens: 4 per statement plus EOF.
	assert.Equal(t, 9, len(tokens))
	for _, tk := range tokens {
		assert.NotEqual(t, "WS", tk.Terminal)
	}
}

func TestTokenizePositions(t *testing.T) {
	src := "track(\n  42)"
	tokens, err := New(src, defaultSet(t)).All()
	assert.NoError(t, err)

	// track ( 42 ) $END
	assert.Equal(t, 5, len(tokens))

	assert.Equal(t, 1, tokens[0].Pos.Line)
	assert.Equal(t, 1, tokens[0].Pos.Column)
	assert.Equal(t, 0, tokens[0].Pos.Offset)

	num := tokens[2]
	assert.Equal(t, "NUMBER", num.Terminal)
	assert.Equal(t, 2, num.Pos.Line)
	assert.Equal(t, 3, num.Pos.Column)
	assert.Equal(t, 9, num.Pos.Offset)

	eof := tokens[4]
	assert.True(t, eof.EOF())
	assert.Equal(t, len(src), eof.Pos.Offset)
}

func TestTokenizeLongestMatch(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantTerm string
		wantVal  string
	}{
		{name: "boolean by declaration order", src: "true", wantTerm: "BOOLEAN", wantVal: "true"},
		{name: "identifier with boolean prefix", src: "truelove", wantTerm: "IDENTIFIER", wantVal: "truelove"},
		{name: "decimal number", src: "3.25", wantTerm: "NUMBER", wantVal: "3.25"},
		{name: "negative number", src: "-12", wantTerm: "NUMBER", wantVal: "-12"},
		{name: "single quoted string", src: "'it''s'", wantTerm: "STRING", wantVal: "'it'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := New(tt.src, defaultSet(t)).All()
			assert.NoError(t, err)
			assert.Equal(t, tt.wantTerm, tokens[0].Terminal)
			assert.Equal(t, tt.wantVal, tokens[0].Value)
		})
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	src := "track(№)"
	tokens, err := New(src, defaultSet(t)).All()
	assert.Error(t, err)
	assert.IsError(t, err, ErrUnexpectedCharacter)

	// Everything before the bad character was already scanned.
	assert.Equal(t, 2, len(tokens))

	var lexErr *Error
	assert.True(t, errors.As(err, &lexErr))
	assert.Equal(t, 1, lexErr.Pos.Line)
	assert.Equal(t, 7, lexErr.Pos.Column)
}

func TestTokenizeDotPrefixedLiteral(t *testing.T) {
	src := testhelper.TrimIndent(t, `
		start: clip chain*
		clip: "new_clip" "(" ")"
		chain: ".add_note" "(" NOTE ")"
		NOTE: /[A-G]\d/
	`)
	def, err := grammar.Parse(src)
	assert.NoError(t, err)
	set, err := def.TerminalSet()
	assert.NoError(t, err)

	tokens, err := New(`new_clip().add_note(C4)`, set).All()
	assert.NoError(t, err)

	// ".add_note" is one token: the synthesized literal terminal is
	// longer than any single-character match at that offset.
	assert.Equal(t, `".add_note"`, tokens[3].Terminal)
	assert.Equal(t, ".add_note", tokens[3].Value)
}

func TestTokenizeEmptyInput(t *testing.T) {
	tokens, err := New("", defaultSet(t)).All()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(tokens))
	assert.True(t, tokens[0].EOF())
}
