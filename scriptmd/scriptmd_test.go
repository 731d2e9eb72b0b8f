package scriptmd

import (
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/interpreter"
	"github.com/Conceptual-Machines/grammar-school-go/parser"
	"github.com/Conceptual-Machines/grammar-school-go/resolver"
)

func TestParseCases(t *testing.T) {
	doc := `# Demo DSL

Shared grammar for the whole file.

~~~grammar
start: call
call: IDENTIFIER "(" ")"
IDENTIFIER: /[a-z_]+/
%import common.WS
%ignore WS
~~~

## first case

Prose around fences is ignored.

~~~script
play()
~~~

~~~result
ok
~~~

## second case

~~~lark
start: NUMBER
NUMBER: /\d+/
~~~

~~~dsl
42
~~~

~~~error
ParseError something
~~~
`
	cases, err := Parse([]byte(doc))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(cases))

	first := cases[0]
	assert.Equal(t, "first case", first.Name)
	assert.Contains(t, first.Grammar, `call: IDENTIFIER "(" ")"`)
	assert.Equal(t, "play()", first.Script)
	assert.Equal(t, "ok", first.WantResult)
	assert.Equal(t, "", first.WantErr)

	second := cases[1]
	assert.Equal(t, "second case", second.Name)
	assert.Contains(t, second.Grammar, "start: NUMBER")
	assert.NotContains(t, second.Grammar, "IDENTIFIER")
	assert.Equal(t, "42", second.Script)
	assert.Equal(t, "ParseError something", second.WantErr)
}

func TestParseWithoutSharedGrammar(t *testing.T) {
	doc := `## default grammar case

~~~script
track(name="A")
~~~
`
	cases, err := Parse([]byte(doc))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(cases))
	assert.Equal(t, "", cases[0].Grammar)
}

func TestParseMissingScript(t *testing.T) {
	doc := `## broken

~~~result
ok
~~~
`
	_, err := Parse([]byte(doc))
	assert.IsError(t, err, ErrInvalidCase)
	assert.Contains(t, err.Error(), "broken")
}

func TestParseDuplicateFence(t *testing.T) {
	doc := `## doubled

~~~script
a()
~~~

~~~script
b()
~~~
`
	_, err := Parse([]byte(doc))
	assert.IsError(t, err, ErrInvalidCase)
	assert.Contains(t, err.Error(), "more than one script fence")
}

func TestParseIgnoresOtherFences(t *testing.T) {
	doc := `## documented

~~~go
fmt.Println("this is host code, not a script")
~~~

~~~script
run()
~~~
`
	cases, err := Parse([]byte(doc))
	assert.NoError(t, err)
	assert.Equal(t, "run()", cases[0].Script)
}

func TestParseNoCases(t *testing.T) {
	cases, err := Parse([]byte("# Just a readme\n\nNothing to run here.\n"))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(cases))
}

func TestLoad(t *testing.T) {
	cases, err := Load("testdata/cases.md")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(cases))
	assert.Equal(t, "shared grammar case", cases[0].Name)
	assert.Contains(t, cases[0].Grammar, "start: call")
	assert.Equal(t, "play", cases[0].Script)

	_, err = Load("testdata/absent.md")
	assert.Error(t, err)
}

func TestMatchError(t *testing.T) {
	parseErr := fmt.Errorf("%w: unexpected things", parser.ErrParse)
	unknownErr := &resolver.UnknownMethodError{Name: "trak", Similar: "track"}
	arityErr := &resolver.ArityError{Method: "track", Want: "1 argument", Got: 3}
	execErr := &interpreter.ExecutionError{
		Method: "record",
		Pos:    grammarschool.Position{Line: 1, Column: 1},
		Err:    fmt.Errorf("no input connected"),
	}

	tests := []struct {
		name string
		want string
		err  error
		ok   bool
	}{
		{name: "kind alone", want: "ParseError", err: parseErr, ok: true},
		{name: "kind with substring", want: "UnknownMethodError trak", err: unknownErr, ok: true},
		{name: "substring mismatch", want: "UnknownMethodError flute", err: unknownErr, ok: false},
		{name: "wrong kind", want: "TypeMismatchError", err: unknownErr, ok: false},
		{name: "type probe", want: "ArityError takes 1 argument", err: arityErr, ok: true},
		{name: "argument kind does not leak", want: "ArgumentError", err: arityErr, ok: false},
		{name: "execution", want: "ExecutionError no input", err: execErr, ok: true},
		{name: "unknown kind name", want: "MadeUpError", err: parseErr, ok: false},
		{name: "nil error", want: "ParseError", err: nil, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, MatchError(tt.want, tt.err))
		})
	}
}
