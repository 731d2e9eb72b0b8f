package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/parser"
	"github.com/Conceptual-Machines/grammar-school-go/tokenizer"
)

// ParseCmd runs a script through tokenize, parse and extract, then dumps
// the call chains. It shows exactly what an engine would hand to the
// resolver for a given grammar, which makes it the fastest way to debug
// grammar changes against real LLM output.
type ParseCmd struct {
	Script  string `arg:"" optional:"" help:"Script file (default: stdin, '-' for stdin)"`
	Grammar string `short:"g" help:"Grammar file (default: built-in grammar)"`
	JSON    bool   `help:"Dump call chains as JSON"`
	Tokens  bool   `help:"Also dump the token stream"`
}

func (p *ParseCmd) Run(ctx *Context) error {
	def, err := loadGrammar(p.Grammar)
	if err != nil {
		return err
	}
	src, name, err := readInput(p.Script)
	if err != nil {
		return err
	}

	set, err := def.TerminalSet()
	if err != nil {
		return err
	}

	ctx.Logger().Debug("tokenizing", "source", name)
	tokens, err := tokenizer.New(src, set).All()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if p.Tokens {
		for _, tok := range tokens {
			fmt.Println(tok)
		}
	}

	tree, err := parser.Parse(tokens, def)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if ctx.Verbose {
		fmt.Fprint(os.Stderr, tree)
	}

	chains, err := parser.Extract(tree)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	ctx.Logger().Debug("extracted", "chains", len(chains))

	if p.JSON {
		return dumpJSON(os.Stdout, chains)
	}
	dumpChains(os.Stdout, chains)
	return nil
}

// dumpChains renders the chains one call per line, in DSL form with
// source positions.
func dumpChains(w io.Writer, chains []*grammarschool.CallChain) {
	for i, chain := range chains {
		fmt.Fprintf(w, "chain %d\n", i+1)
		for j, call := range chain.Calls {
			dot := ""
			if j > 0 {
				dot = "."
			}
			fmt.Fprintf(w, "  %s%s  line %d, column %d\n", dot, call, call.Pos.Line, call.Pos.Column)
		}
	}
}

type chainJSON struct {
	Calls []callJSON `json:"calls"`
}

type callJSON struct {
	Name   string    `json:"name"`
	Line   int       `json:"line"`
	Column int       `json:"column"`
	Args   []argJSON `json:"args,omitempty"`
}

type argJSON struct {
	Name  string `json:"name,omitempty"`
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

func dumpJSON(w io.Writer, chains []*grammarschool.CallChain) error {
	out := make([]chainJSON, len(chains))
	for i, chain := range chains {
		out[i].Calls = make([]callJSON, len(chain.Calls))
		for j, call := range chain.Calls {
			out[i].Calls[j] = callDTO(call)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func callDTO(call *grammarschool.Call) callJSON {
	out := callJSON{Name: call.Name, Line: call.Pos.Line, Column: call.Pos.Column}
	for _, arg := range call.Args {
		a := argJSON{Name: arg.Name, Kind: arg.Value.Kind.String()}
		if arg.Value.Kind == grammarschool.ValueCall {
			a.Value = callDTO(arg.Value.Call)
		} else {
			a.Value = arg.Value.Native()
		}
		out.Args = append(out.Args, a)
	}
	return out
}
