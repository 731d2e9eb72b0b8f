package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/grammar"
	"github.com/Conceptual-Machines/grammar-school-go/parser"
	"github.com/Conceptual-Machines/grammar-school-go/scriptmd"
	"github.com/Conceptual-Machines/grammar-school-go/tokenizer"
)

// ErrCasesFailed is returned when any markdown case fails.
var ErrCasesFailed = errors.New("cases failed")

// TestCmd replays markdown script cases through tokenize, parse and
// extract. Cases whose expectations need a method registry — result
// values, resolution or execution errors — are reported as skipped: the
// CLI has grammars but no host methods to bind against.
type TestCmd struct {
	Files []string `arg:"" help:"Markdown case files" type:"existingfile"`
}

type caseStatus int

const (
	casePassed caseStatus = iota
	caseFailed
	caseSkipped
)

// parseStageKinds are the error kinds reproducible without a registry.
var parseStageKinds = map[string]bool{
	"GrammarError": true,
	"ParseError":   true,
	"ExtractError": true,
}

func (t *TestCmd) Run(ctx *Context) error {
	var passed, failed, skipped int

	for _, file := range t.Files {
		cases, err := scriptmd.Load(file)
		if err != nil {
			return err
		}
		ctx.Logger().Debug("loaded cases", "file", file, "count", len(cases))

		for _, c := range cases {
			label := fmt.Sprintf("%s: %s", file, c.Name)

			status, detail := runCase(c)
			switch status {
			case casePassed:
				passed++
				if !ctx.Quiet {
					color.Green("PASS %s", label)
				}
			case caseSkipped:
				skipped++
				if !ctx.Quiet {
					color.Yellow("SKIP %s (%s)", label, detail)
				}
			case caseFailed:
				failed++
				color.Red("FAIL %s: %s", label, detail)
			}
		}
	}

	if !ctx.Quiet {
		fmt.Printf("\n%d passed, %d failed, %d skipped\n", passed, failed, skipped)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d case(s)", ErrCasesFailed, failed)
	}
	return nil
}

func runCase(c scriptmd.Case) (caseStatus, string) {
	wantKind, _, _ := strings.Cut(c.WantErr, " ")
	if c.WantErr != "" && !parseStageKinds[wantKind] {
		return caseSkipped, "needs a method registry"
	}
	if c.WantErr == "" && c.WantResult != "" {
		return caseSkipped, "needs a method registry"
	}

	_, err := parseCase(c)
	if c.WantErr != "" {
		if scriptmd.MatchError(c.WantErr, err) {
			return casePassed, ""
		}
		return caseFailed, fmt.Sprintf("want %q, got %v", c.WantErr, err)
	}
	if err != nil {
		return caseFailed, err.Error()
	}
	return casePassed, ""
}

// parseCase runs one case as far as extraction. Lexical failures surface
// as parse errors, the same taxonomy gs.Execute reports.
func parseCase(c scriptmd.Case) ([]*grammarschool.CallChain, error) {
	def := grammar.Default()
	if c.Grammar != "" {
		var err error
		def, err = grammar.Parse(c.Grammar)
		if err != nil {
			return nil, err
		}
	}

	set, err := def.TerminalSet()
	if err != nil {
		return nil, err
	}
	tokens, err := tokenizer.New(c.Script, set).All()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", parser.ErrParse, err)
	}
	tree, err := parser.Parse(tokens, def)
	if err != nil {
		return nil, err
	}
	return parser.Extract(tree)
}
