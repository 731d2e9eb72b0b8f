package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// ExportCmd emits grammar text for LLM prompts. The default output is
// the constraint form with directives and ignore lines stripped, which
// is what grammar-constrained sampling expects. --full keeps the
// engine-facing source instead.
type ExportCmd struct {
	Input  string `arg:"" optional:"" help:"Grammar file (default: built-in grammar)"`
	Full   bool   `help:"Export the full source instead of the constraint form"`
	Output string `short:"o" help:"Output file (default: stdout)"`
}

func (e *ExportCmd) Run(ctx *Context) error {
	def, err := loadGrammar(e.Input)
	if err != nil {
		return err
	}

	out := def.ConstraintSource()
	if e.Full {
		out = def.Source()
	}

	if e.Output == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(e.Output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.Output, err)
	}
	if !ctx.Quiet {
		color.Green("Exported grammar to %s", e.Output)
	}
	return nil
}
