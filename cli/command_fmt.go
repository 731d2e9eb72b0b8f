package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/Conceptual-Machines/grammar-school-go/grammar"
)

// ErrWriteYAMLConfig is returned when -w targets a YAML config file.
var ErrWriteYAMLConfig = errors.New("cannot write grammar text over a YAML config")

// FmtCmd prints the canonical serialization of a grammar. YAML configs
// render as grammar source, so fmt doubles as a config-to-source
// converter.
type FmtCmd struct {
	Input string `arg:"" optional:"" help:"Grammar file (default: stdin)"`
	Write bool   `short:"w" help:"Write result back to the input file"`
}

func (f *FmtCmd) Run(ctx *Context) error {
	if f.Input == "" {
		src, name, err := readInput("")
		if err != nil {
			return err
		}
		def, err := grammar.Parse(src)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Print(def.Source())
		return nil
	}

	def, err := loadGrammar(f.Input)
	if err != nil {
		return err
	}
	out := def.Source()

	if !f.Write {
		fmt.Print(out)
		return nil
	}
	if isYAMLFile(f.Input) {
		return fmt.Errorf("%w: %s", ErrWriteYAMLConfig, f.Input)
	}
	if err := os.WriteFile(f.Input, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Input, err)
	}
	if ctx.Verbose {
		color.Green("Formatted: %s", f.Input)
	}
	return nil
}
