package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/Conceptual-Machines/grammar-school-go/grammar"
)

// ErrValidationFailed is returned when any grammar file fails validation.
var ErrValidationFailed = errors.New("validation failed")

// ValidateCmd checks grammar files for syntax and structural problems.
type ValidateCmd struct {
	Files []string `arg:"" help:"Grammar files (.lark source or .yaml config)" type:"existingfile"`
}

func (v *ValidateCmd) Run(ctx *Context) error {
	failed := 0
	for _, file := range v.Files {
		ctx.Logger().Debug("validating", "file", file)

		def, err := loadGrammar(file)
		if err != nil {
			failed++
			printGrammarError(file, err)
			continue
		}
		if !ctx.Quiet {
			color.Green("%s: ok (%d rules, %d terminals)", file, len(def.Rules()), len(def.Terminals()))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrValidationFailed, failed, len(v.Files))
	}
	return nil
}

// printGrammarError renders validation findings one per line so a
// grammar author sees every problem at once. Other errors print as-is.
func printGrammarError(file string, err error) {
	var validationErr *grammar.ValidationError
	if errors.As(err, &validationErr) {
		color.Red("%s: %d problem(s)", file, len(validationErr.Findings))
		for _, f := range validationErr.Findings {
			color.Yellow("  - %s", f)
		}
		return
	}
	color.Red("%s: %v", file, err)
}
