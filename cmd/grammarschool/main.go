package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Conceptual-Machines/grammar-school-go/cli"
)

// CLI is the command tree.
var CLI struct {
	Verbose bool `help:"Enable verbose output" short:"v"`
	Quiet   bool `help:"Suppress output" short:"q"`
	NoColor bool `help:"Disable colored output"`

	Validate cli.ValidateCmd `cmd:"" help:"Validate grammar files"`
	Fmt      cli.FmtCmd      `cmd:"" help:"Print the canonical form of a grammar"`
	Export   cli.ExportCmd   `cmd:"" help:"Export grammar text for LLM prompts"`
	Parse    cli.ParseCmd    `cmd:"" help:"Parse a script and dump its call chains"`
	Test     cli.TestCmd     `cmd:"" help:"Run markdown script cases"`
	Version  VersionCmd      `cmd:"" help:"Show version information"`
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Println("grammarschool v0.1.0")
	return nil
}

func main() {
	if err := cli.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx := kong.Parse(&CLI)
	appCtx := cli.NewContext(CLI.Verbose, CLI.Quiet, CLI.NoColor)

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
