// Package cli implements the grammarschool command line: grammar
// validation, canonical formatting, constraint export, parse inspection
// and markdown case running. Commands follow the kong convention of a
// struct per command with a Run method taking the shared Context.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// Context carries the global flags into every command.
type Context struct {
	Verbose bool
	Quiet   bool
	NoColor bool

	logger *slog.Logger
}

// NewContext prepares a command context from the global flags.
func NewContext(verbose, quiet, noColor bool) *Context {
	if noColor {
		color.NoColor = true
	}

	out := io.Discard
	level := slog.LevelInfo
	if verbose {
		out = os.Stderr
		level = slog.LevelDebug
	}

	return &Context{
		Verbose: verbose,
		Quiet:   quiet,
		NoColor: noColor,
		logger:  slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})),
	}
}

// Logger returns the logger behind --verbose. Without the flag every
// record is discarded.
func (c *Context) Logger() *slog.Logger { return c.logger }

// LoadDotEnv loads a .env file from the current directory if one exists.
// Grammar configs expand ${VAR} references, so .env variables must be in
// the environment before any command touches a config file.
func LoadDotEnv() error {
	if !fileExists(".env") {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}
