package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/grammar"
)

// loadGrammar loads a grammar definition from path. YAML files go through
// the grammar config loader, everything else is parsed as grammar source.
// An empty path yields the built-in default grammar.
func loadGrammar(path string) (*grammar.Definition, error) {
	if path == "" {
		return grammar.Default(), nil
	}
	if isYAMLFile(path) {
		cfg, err := grammarschool.LoadGrammarConfig(path)
		if err != nil {
			return nil, err
		}
		return grammar.FromConfig(cfg)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar %s: %w", path, err)
	}
	def, err := grammar.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// readInput reads a script from path, or from stdin when path is empty
// or "-". The second return names the source for error messages.
func readInput(path string) (string, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), path, nil
}
