package grammarschool

import "errors"

// Common errors shared across the grammarschool packages
var (
	// ErrGrammarConfigNotFound is returned when a grammar config file does not exist.
	ErrGrammarConfigNotFound = errors.New("grammar config file not found")
	// ErrInvalidGrammarConfig indicates a grammar config that parsed as YAML but fails structural checks.
	ErrInvalidGrammarConfig = errors.New("invalid grammar config")
	// ErrEmptyGrammarConfig is returned when a grammar config defines no rules and does not use the default grammar.
	ErrEmptyGrammarConfig = errors.New("grammar config defines no rules")
)
