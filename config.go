package grammarschool

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// GrammarConfig is a grammar definition loaded from a YAML config file.
// It is an alternative front door to writing grammar source by hand:
// grammar.FromConfig turns it into a definition through the grammar
// builder, and Source renders it back as grammar text.
type GrammarConfig struct {
	// Start names the entry rule. Empty means "start".
	Start string `yaml:"start"`
	// UseDefault prepends the built-in default grammar; rules and
	// terminals listed here extend it.
	UseDefault bool             `yaml:"use_default"`
	Rules      []RuleConfig     `yaml:"rules"`
	Terminals  []TerminalConfig `yaml:"terminals"`
	Directives []string         `yaml:"directives"`
}

// RuleConfig is one grammar rule in a config file. Definition holds the
// rule body in grammar meta syntax, e.g. `call (DOT call)*`.
type RuleConfig struct {
	Name        string `yaml:"name"`
	Definition  string `yaml:"definition"`
	Description string `yaml:"description"`
}

// TerminalConfig is one terminal in a config file. Pattern is either a
// slash-delimited regular expression (/-?\d+/) or bare literal text (".").
type TerminalConfig struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
}

// LoadGrammarConfig reads a YAML grammar config from path. Environment
// variables in rule definitions and terminal patterns are expanded in the
// ${VAR} and $VAR forms.
func LoadGrammarConfig(path string) (*GrammarConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrGrammarConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read grammar config %s: %w", path, err)
	}
	return ParseGrammarConfig(data)
}

// ParseGrammarConfig parses YAML grammar config bytes.
func ParseGrammarConfig(data []byte) (*GrammarConfig, error) {
	var config GrammarConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse grammar config: %w", err)
	}

	expandConfigEnvVars(&config)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *GrammarConfig) validate() error {
	if len(c.Rules) == 0 && !c.UseDefault {
		return ErrEmptyGrammarConfig
	}
	for i, r := range c.Rules {
		if r.Name == "" {
			return fmt.Errorf("%w: rules[%d] has no name", ErrInvalidGrammarConfig, i)
		}
		if r.Definition == "" {
			return fmt.Errorf("%w: rule %q has no definition", ErrInvalidGrammarConfig, r.Name)
		}
	}
	for i, t := range c.Terminals {
		if t.Name == "" {
			return fmt.Errorf("%w: terminals[%d] has no name", ErrInvalidGrammarConfig, i)
		}
		if t.Pattern == "" {
			return fmt.Errorf("%w: terminal %q has no pattern", ErrInvalidGrammarConfig, t.Name)
		}
	}
	return nil
}

// Source renders the config as grammar source text. Descriptions become
// comment lines above their definitions so they survive a round trip
// through the grammar parser. Rendering is plain concatenation: a
// use_default config that overrides built-in names only parses through
// grammar.FromConfig, which applies replace semantics.
func (c *GrammarConfig) Source() string {
	var sb strings.Builder

	if c.UseDefault {
		sb.WriteString(DefaultGrammarSource)
		if len(c.Rules) > 0 || len(c.Terminals) > 0 || len(c.Directives) > 0 {
			sb.WriteString("\n")
		}
	}
	if c.Start != "" && c.Start != "start" {
		sb.WriteString("start: " + c.Start + "\n\n")
	}

	for _, r := range c.Rules {
		if r.Description != "" {
			sb.WriteString("// " + r.Description + "\n")
		}
		sb.WriteString(r.Name + ": " + r.Definition + "\n")
	}
	if len(c.Rules) > 0 && len(c.Terminals) > 0 {
		sb.WriteString("\n")
	}
	for _, t := range c.Terminals {
		if t.Description != "" {
			sb.WriteString("// " + t.Description + "\n")
		}
		sb.WriteString(t.Name + ": " + formatTerminalPattern(t.Pattern) + "\n")
	}
	if len(c.Directives) > 0 {
		sb.WriteString("\n")
	}
	for _, d := range c.Directives {
		sb.WriteString(d + "\n")
	}
	return sb.String()
}

// formatTerminalPattern keeps slash-delimited regexes as-is and quotes
// everything else as a literal.
func formatTerminalPattern(pattern string) string {
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		return pattern
	}
	return strconv.Quote(pattern)
}

var (
	envBraceRe = regexp.MustCompile(`\$\{([^}]+)\}`)
	envPlainRe = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = envBraceRe.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
	s = envPlainRe.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
	return s
}

// expandConfigEnvVars expands environment variables in definition bodies
// and terminal patterns.
func expandConfigEnvVars(config *GrammarConfig) {
	for i, r := range config.Rules {
		config.Rules[i].Definition = expandEnvVars(r.Definition)
	}
	for i, t := range config.Terminals {
		config.Terminals[i].Pattern = expandEnvVars(t.Pattern)
	}
}
