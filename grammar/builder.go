package grammar

import (
	"fmt"
	"slices"
	"strings"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// Builder assembles a definition programmatically. It is the code-first
// twin of Parse: rule bodies use the same meta syntax, and Build runs the
// same validation, so the two construction paths cannot drift apart.
//
// Adding a rule or terminal under an existing name replaces it, which is
// how Default-based builders override parts of the built-in grammar.
type Builder struct {
	useDefault bool
	entries    []builderEntry
	directives []string
}

type builderEntry struct {
	name     string
	terminal bool
	body     string
	desc     string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Default seeds the builder with the built-in call-chain grammar before any
// custom entries are applied.
func (b *Builder) Default() *Builder {
	b.useDefault = true
	return b
}

// Rule adds a rule. The body is grammar meta syntax, e.g.
// `call (DOT call)*`. Description lines become the rule's doc comment.
func (b *Builder) Rule(name, body string, description ...string) *Builder {
	b.add(builderEntry{name: name, body: body, desc: strings.Join(description, "\n")})
	return b
}

// Terminal adds a terminal. A slash-delimited pattern such as /-?\d+/ is a
// regex; any other pattern is matched as literal text.
func (b *Builder) Terminal(name, pattern string, description ...string) *Builder {
	b.add(builderEntry{name: name, terminal: true, body: pattern, desc: strings.Join(description, "\n")})
	return b
}

// Directive adds a %-directive line such as "%ignore WS".
func (b *Builder) Directive(text string) *Builder {
	b.directives = append(b.directives, strings.TrimSpace(text))
	return b
}

func (b *Builder) add(e builderEntry) {
	for i, existing := range b.entries {
		if existing.name == e.name {
			b.entries[i] = e
			return
		}
	}
	b.entries = append(b.entries, e)
}

// Build parses every entry body, resolves directives, and validates the
// result exactly like Parse does.
func (b *Builder) Build() (*Definition, error) {
	var defs []rawDef
	var directiveTexts []string

	if b.useDefault {
		base := Default()
		for _, r := range base.Rules() {
			defs = append(defs, rawDef{name: r.Name, expr: r.Expr, desc: r.Description, pos: r.Pos})
		}
		for _, t := range base.Terminals() {
			if t.imported {
				continue
			}
			defs = append(defs, rawDef{name: t.Name, terminal: true, expr: t.Expr, desc: t.Description, pos: t.Pos})
		}
		for _, dir := range base.Directives() {
			directiveTexts = append(directiveTexts, dir.Text)
		}
	}

	index := make(map[string]int, len(defs))
	for i, def := range defs {
		index[def.name] = i
	}

	for _, e := range b.entries {
		terminal, ok := classifyDefName(e.name)
		if !ok || terminal != e.terminal {
			kind, want := "rule", "lower_case"
			if e.terminal {
				kind, want = "terminal", "UPPER_CASE"
			}
			return nil, fmt.Errorf("%w: %s name %q must be %s", ErrInvalidGrammar, kind, e.name, want)
		}
		expr, err := e.parse()
		if err != nil {
			return nil, err
		}
		def := rawDef{name: e.name, terminal: e.terminal, expr: expr, desc: e.desc}
		if at, exists := index[e.name]; exists {
			defs[at] = def
		} else {
			index[e.name] = len(defs)
			defs = append(defs, def)
		}
	}

	for _, text := range b.directives {
		if text != "" && !slices.Contains(directiveTexts, text) {
			directiveTexts = append(directiveTexts, text)
		}
	}
	directives := make([]Directive, len(directiveTexts))
	for i, text := range directiveTexts {
		directives[i] = Directive{Text: text}
	}

	return finish(defs, directives)
}

func (e builderEntry) parse() (*Expr, error) {
	if e.terminal {
		if len(e.body) >= 2 && strings.HasPrefix(e.body, "/") && strings.HasSuffix(e.body, "/") {
			return &Expr{Kind: ExprRegex, Text: e.body[1 : len(e.body)-1]}, nil
		}
		return &Expr{Kind: ExprLit, Text: e.body}, nil
	}
	expr, err := parseBody(e.body, grammarschool.Position{Line: 1, Column: 1})
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", e.name, err)
	}
	return expr, nil
}

// FromConfig turns a loaded grammar config into a definition. Configs with
// use_default extend the built-in grammar; same-name rules and terminals
// replace the built-in ones.
func FromConfig(cfg *grammarschool.GrammarConfig) (*Definition, error) {
	b := NewBuilder()
	if cfg.UseDefault {
		b.Default()
	}
	if cfg.Start != "" && cfg.Start != StartRuleName {
		b.Rule(StartRuleName, cfg.Start)
	}
	for _, r := range cfg.Rules {
		b.Rule(r.Name, r.Definition, descLines(r.Description)...)
	}
	for _, t := range cfg.Terminals {
		b.Terminal(t.Name, t.Pattern, descLines(t.Description)...)
	}
	for _, d := range cfg.Directives {
		b.Directive(d)
	}
	return b.Build()
}

func descLines(desc string) []string {
	if desc == "" {
		return nil
	}
	return strings.Split(desc, "\n")
}
