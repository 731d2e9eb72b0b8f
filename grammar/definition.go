// Package grammar defines the meta syntax hosts use to describe their DSL:
// parsing grammar text, building grammars programmatically, validating the
// result, and compiling the terminal set the tokenizer runs on.
//
// A grammar is a list of rules (lowercase names) and terminals (UPPERCASE
// names). Rule bodies combine references, quoted literals, groups and the
// ?/*/+ quantifiers; terminal bodies combine literals and /regex/ fragments.
// Alternatives may continue on the next line when it starts with |, and //
// comments directly above a definition become its description.
package grammar

import (
	"strings"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// StartRuleName is the name of the entry rule every grammar must define.
const StartRuleName = "start"

// Rule is one named production of a grammar.
type Rule struct {
	Name        string
	Expr        *Expr
	Description string
	Pos         grammarschool.Position
}

// Terminal is one named token pattern of a grammar.
type Terminal struct {
	Name        string
	Expr        *Expr
	Description string
	Pos         grammarschool.Position

	// imported terminals come from %import directives and are not
	// rendered by Source; the directive itself already names them.
	imported bool
}

// Directive is a %-line such as "%import common.WS" or "%ignore WS".
type Directive struct {
	Text string
	Pos  grammarschool.Position
}

// Definition is a validated grammar. Instances come from Parse, from a
// Builder, or from FromConfig, and are read-only afterwards: the engine
// shares one definition between every Execute call.
type Definition struct {
	rules      []*Rule
	terminals  []*Terminal
	directives []Directive
	ignored    []string

	ruleIndex map[string]*Rule
	termIndex map[string]*Terminal
}

// Rules returns the rules in definition order.
func (d *Definition) Rules() []*Rule { return d.rules }

// Terminals returns the terminals in definition order, imported ones last.
func (d *Definition) Terminals() []*Terminal { return d.terminals }

// Directives returns the %-directives in source order.
func (d *Definition) Directives() []Directive { return d.directives }

// Ignored returns the terminal names the tokenizer drops, usually WS.
func (d *Definition) Ignored() []string { return d.ignored }

// Start returns the entry rule. Validation guarantees it exists.
func (d *Definition) Start() *Rule { return d.ruleIndex[StartRuleName] }

// Rule returns the rule with the given name, or nil.
func (d *Definition) Rule(name string) *Rule { return d.ruleIndex[name] }

// Terminal returns the terminal with the given name, or nil.
func (d *Definition) Terminal(name string) *Terminal { return d.termIndex[name] }

// Source renders the definition as canonical grammar text: rules first,
// then terminals, then directives, with descriptions as comment lines.
// Parsing the output yields an equivalent definition.
func (d *Definition) Source() string {
	return d.render(true)
}

// ConstraintSource renders the definition for external constrained-output
// engines: the same text as Source with every %-directive stripped, since
// those engines handle whitespace and imports themselves.
func (d *Definition) ConstraintSource() string {
	return d.render(false)
}

func (d *Definition) render(directives bool) string {
	var sections []string

	if len(d.rules) > 0 {
		var sb strings.Builder
		for _, r := range d.rules {
			writeDescription(&sb, r.Description)
			sb.WriteString(r.Name)
			sb.WriteString(": ")
			sb.WriteString(r.Expr.String())
			sb.WriteByte('\n')
		}
		sections = append(sections, strings.TrimRight(sb.String(), "\n"))
	}

	var tb strings.Builder
	for _, t := range d.terminals {
		if t.imported {
			continue
		}
		writeDescription(&tb, t.Description)
		tb.WriteString(t.Name)
		tb.WriteString(": ")
		tb.WriteString(t.Expr.String())
		tb.WriteByte('\n')
	}
	if tb.Len() > 0 {
		sections = append(sections, strings.TrimRight(tb.String(), "\n"))
	}

	if directives && len(d.directives) > 0 {
		var db strings.Builder
		for _, dir := range d.directives {
			db.WriteString(dir.Text)
			db.WriteByte('\n')
		}
		sections = append(sections, strings.TrimRight(db.String(), "\n"))
	}

	return strings.Join(sections, "\n\n") + "\n"
}

func writeDescription(sb *strings.Builder, desc string) {
	if desc == "" {
		return
	}
	for _, line := range strings.Split(desc, "\n") {
		sb.WriteString("// ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}
