package grammar

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CompiledTerminal is one terminal ready for matching: declared terminals
// first in declaration order, then a synthesized terminal for every literal
// that appears inline in a rule body.
type CompiledTerminal struct {
	// Name is the terminal name, or the quoted literal text for
	// synthesized terminals, e.g. `"("`.
	Name string
	// Re is the pattern anchored to the start of the remaining input.
	Re *regexp.Regexp
	// Literal is the exact text for single-literal terminals, empty for
	// pattern terminals.
	Literal string
	// Ignore marks terminals the tokenizer consumes without emitting.
	Ignore bool
}

// TerminalSet is the compiled lexical layer of a grammar.
type TerminalSet struct {
	terminals []CompiledTerminal
}

// Terminals returns every compiled terminal in matching priority order.
func (s *TerminalSet) Terminals() []CompiledTerminal { return s.terminals }

// Match finds the terminal matching a prefix of src. The longest match
// wins; on a tie the terminal declared first wins. Empty matches count as
// no match, so ok is false only when no terminal consumes any input.
func (s *TerminalSet) Match(src string) (term CompiledTerminal, text string, ok bool) {
	bestLen := -1
	for _, t := range s.terminals {
		m := t.Re.FindString(src)
		if m == "" {
			continue
		}
		if len(m) > bestLen {
			term = t
			bestLen = len(m)
		}
	}
	if bestLen < 0 {
		return CompiledTerminal{}, "", false
	}
	return term, src[:bestLen], true
}

// TerminalSet compiles the definition's terminals. Validation has already
// proven every pattern compiles, so errors only surface for definitions
// constructed by hand.
func (d *Definition) TerminalSet() (*TerminalSet, error) {
	ignored := make(map[string]bool, len(d.ignored))
	for _, name := range d.ignored {
		ignored[name] = true
	}

	set := &TerminalSet{}
	literals := make(map[string]bool)
	for _, t := range d.terminals {
		re, err := compileTerminal(t.Expr)
		if err != nil {
			return nil, fmt.Errorf("%w: terminal %s: %v", ErrInvalidGrammar, t.Name, err)
		}
		lit := ""
		if t.Expr.Kind == ExprLit {
			lit = t.Expr.Text
			literals[lit] = true
		}
		set.terminals = append(set.terminals, CompiledTerminal{
			Name:    t.Name,
			Re:      re,
			Literal: lit,
			Ignore:  ignored[t.Name],
		})
	}

	// Literals written inline in rule bodies become anonymous terminals
	// after the declared ones, so a declared terminal always wins a tie.
	for _, text := range d.inlineLiterals() {
		if literals[text] {
			continue
		}
		re, err := regexp.Compile(`\A(?:` + regexp.QuoteMeta(text) + `)`)
		if err != nil {
			return nil, fmt.Errorf("%w: literal %q: %v", ErrInvalidGrammar, text, err)
		}
		set.terminals = append(set.terminals, CompiledTerminal{
			Name:    strconv.Quote(text),
			Re:      re,
			Literal: text,
		})
	}

	return set, nil
}

// inlineLiterals returns the distinct literals of all rule bodies in first
// appearance order.
func (d *Definition) inlineLiterals() []string {
	var texts []string
	seen := make(map[string]bool)
	for _, r := range d.rules {
		r.Expr.walk(func(e *Expr) bool {
			if e.Kind == ExprLit && !seen[e.Text] {
				seen[e.Text] = true
				texts = append(texts, e.Text)
			}
			return true
		})
	}
	return texts
}

// compileTerminal turns a terminal body into one anchored regexp.
func compileTerminal(e *Expr) (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?:` + terminalPattern(e) + `)`)
}

func terminalPattern(e *Expr) string {
	switch e.Kind {
	case ExprLit:
		return regexp.QuoteMeta(e.Text)
	case ExprRegex:
		return "(?:" + e.Text + ")"
	case ExprSeq:
		var sb strings.Builder
		for _, sub := range e.Subs {
			sb.WriteString(terminalPattern(sub))
		}
		return sb.String()
	case ExprAlt:
		parts := make([]string, len(e.Subs))
		for i, sub := range e.Subs {
			parts[i] = terminalPattern(sub)
		}
		// Go alternation is leftmost-first, not longest. Ordering
		// literal branches longest-first restores the maximal match
		// for bodies like "for" | "foreach".
		if allLiterals(e.Subs) {
			sort.SliceStable(parts, func(i, j int) bool { return len(parts[i]) > len(parts[j]) })
		}
		return "(?:" + strings.Join(parts, "|") + ")"
	case ExprOpt:
		return "(?:" + terminalPattern(e.Subs[0]) + ")?"
	case ExprStar:
		return "(?:" + terminalPattern(e.Subs[0]) + ")*"
	case ExprPlus:
		return "(?:" + terminalPattern(e.Subs[0]) + ")+"
	default:
		return ""
	}
}

func allLiterals(subs []*Expr) bool {
	for _, sub := range subs {
		if sub.Kind != ExprLit {
			return false
		}
	}
	return true
}
