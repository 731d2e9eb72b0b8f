package grammar

import (
	"strconv"
	"strings"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

// ExprKind identifies the shape of one node in a rule or terminal body.
type ExprKind int

const (
	// ExprSeq matches its sub-expressions in order.
	ExprSeq ExprKind = iota
	// ExprAlt matches the first sub-expression that succeeds, in order.
	ExprAlt
	// ExprRef matches the rule or terminal named by Name.
	ExprRef
	// ExprLit matches a token whose text equals Text.
	ExprLit
	// ExprRegex matches text against the pattern in Text. Terminals only.
	ExprRegex
	// ExprOpt matches its sub-expression zero or one time.
	ExprOpt
	// ExprStar matches its sub-expression zero or more times.
	ExprStar
	// ExprPlus matches its sub-expression one or more times.
	ExprPlus
)

func (k ExprKind) String() string {
	switch k {
	case ExprSeq:
		return "sequence"
	case ExprAlt:
		return "alternation"
	case ExprRef:
		return "reference"
	case ExprLit:
		return "literal"
	case ExprRegex:
		return "regex"
	case ExprOpt:
		return "optional"
	case ExprStar:
		return "zero or more"
	case ExprPlus:
		return "one or more"
	default:
		return "unknown"
	}
}

// Expr is one node of a parsed definition body.
//
// Name is set for ExprRef, Text for ExprLit and ExprRegex. Subs holds the
// children of ExprSeq and ExprAlt and the single operand of the quantifier
// kinds.
type Expr struct {
	Kind ExprKind
	Name string
	Text string
	Subs []*Expr
	Pos  grammarschool.Position
}

// String renders the expression in grammar meta syntax. Literals are always
// double quoted, so the output is canonical rather than byte-identical to
// the parsed input.
func (e *Expr) String() string {
	switch e.Kind {
	case ExprRef:
		return e.Name
	case ExprLit:
		return strconv.Quote(e.Text)
	case ExprRegex:
		return "/" + strings.ReplaceAll(e.Text, "/", `\/`) + "/"
	case ExprSeq:
		parts := make([]string, len(e.Subs))
		for i, sub := range e.Subs {
			parts[i] = sub.group(ExprSeq)
		}
		return strings.Join(parts, " ")
	case ExprAlt:
		parts := make([]string, len(e.Subs))
		for i, sub := range e.Subs {
			parts[i] = sub.group(ExprAlt)
		}
		return strings.Join(parts, " | ")
	case ExprOpt:
		return e.Subs[0].group(ExprOpt) + "?"
	case ExprStar:
		return e.Subs[0].group(ExprStar) + "*"
	case ExprPlus:
		return e.Subs[0].group(ExprPlus) + "+"
	default:
		return ""
	}
}

// group renders the expression with parentheses when the surrounding kind
// binds tighter than this one.
func (e *Expr) group(parent ExprKind) string {
	wrap := false
	switch e.Kind {
	case ExprAlt:
		wrap = parent != ExprAlt
	case ExprSeq:
		wrap = parent == ExprOpt || parent == ExprStar || parent == ExprPlus
	}
	if wrap {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// walk visits e and every node below it in depth-first order. The visit
// callback returning false prunes the subtree.
func (e *Expr) walk(visit func(*Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	for _, sub := range e.Subs {
		sub.walk(visit)
	}
}
