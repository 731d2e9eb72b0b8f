package grammar

import (
	"fmt"
	"strings"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	pc "github.com/shibukawa/parsercombinator"
)

// Parse parses grammar source text into a validated definition.
//
// The text is line oriented. Each non-blank line is a rule or terminal
// definition (`name: body`), a %-directive, or a // comment. A line whose
// first non-space character is | continues the previous definition with
// another alternative. Comment lines directly above a definition become
// its description.
func Parse(text string) (*Definition, error) {
	lines := splitLines(text)

	var defs []rawDef
	var directives []Directive
	var desc []string

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line.text)
		indent := len(line.text) - len(strings.TrimLeft(line.text, " \t"))
		pos := grammarschool.Position{Line: line.num, Column: indent + 1, Offset: line.offset + indent}

		switch {
		case trimmed == "":
			desc = desc[:0]
		case strings.HasPrefix(trimmed, "//"):
			desc = append(desc, strings.TrimSpace(strings.TrimPrefix(trimmed, "//")))
		case strings.HasPrefix(trimmed, "%"):
			directives = append(directives, Directive{Text: trimmed, Pos: pos})
			desc = desc[:0]
		case strings.HasPrefix(trimmed, "|"):
			return nil, &SyntaxError{Pos: pos, Message: "alternative continuation without a definition above it"}
		default:
			colon := strings.IndexByte(line.text, ':')
			if colon < 0 {
				return nil, &SyntaxError{Pos: pos, Message: "definition is missing ':'"}
			}
			name := strings.TrimSpace(line.text[:colon])
			terminal, ok := classifyDefName(name)
			if !ok {
				return nil, &SyntaxError{
					Pos:     pos,
					Message: fmt.Sprintf("invalid definition name %q: rules are lower_case, terminals are UPPER_CASE", name),
				}
			}

			end := i
			for end+1 < len(lines) {
				if !strings.HasPrefix(strings.TrimSpace(lines[end+1].text), "|") {
					break
				}
				end++
			}
			bodyStart := line.offset + colon + 1
			bodyEnd := lines[end].offset + len(lines[end].text)
			bodyPos := grammarschool.Position{Line: line.num, Column: colon + 2, Offset: bodyStart}

			expr, err := parseBody(text[bodyStart:bodyEnd], bodyPos)
			if err != nil {
				return nil, err
			}
			defs = append(defs, rawDef{
				name:     name,
				terminal: terminal,
				expr:     expr,
				desc:     strings.Join(desc, "\n"),
				pos:      pos,
			})
			desc = desc[:0]
			i = end
		}
	}

	return finish(defs, directives)
}

// MustParse is Parse for grammars known to be correct, such as the built-in
// default. It panics on error.
func MustParse(text string) *Definition {
	def, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return def
}

// rawDef is one definition before directive resolution and validation.
// Both the text parser and the builder produce these.
type rawDef struct {
	name     string
	terminal bool
	expr     *Expr
	desc     string
	pos      grammarschool.Position
}

type srcLine struct {
	text   string
	num    int
	offset int
}

func splitLines(text string) []srcLine {
	parts := strings.Split(text, "\n")
	lines := make([]srcLine, len(parts))
	offset := 0
	for i, part := range parts {
		lines[i] = srcLine{text: strings.TrimSuffix(part, "\r"), num: i + 1, offset: offset}
		offset += len(part) + 1
	}
	return lines
}

// classifyDefName reports whether name declares a terminal (UPPER_CASE) or
// a rule (lower_case). Mixed-case names are rejected.
func classifyDefName(name string) (terminal, ok bool) {
	if name == "" {
		return false, false
	}
	if !isNameStart(name[0]) {
		return false, false
	}
	hasLower, hasUpper := false, false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c == '_' || (c >= '0' && c <= '9'):
		default:
			return false, false
		}
	}
	if hasLower && hasUpper {
		return false, false
	}
	return hasUpper, true
}

func parseBody(src string, at grammarschool.Position) (*Expr, error) {
	tokens, err := newBodyScanner(src, at).scan()
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &SyntaxError{Pos: at, Message: "empty definition body"}
	}
	return parseBodyExpr(tokens)
}

// metaEntity bridges scanner tokens and parsed expressions through the
// combinator pipeline: primitive matchers carry the scanner token, Trans
// handlers replace matched runs with the expression they build.
type metaEntity struct {
	tok  metaToken
	expr *Expr
}

func metaPcTokens(tokens []metaToken) []pc.Token[metaEntity] {
	converted := make([]pc.Token[metaEntity], len(tokens))
	for i, t := range tokens {
		converted[i] = pc.Token[metaEntity]{
			Type: t.kind.String(),
			Pos:  &pc.Pos{Line: t.pos.Line, Col: t.pos.Column, Index: t.pos.Offset},
			Val:  metaEntity{tok: t},
			Raw:  t.text,
		}
	}
	return converted
}

func metaPrim(kinds ...metaKind) pc.Parser[metaEntity] {
	return func(pctx *pc.ParseContext[metaEntity], tokens []pc.Token[metaEntity]) (int, []pc.Token[metaEntity], error) {
		if len(tokens) == 0 {
			return 0, nil, pc.ErrNotMatch
		}
		for _, kind := range kinds {
			if tokens[0].Val.tok.kind == kind {
				return 1, tokens[0:1], nil
			}
		}
		return 0, nil, pc.ErrNotMatch
	}
}

func exprToken(e *Expr, from pc.Token[metaEntity]) pc.Token[metaEntity] {
	return pc.Token[metaEntity]{
		Type: "expr",
		Pos:  from.Pos,
		Val:  metaEntity{tok: from.Val.tok, expr: e},
		Raw:  from.Raw,
	}
}

// bodyExpr parses one definition body: alternatives of sequences of
// quantified atoms, with parentheses for grouping.
var bodyExpr pc.Parser[metaEntity]

func init() {
	atom := pc.Or(
		pc.Trans(metaPrim(metaName), func(_ *pc.ParseContext[metaEntity], tokens []pc.Token[metaEntity]) ([]pc.Token[metaEntity], error) {
			t := tokens[0]
			return []pc.Token[metaEntity]{exprToken(&Expr{Kind: ExprRef, Name: t.Val.tok.text, Pos: t.Val.tok.pos}, t)}, nil
		}),
		pc.Trans(metaPrim(metaString), func(_ *pc.ParseContext[metaEntity], tokens []pc.Token[metaEntity]) ([]pc.Token[metaEntity], error) {
			t := tokens[0]
			return []pc.Token[metaEntity]{exprToken(&Expr{Kind: ExprLit, Text: t.Val.tok.text, Pos: t.Val.tok.pos}, t)}, nil
		}),
		pc.Trans(metaPrim(metaRegex), func(_ *pc.ParseContext[metaEntity], tokens []pc.Token[metaEntity]) ([]pc.Token[metaEntity], error) {
			t := tokens[0]
			return []pc.Token[metaEntity]{exprToken(&Expr{Kind: ExprRegex, Text: t.Val.tok.text, Pos: t.Val.tok.pos}, t)}, nil
		}),
		pc.Trans(pc.Seq(
			metaPrim(metaLParen),
			pc.Lazy(func() pc.Parser[metaEntity] { return bodyExpr }),
			metaPrim(metaRParen),
		), func(_ *pc.ParseContext[metaEntity], tokens []pc.Token[metaEntity]) ([]pc.Token[metaEntity], error) {
			return tokens[1:2], nil
		}),
	)

	quantified := pc.Trans(pc.Seq(
		atom,
		pc.Optional(metaPrim(metaStar, metaPlus, metaQuestion)),
	), func(_ *pc.ParseContext[metaEntity], tokens []pc.Token[metaEntity]) ([]pc.Token[metaEntity], error) {
		if len(tokens) == 1 {
			return tokens, nil
		}
		operand := tokens[0].Val.expr
		var kind ExprKind
		switch tokens[1].Val.tok.kind {
		case metaStar:
			kind = ExprStar
		case metaPlus:
			kind = ExprPlus
		default:
			kind = ExprOpt
		}
		return []pc.Token[metaEntity]{exprToken(&Expr{Kind: kind, Subs: []*Expr{operand}, Pos: operand.Pos}, tokens[0])}, nil
	})

	sequence := pc.Trans(pc.Seq(
		quantified,
		pc.ZeroOrMore("sequence items", quantified),
	), func(_ *pc.ParseContext[metaEntity], tokens []pc.Token[metaEntity]) ([]pc.Token[metaEntity], error) {
		if len(tokens) == 1 {
			return tokens, nil
		}
		subs := make([]*Expr, len(tokens))
		for i, t := range tokens {
			subs[i] = t.Val.expr
		}
		return []pc.Token[metaEntity]{exprToken(&Expr{Kind: ExprSeq, Subs: subs, Pos: subs[0].Pos}, tokens[0])}, nil
	})

	bodyExpr = pc.Trans(pc.Seq(
		sequence,
		pc.ZeroOrMore("alternatives", pc.Seq(metaPrim(metaPipe), sequence)),
	), func(_ *pc.ParseContext[metaEntity], tokens []pc.Token[metaEntity]) ([]pc.Token[metaEntity], error) {
		var subs []*Expr
		for _, t := range tokens {
			if t.Val.expr != nil {
				subs = append(subs, t.Val.expr)
			}
		}
		if len(subs) == 1 {
			return tokens[0:1], nil
		}
		return []pc.Token[metaEntity]{exprToken(&Expr{Kind: ExprAlt, Subs: subs, Pos: subs[0].Pos}, tokens[0])}, nil
	})
}

func parseBodyExpr(tokens []metaToken) (*Expr, error) {
	src := metaPcTokens(tokens)
	pctx := pc.NewParseContext[metaEntity]()
	consumed, parsed, err := bodyExpr(pctx, src)
	if err != nil {
		return nil, &SyntaxError{Pos: tokens[0].pos, Message: "malformed expression"}
	}
	if consumed != len(src) {
		bad := tokens[consumed]
		return nil, &SyntaxError{Pos: bad.pos, Message: fmt.Sprintf("unexpected %q in definition body", bad.text)}
	}
	for _, t := range parsed {
		if t.Val.expr != nil {
			return t.Val.expr, nil
		}
	}
	return nil, &SyntaxError{Pos: tokens[0].pos, Message: "malformed expression"}
}

// commonTerminals is the library available through %import common.NAME,
// mirroring the classic Lark common terminals hosts expect to find.
var commonTerminals = map[string]string{
	"WS":             `\s+`,
	"WS_INLINE":      `[ \t]+`,
	"NEWLINE":        `(\r?\n)+`,
	"INT":            `\d+`,
	"SIGNED_INT":     `[+-]?\d+`,
	"NUMBER":         `\d+(\.\d+)?`,
	"SIGNED_NUMBER":  `[+-]?\d+(\.\d+)?`,
	"ESCAPED_STRING": `"([^"\\]|\\.)*"`,
	"CNAME":          `[A-Za-z_][A-Za-z0-9_]*`,
	"SH_COMMENT":     `#[^\n]*`,
	"CPP_COMMENT":    `//[^\n]*`,
}

// finish resolves directives, indexes the definitions, and validates the
// result. Text parsing and the builder both end here, which is what keeps
// the two construction paths equivalent.
func finish(defs []rawDef, directives []Directive) (*Definition, error) {
	d := &Definition{
		ruleIndex: make(map[string]*Rule),
		termIndex: make(map[string]*Terminal),
	}
	var problems findings

	for _, def := range defs {
		if def.terminal {
			if d.termIndex[def.name] != nil {
				problems.add(def.pos, "terminal %s is defined more than once", def.name)
				continue
			}
			t := &Terminal{Name: def.name, Expr: def.expr, Description: def.desc, Pos: def.pos}
			d.terminals = append(d.terminals, t)
			d.termIndex[def.name] = t
		} else {
			if d.ruleIndex[def.name] != nil {
				problems.add(def.pos, "rule %s is defined more than once", def.name)
				continue
			}
			r := &Rule{Name: def.name, Expr: def.expr, Description: def.desc, Pos: def.pos}
			d.rules = append(d.rules, r)
			d.ruleIndex[def.name] = r
		}
	}

	type pendingIgnore struct {
		name string
		pos  grammarschool.Position
	}
	var ignores []pendingIgnore

	for _, dir := range directives {
		fields := strings.Fields(dir.Text)
		switch fields[0] {
		case "%import":
			if len(fields) != 2 {
				problems.add(dir.Pos, "malformed directive %q, want %%import common.NAME", dir.Text)
				break
			}
			name, found := strings.CutPrefix(fields[1], "common.")
			if !found {
				problems.add(dir.Pos, "only common.* imports are supported, got %s", fields[1])
				break
			}
			pattern, known := commonTerminals[name]
			if !known {
				problems.add(dir.Pos, "unknown common terminal %s", name)
				break
			}
			if d.termIndex[name] == nil {
				t := &Terminal{
					Name:     name,
					Expr:     &Expr{Kind: ExprRegex, Text: pattern, Pos: dir.Pos},
					Pos:      dir.Pos,
					imported: true,
				}
				d.terminals = append(d.terminals, t)
				d.termIndex[name] = t
			}
		case "%ignore":
			if len(fields) != 2 {
				problems.add(dir.Pos, "malformed directive %q, want %%ignore TERMINAL", dir.Text)
				break
			}
			ignores = append(ignores, pendingIgnore{name: fields[1], pos: dir.Pos})
		default:
			problems.add(dir.Pos, "unsupported directive %s", fields[0])
		}
		d.directives = append(d.directives, dir)
	}

	seen := make(map[string]bool)
	for _, ig := range ignores {
		if d.termIndex[ig.name] == nil {
			problems.add(ig.pos, "%%ignore references undefined terminal %s", ig.name)
			continue
		}
		if !seen[ig.name] {
			seen[ig.name] = true
			d.ignored = append(d.ignored, ig.name)
		}
	}

	validate(d, &problems)

	if err := problems.err(); err != nil {
		return nil, err
	}
	return d, nil
}
