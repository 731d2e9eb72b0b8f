package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/tokenizer"
)

// Extract walks a parse tree and collects its call chains. Extraction is
// shape driven, not rule-name driven: any node whose children are a name
// leaf, an opening parenthesis, and a closing parenthesis at the end is a
// call, whatever the grammar called the rule. A dot token between two calls
// chains them; so does a dot folded into the method literal itself, as in
// grammars that declare ".add_note" as one token.
func Extract(tree *Tree) ([]*grammarschool.CallChain, error) {
	ex := &extractor{}
	if err := ex.scan(tree.Root); err != nil {
		return nil, err
	}
	return ex.chains, nil
}

type extractor struct {
	chains  []*grammarschool.CallChain
	current *grammarschool.CallChain

	// Set when a dot token was seen since the last call, meaning the next
	// call continues the current chain.
	dotPending bool
}

func (ex *extractor) scan(n *Node) error {
	if isCall(n) {
		call, chained, err := buildCall(n)
		if err != nil {
			return err
		}
		ex.add(call, chained)
		return nil
	}
	if n.IsToken() {
		if n.Token.Value == "." {
			ex.dotPending = true
		}
		return nil
	}
	for _, child := range n.Children {
		if err := ex.scan(child); err != nil {
			return err
		}
	}
	return nil
}

func (ex *extractor) add(call *grammarschool.Call, chained bool) {
	if (chained || ex.dotPending) && ex.current != nil {
		ex.current.Calls = append(ex.current.Calls, call)
	} else {
		ex.current = &grammarschool.CallChain{Calls: []*grammarschool.Call{call}}
		ex.chains = append(ex.chains, ex.current)
	}
	ex.dotPending = false
}

func isCall(n *Node) bool {
	if n.IsToken() || len(n.Children) < 3 {
		return false
	}
	first, second, last := n.Children[0], n.Children[1], n.Children[len(n.Children)-1]
	return first.IsToken() && callName(first.Token.Value) != "" &&
		second.IsToken() && second.Token.Value == "(" &&
		last.IsToken() && last.Token.Value == ")"
}

func buildCall(n *Node) (call *grammarschool.Call, chained bool, err error) {
	nameTok := n.Children[0].Token
	call = &grammarschool.Call{
		Name: callName(nameTok.Value),
		Pos:  nameTok.Pos,
	}
	if err := collectArgs(call, n, n.Children[2:len(n.Children)-1]); err != nil {
		return nil, false, err
	}
	return call, strings.HasPrefix(nameTok.Value, "."), nil
}

// collectArgs gathers the arguments from the sibling run between a call's
// parentheses. Wrapper rules such as the default grammar's args and value
// recurse transparently; tokens that carry no value, like comma separators,
// are skipped.
func collectArgs(call *grammarschool.Call, parent *Node, nodes []*Node) error {
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		// Flat keyword form: a name leaf, "=", and a value as direct
		// siblings, from grammars that spell kwargs out in the call rule
		// instead of an arg rule.
		if i+2 < len(nodes) && isIdentLeaf(n) && isTextLeaf(nodes[i+1], "=") {
			value, used, err := valueFragment(nodes[i+2:], parent)
			if err != nil {
				return err
			}
			call.Args = append(call.Args, grammarschool.Arg{Name: n.Token.Value, Value: value})
			i += 1 + used
			continue
		}
		// Flat function reference: "@" then a name as direct siblings.
		if i+1 < len(nodes) {
			if name, pos, ok := funcRefShape(&Node{Children: nodes[i : i+2]}); ok {
				call.Args = append(call.Args, grammarschool.Arg{Value: grammarschool.FuncValue(name, pos)})
				i++
				continue
			}
		}
		switch {
		case n.IsToken():
			if value, ok := leafValue(n.Token); ok {
				call.Args = append(call.Args, grammarschool.Arg{Value: value})
			}
		case isCall(n):
			nested, _, err := buildCall(n)
			if err != nil {
				return err
			}
			call.Args = append(call.Args, grammarschool.Arg{Value: grammarschool.CallValue(nested, nested.Pos)})
		default:
			if name, rest, ok := kwargShape(n); ok {
				value, err := extractValue(rest, n)
				if err != nil {
					return err
				}
				call.Args = append(call.Args, grammarschool.Arg{Name: name, Value: value})
				continue
			}
			if fn, pos, ok := funcRefShape(n); ok {
				call.Args = append(call.Args, grammarschool.Arg{Value: grammarschool.FuncValue(fn, pos)})
				continue
			}
			if err := collectArgs(call, n, n.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

// kwargShape matches a node whose children are [name "=" value...], the
// default grammar's arg rule.
func kwargShape(n *Node) (string, []*Node, bool) {
	if len(n.Children) < 3 {
		return "", nil, false
	}
	first, second := n.Children[0], n.Children[1]
	if !isIdentLeaf(first) || !isTextLeaf(second, "=") {
		return "", nil, false
	}
	return first.Token.Value, n.Children[2:], true
}

// funcRefShape matches an ["@" name] pair, the deferred function reference
// of the default grammar's function_ref rule.
func funcRefShape(n *Node) (string, grammarschool.Position, bool) {
	if len(n.Children) != 2 {
		return "", grammarschool.Position{}, false
	}
	at, ident := n.Children[0], n.Children[1]
	if isTextLeaf(at, "@") && isIdentLeaf(ident) {
		return ident.Token.Value, at.Token.Pos, true
	}
	return "", grammarschool.Position{}, false
}

// valueFragment resolves a value from the head of a flat sibling run and
// reports how many nodes it consumed: two for an "@" name pair, otherwise
// one.
func valueFragment(nodes []*Node, container *Node) (grammarschool.Value, int, error) {
	if len(nodes) >= 2 {
		if name, pos, ok := funcRefShape(&Node{Children: nodes[:2]}); ok {
			return grammarschool.FuncValue(name, pos), 2, nil
		}
	}
	value, err := extractValue(nodes[:1], container)
	if err != nil {
		return grammarschool.Value{}, 0, err
	}
	return value, 1, nil
}

// extractValue resolves the value side of a keyword argument, unwrapping
// single-child rule nodes until a literal, call, or function reference
// appears.
func extractValue(nodes []*Node, container *Node) (grammarschool.Value, error) {
	for {
		if len(nodes) == 0 {
			return grammarschool.Value{}, &ExtractError{Rule: ruleName(container), Pos: container.Pos()}
		}
		if len(nodes) == 2 {
			if name, pos, ok := funcRefShape(&Node{Children: nodes}); ok {
				return grammarschool.FuncValue(name, pos), nil
			}
		}
		if len(nodes) != 1 {
			return grammarschool.Value{}, &ExtractError{Rule: ruleName(container), Pos: nodes[0].Pos()}
		}
		n := nodes[0]
		if n.IsToken() {
			if value, ok := leafValue(n.Token); ok {
				return value, nil
			}
			return grammarschool.Value{}, &ExtractError{Rule: ruleName(container), Pos: n.Token.Pos}
		}
		if isCall(n) {
			nested, _, err := buildCall(n)
			if err != nil {
				return grammarschool.Value{}, err
			}
			return grammarschool.CallValue(nested, nested.Pos), nil
		}
		if name, pos, ok := funcRefShape(n); ok {
			return grammarschool.FuncValue(name, pos), nil
		}
		nodes = n.Children
	}
}

// leafValue classifies a token lexically: quoted text is a string, true and
// false are booleans, identifiers stay symbolic, @name defers a function
// lookup, and anything decimal parses is a number. The terminal that
// produced the token does not matter, so custom grammars get literal values
// without declaring the default terminal names.
func leafValue(tok *tokenizer.Token) (grammarschool.Value, bool) {
	text := tok.Value
	switch {
	case text == "true" || text == "false":
		return grammarschool.BoolValue(text == "true", tok.Pos), true
	case len(text) >= 2 && (text[0] == '"' || text[0] == '\'') && text[len(text)-1] == text[0]:
		return grammarschool.StringValue(unquote(text), tok.Pos), true
	case len(text) > 1 && text[0] == '@' && isIdentText(text[1:]):
		return grammarschool.FuncValue(text[1:], tok.Pos), true
	case isIdentText(text):
		return grammarschool.IdentValue(text, tok.Pos), true
	default:
		if num, err := decimal.NewFromString(text); err == nil {
			return grammarschool.NumberValue(num, tok.Pos), true
		}
		return grammarschool.Value{}, false
	}
}

func unquote(text string) string {
	inner := text[1 : len(text)-1]
	if !strings.ContainsRune(inner, '\\') {
		return inner
	}
	var sb strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(inner[i])
			}
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// callName returns the method name a token contributes to a call: a bare
// identifier, or a dot-prefixed one from grammars that fold the chaining
// dot into the method literal. Empty means the token cannot open a call.
func callName(text string) string {
	name := strings.TrimPrefix(text, ".")
	if isIdentText(name) {
		return name
	}
	return ""
}

func isIdentText(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isIdentLeaf(n *Node) bool {
	return n.IsToken() && isIdentText(n.Token.Value)
}

func isTextLeaf(n *Node, text string) bool {
	return n.IsToken() && n.Token.Value == text
}

func ruleName(n *Node) string {
	if n.Rule != "" {
		return n.Rule
	}
	return "?"
}
