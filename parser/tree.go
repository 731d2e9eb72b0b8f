package parser

import (
	"strings"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/tokenizer"
)

// Node is one node of a parse tree. Rule nodes carry the rule name and
// children; token leaves carry the matched token. Quantifiers, groups and
// alternatives do not produce nodes of their own: their matches splice into
// the enclosing rule node, so the tree mirrors the grammar's rule structure.
type Node struct {
	Rule     string
	Token    *tokenizer.Token
	Children []*Node
}

// IsToken reports whether the node is a token leaf.
func (n *Node) IsToken() bool { return n.Token != nil }

// Pos returns the source position of the node's first token.
func (n *Node) Pos() grammarschool.Position {
	if n.Token != nil {
		return n.Token.Pos
	}
	for _, child := range n.Children {
		if pos := child.Pos(); !pos.IsZero() {
			return pos
		}
	}
	return grammarschool.Position{}
}

// Tree is the parse tree of one script.
type Tree struct {
	Root *Node
}

// String renders the tree indented, one node per line. The parse command
// uses it to show hosts what their grammar actually matched.
func (t *Tree) String() string {
	var sb strings.Builder
	writeNode(&sb, t.Root, 0)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if n.IsToken() {
		sb.WriteString(n.Token.String())
		sb.WriteByte('\n')
		return
	}
	sb.WriteString(n.Rule)
	sb.WriteByte('\n')
	for _, child := range n.Children {
		writeNode(sb, child, depth+1)
	}
}
