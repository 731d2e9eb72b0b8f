// Package scriptmd loads DSL script cases from Markdown documents.
//
// A case document is human-readable test data. Every level-two heading
// starts a case, and the fenced code blocks under it carry the pieces:
// a `grammar` (or `lark`) fence for grammar text, a `script` (or `dsl`)
// fence for the DSL source, a `result` fence for the expected value
// rendering and an `error` fence for the expected failure. A grammar
// fence placed before the first heading is shared by every case that
// does not bring its own. Prose and other fences are ignored, so a case
// file doubles as documentation.
package scriptmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// ErrInvalidCase is wrapped when a case section is structurally unusable:
// no script fence, or the same fence kind twice.
var ErrInvalidCase = errors.New("invalid script case")

// Case is one script scenario from a Markdown document.
type Case struct {
	Name string
	// Grammar is the grammar text for this case; empty means the caller
	// should use its default grammar.
	Grammar string
	Script  string
	// WantResult is the expected result rendering; empty when the case
	// only cares that execution succeeds.
	WantResult string
	// WantErr names the expected error kind, optionally followed by a
	// message substring, e.g. "UnknownMethodError trak". Empty means
	// the case must succeed. See MatchError.
	WantErr string
}

// Load reads a Markdown case file.
func Load(path string) ([]Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cases, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Parse extracts the cases from a Markdown document.
func Parse(content []byte) ([]Case, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(content))

	var (
		cases   []Case
		current *Case
		shared  string
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		if strings.TrimSpace(current.Script) == "" {
			return fmt.Errorf("%w: %q has no script fence", ErrInvalidCase, current.Name)
		}
		if current.Grammar == "" {
			current.Grammar = shared
		}
		cases = append(cases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level != 2 {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{Name: headingText(node, content)}
		case *ast.FencedCodeBlock:
			tag := fenceTag(node, content)
			body := fenceBody(node, content)
			if current == nil {
				// Before the first case only a grammar fence means
				// anything: it becomes the document's shared grammar.
				if tag == "grammar" || tag == "lark" {
					shared = body
				}
				return ast.WalkContinue, nil
			}
			if err := assign(current, tag, body); err != nil {
				return ast.WalkStop, err
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func assign(c *Case, tag, body string) error {
	var slot *string
	switch tag {
	case "grammar", "lark":
		slot = &c.Grammar
	case "script", "dsl":
		slot = &c.Script
	case "result":
		slot = &c.WantResult
		body = strings.TrimSpace(body)
	case "error":
		slot = &c.WantErr
		body = strings.TrimSpace(body)
	default:
		return nil
	}
	if *slot != "" {
		return fmt.Errorf("%w: %q has more than one %s fence", ErrInvalidCase, c.Name, tag)
	}
	*slot = body
	return nil
}

// headingText collects the plain text of a heading node.
func headingText(heading ast.Node, content []byte) string {
	var sb strings.Builder
	_ = ast.Walk(heading, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(content[node.Segment.Start:node.Segment.Stop])
		case *ast.String:
			sb.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// fenceTag returns the lowercased first word of a fence's info string.
func fenceTag(fence *ast.FencedCodeBlock, content []byte) string {
	if fence.Info == nil {
		return ""
	}
	seg := fence.Info.Segment
	info := strings.TrimSpace(string(content[seg.Start:seg.Stop]))
	tag, _, _ := strings.Cut(info, " ")
	return strings.ToLower(tag)
}

// fenceBody returns a fence's content with the trailing newline trimmed.
func fenceBody(fence *ast.FencedCodeBlock, content []byte) string {
	var sb strings.Builder
	lines := fence.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(content[line.Start:line.Stop])
	}
	return strings.TrimRight(sb.String(), "\n")
}
