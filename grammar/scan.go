package grammar

import (
	"fmt"
	"strings"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
)

type metaKind int

const (
	metaName metaKind = iota
	metaString
	metaRegex
	metaLParen
	metaRParen
	metaPipe
	metaStar
	metaPlus
	metaQuestion
)

func (k metaKind) String() string {
	switch k {
	case metaName:
		return "name"
	case metaString:
		return "string"
	case metaRegex:
		return "regex"
	case metaLParen:
		return "lparen"
	case metaRParen:
		return "rparen"
	case metaPipe:
		return "pipe"
	case metaStar:
		return "star"
	case metaPlus:
		return "plus"
	case metaQuestion:
		return "question"
	default:
		return "unknown"
	}
}

// metaToken is one token of the grammar meta syntax itself. For metaString
// the text is unescaped, for metaRegex it is the raw pattern between the
// slashes, for metaName the bare name.
type metaToken struct {
	kind metaKind
	text string
	pos  grammarschool.Position
}

// bodyScanner tokenizes one definition body. The body may span physical
// lines when alternatives continue on |-prefixed lines, so the scanner
// tracks newlines itself.
type bodyScanner struct {
	src    string
	pos    int
	line   int
	col    int
	offset int
}

// newBodyScanner scans src, which starts at the given position of the
// surrounding grammar text.
func newBodyScanner(src string, at grammarschool.Position) *bodyScanner {
	return &bodyScanner{src: src, line: at.Line, col: at.Column, offset: at.Offset}
}

func (s *bodyScanner) scan() ([]metaToken, error) {
	var tokens []metaToken
	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return tokens, nil
		}
		start := s.position()
		c := s.src[s.pos]
		switch {
		case c == '(':
			tokens = append(tokens, metaToken{kind: metaLParen, text: "(", pos: start})
			s.advance(1)
		case c == ')':
			tokens = append(tokens, metaToken{kind: metaRParen, text: ")", pos: start})
			s.advance(1)
		case c == '|':
			tokens = append(tokens, metaToken{kind: metaPipe, text: "|", pos: start})
			s.advance(1)
		case c == '*':
			tokens = append(tokens, metaToken{kind: metaStar, text: "*", pos: start})
			s.advance(1)
		case c == '+':
			tokens = append(tokens, metaToken{kind: metaPlus, text: "+", pos: start})
			s.advance(1)
		case c == '?':
			tokens = append(tokens, metaToken{kind: metaQuestion, text: "?", pos: start})
			s.advance(1)
		case c == '"' || c == '\'':
			text, err := s.readString(c)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, metaToken{kind: metaString, text: text, pos: start})
		case c == '/':
			pattern, err := s.readRegex()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, metaToken{kind: metaRegex, text: pattern, pos: start})
		case isNameStart(c):
			tokens = append(tokens, metaToken{kind: metaName, text: s.readName(), pos: start})
		default:
			return nil, &SyntaxError{Pos: start, Message: fmt.Sprintf("unexpected character %q", c)}
		}
	}
}

// skipSpace consumes whitespace, newlines from continuation lines, and //
// comments through the end of their line.
func (s *bodyScanner) skipSpace() {
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == ' ' || c == '\t' || c == '\r':
			s.advance(1)
		case c == '\n':
			s.pos++
			s.line++
			s.col = 1
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.advance(1)
			}
		default:
			return
		}
	}
}

// readString consumes a quoted literal and returns the unescaped text.
// Literals may use either quote character; \n, \t and \r are translated,
// any other escaped character stands for itself.
func (s *bodyScanner) readString(quote byte) (string, error) {
	start := s.position()
	s.advance(1)
	var sb strings.Builder
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; c {
		case quote:
			s.advance(1)
			return sb.String(), nil
		case '\\':
			if s.pos+1 >= len(s.src) {
				return "", &SyntaxError{Pos: start, Message: "unterminated string literal"}
			}
			switch esc := s.src[s.pos+1]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(esc)
			}
			s.advance(2)
		case '\n':
			return "", &SyntaxError{Pos: start, Message: "unterminated string literal"}
		default:
			sb.WriteByte(c)
			s.advance(1)
		}
	}
	return "", &SyntaxError{Pos: start, Message: "unterminated string literal"}
}

// readRegex consumes a slash-delimited pattern. Only the closing slash can
// be escaped; every other backslash belongs to the pattern itself.
func (s *bodyScanner) readRegex() (string, error) {
	start := s.position()
	s.advance(1)
	var sb strings.Builder
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; c {
		case '/':
			s.advance(1)
			return sb.String(), nil
		case '\\':
			if s.pos+1 >= len(s.src) {
				return "", &SyntaxError{Pos: start, Message: "unterminated regex"}
			}
			if next := s.src[s.pos+1]; next == '/' {
				sb.WriteByte('/')
			} else {
				sb.WriteByte('\\')
				sb.WriteByte(next)
			}
			s.advance(2)
		case '\n':
			return "", &SyntaxError{Pos: start, Message: "unterminated regex"}
		default:
			sb.WriteByte(c)
			s.advance(1)
		}
	}
	return "", &SyntaxError{Pos: start, Message: "unterminated regex"}
}

func (s *bodyScanner) readName() string {
	start := s.pos
	for s.pos < len(s.src) && isNameChar(s.src[s.pos]) {
		s.advance(1)
	}
	return s.src[start:s.pos]
}

func (s *bodyScanner) advance(n int) {
	s.pos += n
	s.col += n
}

func (s *bodyScanner) position() grammarschool.Position {
	return grammarschool.Position{Line: s.line, Column: s.col, Offset: s.offset + s.pos}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
