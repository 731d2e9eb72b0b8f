package testhelper

import (
	"regexp"
	"strings"
	"testing"
)

var (
	whiteSpaces = regexp.MustCompile(`(\s+)`)
	leadingTabs = regexp.MustCompile(`^(\t+)`)
)

func replaceTab(match string) string {
	numTabs := strings.Count(match, "\t")
	return strings.Repeat("    ", numTabs)
}

// TrimIndent lets test fixtures be written as raw strings indented with the
// surrounding code. The first line (up to the first newline) is dropped,
// the second line's indent is stripped from every line, and any leading
// tabs that remain become four spaces each. A whitespace-only final line,
// left by an indented closing backtick, is dropped so the result ends with
// a bare newline.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")

	var indent string
	if len(lines) > 1 {
		indent = whiteSpaces.FindString(lines[1])
	}

	for i, line := range lines {
		line = strings.TrimPrefix(line, indent)
		lines[i] = leadingTabs.ReplaceAllStringFunc(line, replaceTab)
	}

	if last := len(lines) - 1; last > 0 && strings.TrimSpace(lines[last]) == "" {
		lines[last] = ""
	}

	return strings.Join(lines[1:], "\n")
}
