package heading

import (
	"strings"
	"unicode"
)

// Offset is how many levels every heading moves down.
const Offset = 2

// Line is a Markdown line recognised as a heading.
type Line struct {
	Level int    // length of the leading '#' run of the untrimmed line
	Text  string // remainder after stripping the hashes and leading whitespace
}

// String renders the line shifted by Offset levels.
func (l Line) String() string {
	return strings.Repeat("#", l.Level+Offset) + " " + l.Text
}

// Parse classifies a single line. A line is a heading when its trimmed form
// starts with '#'. Level is counted on the untrimmed line, so an indented
// heading reports level 0 and keeps its hashes in Text.
func Parse(line string) (Line, bool) {
	if !strings.HasPrefix(strings.TrimFunc(line, isSpace), "#") {
		return Line{}, false
	}

	rest := strings.TrimLeft(line, "#")
	return Line{
		Level: len(line) - len(rest),
		Text:  strings.TrimLeftFunc(rest, isSpace),
	}, true
}

// Shift moves every heading in content down by Offset levels.
// Non-heading lines are returned byte-identical.
func Shift(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if h, ok := Parse(line); ok {
			lines[i] = h.String()
		}
	}
	return strings.Join(lines, "\n")
}

// Count returns the number of lines Shift would rewrite.
func Count(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		if _, ok := Parse(line); ok {
			n++
		}
	}
	return n
}

// isSpace is unicode.IsSpace plus the ASCII separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
