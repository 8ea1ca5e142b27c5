package grammar

import (
	"strings"

	"github.com/JamieLittle16/marco/internal/span"
)

// line is one physical line of located input: its text (excluding the
// trailing '\n'), the located position of its first byte, and whether
// a newline followed it in the source (false only for the final line
// of a document with no trailing newline).
type line struct {
	Text    string
	Loc     span.Located
	HasNL   bool
}

// splitLines breaks a located input into its physical lines without
// ever rejoining text into a new buffer: each line's Loc is a real
// view into the original source, so spans built from it stay
// byte-exact (spec §8.2).
func splitLines(in span.Located) []line {
	var out []line
	cur := in
	for {
		idx := strings.IndexByte(cur.Text, '\n')
		if idx < 0 {
			if len(cur.Text) > 0 {
				out = append(out, line{Text: cur.Text, Loc: cur, HasNL: false})
			}
			break
		}
		out = append(out, line{Text: cur.Text[:idx], Loc: cur, HasNL: true})
		cur = cur.Advance(idx + 1)
	}
	return out
}

// end returns the Located position immediately after this line's
// text (not including its newline).
func (l line) end() span.Located {
	return l.Loc.Advance(len(l.Text))
}

func (l line) isBlank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// leadingSpaces counts leading ' ' characters, stopping at a tab or
// non-space (tabs are only meaningful for indented code detection,
// handled separately).
func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

// startsBlockquoteContext reports whether a line begins with 0-3
// leading spaces then '>' -- the cheap predicate spec §9 calls for
// when matching setext headings against their blockquote context.
func startsBlockquoteContext(s string) bool {
	n := leadingSpaces(s)
	if n > 3 || n >= len(s) {
		return false
	}
	return s[n] == '>'
}
