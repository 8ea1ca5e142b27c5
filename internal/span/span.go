// Package span tracks source positions and byte ranges through the
// parsing pipeline. Every AST node carries a Span so that highlights,
// diagnostics, and renderers can point back at the exact bytes that
// produced them.
package span

// Position is a single point in the source: a byte offset plus the
// 1-based line and column derived from it. Column is a byte offset
// from the start of its line, not a rune count.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span is a half-open [Start, End) byte range with derived line/column
// on both ends. Spans are immutable once produced.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// New builds a Span from two positions already known to the caller.
func New(start, end Position) Span {
	return Span{Start: start, End: end}
}

// Zero is the empty span at the origin, used for synthetic nodes that
// have no backing source text (e.g. an omitted reference definition).
var Zero = Span{}

// Contains reports whether s fully contains other, per the span
// containment invariant (spec §8.1): every child span must fall
// within its parent's span.
func (s Span) Contains(other Span) bool {
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Tracker walks a source string and produces Positions as bytes are
// consumed, maintaining line/column incrementally rather than
// rescanning from the start of the document on every call.
type Tracker struct {
	src    string
	offset int
	line   int
	column int
}

// NewTracker creates a Tracker positioned at the start of src.
func NewTracker(src string) *Tracker {
	return &Tracker{src: src, offset: 0, line: 1, column: 1}
}

// Position returns the Tracker's current location.
func (t *Tracker) Position() Position {
	return Position{Offset: t.offset, Line: t.line, Column: t.column}
}

// Advance moves the tracker forward by n bytes of the underlying
// source (which must match src[t.offset:t.offset+n]) and updates
// line/column, treating '\n' as the only line terminator (the
// sanitizer normalizes all other forms away before this runs).
func (t *Tracker) Advance(n int) {
	end := t.offset + n
	if end > len(t.src) {
		end = len(t.src)
	}
	for i := t.offset; i < end; i++ {
		if t.src[i] == '\n' {
			t.line++
			t.column = 1
		} else {
			t.column++
		}
	}
	t.offset = end
}

// SpanFrom returns the Span covering [start, current).
func (t *Tracker) SpanFrom(start Position) Span {
	return Span{Start: start, End: t.Position()}
}

// Located is an input slice annotated with its absolute position in
// the original document, per spec §4.2. Recognizers consume a Located
// and return the remaining Located plus whatever they produced.
type Located struct {
	Text   string
	Offset int
	Line   int
	Column int
}

// FromSource builds the initial Located view over an entire document.
func FromSource(src string) Located {
	return Located{Text: src, Offset: 0, Line: 1, Column: 1}
}

// Pos returns the Position at the start of the located slice.
func (l Located) Pos() Position {
	return Position{Offset: l.Offset, Line: l.Line, Column: l.Column}
}

// Advance consumes n bytes from the front of l and returns the
// remaining Located input, with line/column recomputed. Never returns
// a slice that escapes l.Text's backing array — callers must keep the
// original buffer alive for as long as the returned Located is used.
func (l Located) Advance(n int) Located {
	if n > len(l.Text) {
		n = len(l.Text)
	}
	line, col := l.Line, l.Column
	for i := 0; i < n; i++ {
		if l.Text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Located{Text: l.Text[n:], Offset: l.Offset + n, Line: line, Column: col}
}

// FromLocated yields the Span covering [start, l)'s current position,
// i.e. the span of everything consumed between start and l.
func FromLocated(start Located, l Located) Span {
	return Span{Start: start.Pos(), End: l.Pos()}
}
