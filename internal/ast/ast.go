// Package ast defines the closed set of AST node variants produced by
// the builder and consumed by the renderer and language services
// (spec §3.2). Nodes are created once by the builder and never
// mutated afterward; every node carries an immutable Span.
package ast

import "github.com/JamieLittle16/marco/internal/span"

// Node is implemented by every AST variant. The unexported marker
// method closes the sum type to this package: callers type-switch on
// Node rather than adding new implementations.
type Node interface {
	Span() span.Span
	node()
}

// Alignment is a table column's alignment, derived from the
// delimiter row of a GFM table.
type Alignment string

const (
	AlignNone   Alignment = ""
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// BreakType distinguishes a hard line break (trailing double-space or
// backslash) from a soft one (bare newline).
type BreakType string

const (
	BreakHard BreakType = "hard"
	BreakSoft BreakType = "soft"
)

// Document is the root node; it contains only block-level children.
type Document struct {
	Children []Node
	Sp       span.Span
}

func (d *Document) Span() span.Span { return d.Sp }
func (*Document) node()             {}

// ---- Block variants ----

type Heading struct {
	Level   int // invariant: 1..=6
	Content []Node
	Sp      span.Span
}

func (h *Heading) Span() span.Span { return h.Sp }
func (*Heading) node()             {}

type Paragraph struct {
	Content     []Node
	IndentLevel *uint8
	Sp          span.Span
}

func (p *Paragraph) Span() span.Span { return p.Sp }
func (*Paragraph) node()             {}

type CodeBlock struct {
	Language    *string
	Content     string
	IndentLevel *uint8
	Sp          span.Span
}

func (c *CodeBlock) Span() span.Span { return c.Sp }
func (*CodeBlock) node()             {}

type List struct {
	Ordered bool
	Items   []*ListItem
	Sp      span.Span
}

func (l *List) Span() span.Span { return l.Sp }
func (*List) node()             {}

type ListItem struct {
	Content     []Node
	Checked     *bool // present only for GFM task items
	IndentLevel *uint8
	Sp          span.Span
}

func (l *ListItem) Span() span.Span { return l.Sp }
func (*ListItem) node()             {}

type BlockQuote struct {
	Content     []Node
	IndentLevel *uint8
	Sp          span.Span
}

func (b *BlockQuote) Span() span.Span { return b.Sp }
func (*BlockQuote) node()             {}

type HorizontalRule struct {
	Sp span.Span
}

func (h *HorizontalRule) Span() span.Span { return h.Sp }
func (*HorizontalRule) node()             {}

type Table struct {
	Headers []*TableCell
	Rows    [][]*TableCell
	Sp      span.Span
}

func (t *Table) Span() span.Span { return t.Sp }
func (*Table) node()             {}

type TableCell struct {
	Content   []Node
	Alignment Alignment
	Sp        span.Span
}

func (t *TableCell) Span() span.Span { return t.Sp }
func (*TableCell) node()             {}

type HtmlBlock struct {
	Content string
	Sp      span.Span
}

func (h *HtmlBlock) Span() span.Span { return h.Sp }
func (*HtmlBlock) node()             {}

// SlideDeck is a Marco extension block. Its slides carry raw-content
// spans rather than pre-parsed children (spec §9: "avoids
// cross-recursive parser state"); a second pipeline pass parses each
// slide's inner content on demand.
type SlideDeck struct {
	TimerSeconds *int
	Slides       []Slide
	Sp           span.Span
}

func (s *SlideDeck) Span() span.Span { return s.Sp }
func (*SlideDeck) node()             {}

// SlideOrientation distinguishes a new horizontal slide (`---`) from
// a vertical sub-slide (`--`).
type SlideOrientation string

const (
	SlideHorizontal SlideOrientation = "horizontal"
	SlideVertical   SlideOrientation = "vertical"
)

// Slide is not itself a Node; it is structural metadata carried
// inside a SlideDeck.
type Slide struct {
	Orientation SlideOrientation
	RawContent  string
	Sp          span.Span
}

// TabContainer is a Marco `:::tab` / `@tab` extension block.
type TabContainer struct {
	Panels []TabPanel
	Sp     span.Span
}

func (t *TabContainer) Span() span.Span { return t.Sp }
func (*TabContainer) node()             {}

// TabPanel is structural metadata carried inside a TabContainer.
type TabPanel struct {
	Title      string
	RawContent string
	Sp         span.Span
}

// ---- Inline variants ----

type Text struct {
	Content string
	Sp      span.Span
}

func (t *Text) Span() span.Span { return t.Sp }
func (*Text) node()             {}

type Strong struct {
	Content []Node
	Sp      span.Span
}

func (s *Strong) Span() span.Span { return s.Sp }
func (*Strong) node()             {}

type Emphasis struct {
	Content []Node
	Sp      span.Span
}

func (e *Emphasis) Span() span.Span { return e.Sp }
func (*Emphasis) node()             {}

type Strikethrough struct {
	Content []Node
	Sp      span.Span
}

func (s *Strikethrough) Span() span.Span { return s.Sp }
func (*Strikethrough) node()             {}

type Code struct {
	Content string
	Sp      span.Span
}

func (c *Code) Span() span.Span { return c.Sp }
func (*Code) node()             {}

type Link struct {
	Text  []Node
	URL   string
	Title *string
	Sp    span.Span
}

func (l *Link) Span() span.Span { return l.Sp }
func (*Link) node()             {}

type Image struct {
	Alt   string
	URL   string
	Title *string
	Sp    span.Span
}

func (i *Image) Span() span.Span { return i.Sp }
func (*Image) node()             {}

type LineBreak struct {
	BreakType BreakType
	Sp        span.Span
}

func (l *LineBreak) Span() span.Span { return l.Sp }
func (*LineBreak) node()             {}

type EscapedChar struct {
	Character rune
	Sp        span.Span
}

func (e *EscapedChar) Span() span.Span { return e.Sp }
func (*EscapedChar) node()             {}

type FootnoteDef struct {
	Label   string
	Content []Node
	Sp      span.Span
}

func (f *FootnoteDef) Span() span.Span { return f.Sp }
func (*FootnoteDef) node()             {}

type FootnoteRef struct {
	Label string
	Sp    span.Span
}

func (f *FootnoteRef) Span() span.Span { return f.Sp }
func (*FootnoteRef) node()             {}

type InlineFootnoteRef struct {
	Content []Node
	Sp      span.Span
}

func (i *InlineFootnoteRef) Span() span.Span { return i.Sp }
func (*InlineFootnoteRef) node()             {}

type ReferenceDefinition struct {
	Label string
	URL   string
	Title *string
	Sp    span.Span
}

func (r *ReferenceDefinition) Span() span.Span { return r.Sp }
func (*ReferenceDefinition) node()             {}

type ReferenceLink struct {
	Text  []Node
	Label string
	Sp    span.Span
}

func (r *ReferenceLink) Span() span.Span { return r.Sp }
func (*ReferenceLink) node()             {}

type ReferenceImage struct {
	Alt   string
	Label string
	Sp    span.Span
}

func (r *ReferenceImage) Span() span.Span { return r.Sp }
func (*ReferenceImage) node()             {}

// PlatformMention is a Marco inline extension: @username[platform](display).
type PlatformMention struct {
	Username string
	Platform string
	Display  *string
	Sp       span.Span
}

func (p *PlatformMention) Span() span.Span { return p.Sp }
func (*PlatformMention) node()             {}

// Unknown is the error-recovery placeholder for grammar output the
// builder could not turn into a typed node (spec §4.4, §7).
type Unknown struct {
	Content string
	Rule    string
	Sp      span.Span
}

func (u *Unknown) Span() span.Span { return u.Sp }
func (*Unknown) node()             {}
