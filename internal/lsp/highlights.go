// Package lsp derives the three language-service views a host editor
// needs over a built document: syntax highlights, diagnostics, and
// cursor completions (spec §4.9). All three are pure functions of
// their inputs and never error; a malformed snapshot just yields an
// empty result.
package lsp

import (
	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/span"
)

// Tag is a highlight classification. The set is closed to the ones
// named below (spec §4.9); "mark", "superscript", and "subscript" are
// reserved for Marco inline extensions that the grammar layer does
// not currently parse into their own AST node, so they are never
// emitted, but they're kept here to keep host tag-handling switches
// exhaustive against the documented vocabulary.
type Tag string

const (
	TagHeading1        Tag = "heading.1"
	TagHeading2        Tag = "heading.2"
	TagHeading3        Tag = "heading.3"
	TagHeading4        Tag = "heading.4"
	TagHeading5        Tag = "heading.5"
	TagHeading6        Tag = "heading.6"
	TagStrong          Tag = "strong"
	TagEmphasis        Tag = "emphasis"
	TagStrikethrough   Tag = "strikethrough"
	TagLink            Tag = "link"
	TagImage           Tag = "image"
	TagCodeSpan        Tag = "code-span"
	TagCodeBlock       Tag = "code-block"
	TagInlineHTML      Tag = "inline-html"
	TagHardBreak       Tag = "hard-break"
	TagSoftBreak       Tag = "soft-break"
	TagList            Tag = "list"
	TagListItem        Tag = "list-item"
	TagBlockquote      Tag = "blockquote"
	TagHTMLBlock       Tag = "html-block"
	TagThematicBreak   Tag = "thematic-break"
	TagMark            Tag = "mark"
	TagSuperscript     Tag = "superscript"
	TagSubscript       Tag = "subscript"
)

var headingTags = [7]Tag{"", TagHeading1, TagHeading2, TagHeading3, TagHeading4, TagHeading5, TagHeading6}

// Highlight is one styleable span of the document.
type Highlight struct {
	Span span.Span
	Tag  Tag
}

// Highlights walks doc in document order and returns a Highlight for
// every styleable node. Highlights nest (an emphasis run inside a
// paragraph inside a list item each contribute their own entry); spec
// §4.9 leaves overlap resolution to the host.
func Highlights(doc *ast.Document) []Highlight {
	var out []Highlight
	for _, n := range doc.Children {
		walkHighlight(n, &out)
	}
	return out
}

func walkHighlight(n ast.Node, out *[]Highlight) {
	switch v := n.(type) {
	case *ast.Heading:
		level := v.Level
		if level < 1 || level > 6 {
			level = 1
		}
		*out = append(*out, Highlight{Span: v.Sp, Tag: headingTags[level]})
		walkChildren(v.Content, out)
	case *ast.Paragraph:
		walkChildren(v.Content, out)
	case *ast.CodeBlock:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagCodeBlock})
	case *ast.List:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagList})
		for _, item := range v.Items {
			walkHighlight(item, out)
		}
	case *ast.ListItem:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagListItem})
		walkChildren(v.Content, out)
	case *ast.BlockQuote:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagBlockquote})
		walkChildren(v.Content, out)
	case *ast.HorizontalRule:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagThematicBreak})
	case *ast.Table:
		for _, cell := range v.Headers {
			walkChildren(cell.Content, out)
		}
		for _, row := range v.Rows {
			for _, cell := range row {
				walkChildren(cell.Content, out)
			}
		}
	case *ast.HtmlBlock:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagHTMLBlock})
	case *ast.SlideDeck:
		// Slide content is raw and unparsed until a second pipeline
		// pass builds it; no highlights are produced for it here.
	case *ast.TabContainer:
		// same as SlideDeck.
	case *ast.FootnoteDef:
		walkChildren(v.Content, out)

	case *ast.Strong:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagStrong})
		walkChildren(v.Content, out)
	case *ast.Emphasis:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagEmphasis})
		walkChildren(v.Content, out)
	case *ast.Strikethrough:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagStrikethrough})
		walkChildren(v.Content, out)
	case *ast.Code:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagCodeSpan})
	case *ast.Link:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagLink})
		walkChildren(v.Text, out)
	case *ast.Image:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagImage})
	case *ast.LineBreak:
		if v.BreakType == ast.BreakHard {
			*out = append(*out, Highlight{Span: v.Sp, Tag: TagHardBreak})
		} else {
			*out = append(*out, Highlight{Span: v.Sp, Tag: TagSoftBreak})
		}
	case *ast.ReferenceLink:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagLink})
		walkChildren(v.Text, out)
	case *ast.ReferenceImage:
		*out = append(*out, Highlight{Span: v.Sp, Tag: TagImage})
	case *ast.InlineFootnoteRef:
		walkChildren(v.Content, out)
	}
}

func walkChildren(children []ast.Node, out *[]Highlight) {
	for _, c := range children {
		walkHighlight(c, out)
	}
}
