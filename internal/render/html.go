// Package render turns a built ast.Document into an output format:
// HTML (this file) or the span-annotated JSON tree (json.go), per spec
// §4.5. Rendering never mutates or re-spans the tree it walks.
package render

import (
	"strconv"
	"strings"

	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/builder"
	"github.com/JamieLittle16/marco/internal/grammar"
	"github.com/JamieLittle16/marco/internal/span"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }

// HTML renders doc to a complete HTML fragment. Rendering is pure: the
// same document always renders to the same bytes. Output whose blocks
// each start with an HTML tag and contain no blank line re-parses as
// raw HTML blocks and so re-renders unchanged; a code block whose
// content has a blank line does not survive that round trip.
func HTML(doc *ast.Document) string {
	var sb strings.Builder
	for _, child := range doc.Children {
		renderBlock(child, &sb)
	}
	return sb.String()
}

func renderBlock(n ast.Node, sb *strings.Builder) {
	switch v := n.(type) {
	case *ast.Heading:
		tag := "h" + strconv.Itoa(v.Level)
		sb.WriteString("<" + tag + ">")
		renderInlines(v.Content, sb)
		sb.WriteString("</" + tag + ">\n")

	case *ast.Paragraph:
		sb.WriteString("<p>")
		renderInlines(v.Content, sb)
		sb.WriteString("</p>\n")

	case *ast.CodeBlock:
		sb.WriteString("<pre><code")
		if v.Language != nil && *v.Language != "" {
			sb.WriteString(` class="`)
			sb.WriteString(escapeHTML(*v.Language))
			sb.WriteString(`"`)
		}
		sb.WriteString(">")
		sb.WriteString(escapeHTML(v.Content))
		sb.WriteString("</code></pre>\n")

	case *ast.List:
		tag := "ul"
		if v.Ordered {
			tag = "ol"
		}
		sb.WriteString("<" + tag + ">\n")
		for _, item := range v.Items {
			renderBlock(item, sb)
		}
		sb.WriteString("</" + tag + ">\n")

	case *ast.ListItem:
		sb.WriteString("<li>")
		if v.Checked != nil {
			sb.WriteString(`<input type="checkbox" disabled`)
			if *v.Checked {
				sb.WriteString(" checked")
			}
			sb.WriteString("/> ")
		}
		for _, c := range v.Content {
			renderBlock(c, sb)
		}
		sb.WriteString("</li>\n")

	case *ast.BlockQuote:
		sb.WriteString("<blockquote>\n")
		for _, c := range v.Content {
			renderBlock(c, sb)
		}
		sb.WriteString("</blockquote>\n")

	case *ast.HorizontalRule:
		sb.WriteString("<hr />\n")

	case *ast.Table:
		sb.WriteString(`<table class="marco-table">` + "\n<thead>\n<tr>\n")
		for _, cell := range v.Headers {
			renderTableCell(cell, "th", sb)
		}
		sb.WriteString("</tr>\n</thead>\n<tbody>\n")
		for _, row := range v.Rows {
			sb.WriteString("<tr>\n")
			for _, cell := range row {
				renderTableCell(cell, "td", sb)
			}
			sb.WriteString("</tr>\n")
		}
		sb.WriteString("</tbody>\n</table>\n")

	case *ast.HtmlBlock:
		sb.WriteString(v.Content)
		sb.WriteString("\n")

	case *ast.SlideDeck:
		sb.WriteString(`<div class="slide-deck"`)
		if v.TimerSeconds != nil {
			sb.WriteString(` data-timer-seconds="`)
			sb.WriteString(strconv.Itoa(*v.TimerSeconds))
			sb.WriteString(`"`)
		}
		sb.WriteString(">\n")
		for _, slide := range v.Slides {
			sb.WriteString(`<div class="slide" data-orientation="`)
			sb.WriteString(string(slide.Orientation))
			sb.WriteString(`">`)
			sb.WriteString(renderRawMarkdown(slide.RawContent, slide.Sp.Start))
			sb.WriteString("</div>\n")
		}
		sb.WriteString("</div>\n")

	case *ast.TabContainer:
		sb.WriteString(`<div class="tab-container">` + "\n")
		for _, panel := range v.Panels {
			sb.WriteString(`<div class="tab-panel" data-title="`)
			sb.WriteString(escapeHTML(panel.Title))
			sb.WriteString(`">`)
			sb.WriteString(renderRawMarkdown(panel.RawContent, panel.Sp.Start))
			sb.WriteString("</div>\n")
		}
		sb.WriteString("</div>\n")

	case *ast.FootnoteDef:
		sb.WriteString(`<div class="footnote-def" id="fn-`)
		sb.WriteString(escapeHTML(v.Label))
		sb.WriteString(`"><sup>`)
		sb.WriteString(escapeHTML(v.Label))
		sb.WriteString("</sup> ")
		renderInlines(v.Content, sb)
		sb.WriteString("</div>\n")

	case *ast.Unknown:
		sb.WriteString(escapeHTML(v.Content))
		sb.WriteString("\n")

	default:
		renderInlineNode(n, sb)
	}
}

func renderTableCell(cell *ast.TableCell, tag string, sb *strings.Builder) {
	sb.WriteString("<" + tag)
	switch cell.Alignment {
	case ast.AlignLeft:
		sb.WriteString(` style="text-align:left"`)
	case ast.AlignCenter:
		sb.WriteString(` style="text-align:center"`)
	case ast.AlignRight:
		sb.WriteString(` style="text-align:right"`)
	}
	sb.WriteString(">")
	renderInlines(cell.Content, sb)
	sb.WriteString("</" + tag + ">\n")
}

// renderRawMarkdown re-parses and renders a slide/tab-panel's raw body
// as its own sub-document (spec §9: slides carry raw content rather
// than pre-parsed children, so the renderer drives a second pass here
// rather than the builder doing it eagerly).
func renderRawMarkdown(raw string, start span.Position) string {
	pairs, _ := grammar.ParseBlocks(raw)
	doc, _ := builder.BuildDocument(pairs, span.New(start, start))
	return HTML(doc)
}

func renderInlines(nodes []ast.Node, sb *strings.Builder) {
	for _, n := range nodes {
		renderInlineNode(n, sb)
	}
}

func renderInlineNode(n ast.Node, sb *strings.Builder) {
	switch v := n.(type) {
	case *ast.Text:
		sb.WriteString(escapeHTML(v.Content))

	case *ast.Strong:
		sb.WriteString("<strong>")
		renderInlines(v.Content, sb)
		sb.WriteString("</strong>")

	case *ast.Emphasis:
		sb.WriteString("<em>")
		renderInlines(v.Content, sb)
		sb.WriteString("</em>")

	case *ast.Strikethrough:
		sb.WriteString("<del>")
		renderInlines(v.Content, sb)
		sb.WriteString("</del>")

	case *ast.Code:
		sb.WriteString("<code>")
		sb.WriteString(escapeHTML(v.Content))
		sb.WriteString("</code>")

	case *ast.Link:
		sb.WriteString(`<a href="`)
		sb.WriteString(escapeHTML(v.URL))
		sb.WriteString(`"`)
		if v.Title != nil {
			sb.WriteString(` title="`)
			sb.WriteString(escapeHTML(*v.Title))
			sb.WriteString(`"`)
		}
		sb.WriteString(">")
		renderInlines(v.Text, sb)
		sb.WriteString("</a>")

	case *ast.Image:
		sb.WriteString(`<img src="`)
		sb.WriteString(escapeHTML(v.URL))
		sb.WriteString(`" alt="`)
		sb.WriteString(escapeHTML(v.Alt))
		sb.WriteString(`"`)
		if v.Title != nil {
			sb.WriteString(` title="`)
			sb.WriteString(escapeHTML(*v.Title))
			sb.WriteString(`"`)
		}
		sb.WriteString(" />")

	case *ast.LineBreak:
		if v.BreakType == ast.BreakHard {
			sb.WriteString("<br />\n")
		} else {
			sb.WriteString("\n")
		}

	case *ast.EscapedChar:
		sb.WriteString(escapeHTML(string(v.Character)))

	case *ast.FootnoteRef:
		sb.WriteString(`<sup><a href="#fn-`)
		sb.WriteString(escapeHTML(v.Label))
		sb.WriteString(`" class="footnote-ref">`)
		sb.WriteString(escapeHTML(v.Label))
		sb.WriteString("</a></sup>")

	case *ast.InlineFootnoteRef:
		sb.WriteString(`<sup class="footnote-inline">`)
		renderInlines(v.Content, sb)
		sb.WriteString("</sup>")

	case *ast.ReferenceLink:
		sb.WriteString("[")
		renderInlines(v.Text, sb)
		sb.WriteString("][" + escapeHTML(v.Label) + "]")

	case *ast.ReferenceImage:
		sb.WriteString("![")
		sb.WriteString(escapeHTML(v.Alt))
		sb.WriteString("][" + escapeHTML(v.Label) + "]")

	case *ast.PlatformMention:
		display := "@" + v.Username
		if v.Display != nil {
			display = *v.Display
		}
		sb.WriteString(`<a href="https://`)
		sb.WriteString(escapeHTML(v.Platform))
		sb.WriteString("/@")
		sb.WriteString(escapeHTML(v.Username))
		sb.WriteString(`" class="mention" data-platform="`)
		sb.WriteString(escapeHTML(v.Platform))
		sb.WriteString(`">`)
		sb.WriteString(escapeHTML(display))
		sb.WriteString("</a>")

	case *ast.Unknown:
		sb.WriteString(escapeHTML(v.Content))

	default:
		renderBlock(n, sb)
	}
}
