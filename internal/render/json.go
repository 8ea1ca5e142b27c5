package render

import (
	"encoding/json"

	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/span"
)

// jsonSpan is the uniform {start,end} span encoding every jsonNode
// carries (spec §4.5), each point serialized as {offset,line,column}.
type jsonSpan struct {
	Start span.Position `json:"start"`
	End   span.Position `json:"end"`
}

func jspan(s span.Span) jsonSpan { return jsonSpan{Start: s.Start, End: s.End} }

// jsonNode is the uniform envelope every AST node serializes to: a
// discriminant Type tag, the span it covers, and a Fields bag holding
// whatever scalar/child data is specific to that node kind.
type jsonNode struct {
	Type   string      `json:"type"`
	Span   jsonSpan    `json:"span"`
	Fields interface{} `json:"fields,omitempty"`
}

func toJSONNode(n ast.Node) jsonNode {
	switch v := n.(type) {
	case *ast.Heading:
		return jsonNode{"heading", jspan(v.Sp), map[string]interface{}{
			"level": v.Level, "content": toJSONNodes(v.Content),
		}}
	case *ast.Paragraph:
		return jsonNode{"paragraph", jspan(v.Sp), map[string]interface{}{
			"content": toJSONNodes(v.Content),
		}}
	case *ast.CodeBlock:
		return jsonNode{"code_block", jspan(v.Sp), map[string]interface{}{
			"language": v.Language, "content": v.Content,
		}}
	case *ast.List:
		return jsonNode{"list", jspan(v.Sp), map[string]interface{}{
			"ordered": v.Ordered, "items": toJSONNodeSlice(listItemsToNodes(v.Items)),
		}}
	case *ast.ListItem:
		return jsonNode{"list_item", jspan(v.Sp), map[string]interface{}{
			"content": toJSONNodes(v.Content), "checked": v.Checked,
		}}
	case *ast.BlockQuote:
		return jsonNode{"block_quote", jspan(v.Sp), map[string]interface{}{
			"content": toJSONNodes(v.Content),
		}}
	case *ast.HorizontalRule:
		return jsonNode{"horizontal_rule", jspan(v.Sp), nil}
	case *ast.Table:
		rows := make([][]jsonNode, len(v.Rows))
		for i, row := range v.Rows {
			rows[i] = toJSONNodeSlice(tableCellsToNodes(row))
		}
		return jsonNode{"table", jspan(v.Sp), map[string]interface{}{
			"headers": toJSONNodeSlice(tableCellsToNodes(v.Headers)), "rows": rows,
		}}
	case *ast.TableCell:
		return jsonNode{"table_cell", jspan(v.Sp), map[string]interface{}{
			"content": toJSONNodes(v.Content), "alignment": string(v.Alignment),
		}}
	case *ast.HtmlBlock:
		return jsonNode{"html_block", jspan(v.Sp), map[string]interface{}{"content": v.Content}}
	case *ast.SlideDeck:
		slides := make([]map[string]interface{}, len(v.Slides))
		for i, s := range v.Slides {
			slides[i] = map[string]interface{}{
				"orientation": string(s.Orientation), "raw_content": s.RawContent, "span": jspan(s.Sp),
			}
		}
		return jsonNode{"slide_deck", jspan(v.Sp), map[string]interface{}{
			"timer_seconds": v.TimerSeconds, "slides": slides,
		}}
	case *ast.TabContainer:
		panels := make([]map[string]interface{}, len(v.Panels))
		for i, p := range v.Panels {
			panels[i] = map[string]interface{}{
				"title": p.Title, "raw_content": p.RawContent, "span": jspan(p.Sp),
			}
		}
		return jsonNode{"tab_container", jspan(v.Sp), map[string]interface{}{"panels": panels}}
	case *ast.Text:
		return jsonNode{"text", jspan(v.Sp), map[string]interface{}{"content": v.Content}}
	case *ast.Strong:
		return jsonNode{"strong", jspan(v.Sp), map[string]interface{}{"content": toJSONNodes(v.Content)}}
	case *ast.Emphasis:
		return jsonNode{"emphasis", jspan(v.Sp), map[string]interface{}{"content": toJSONNodes(v.Content)}}
	case *ast.Strikethrough:
		return jsonNode{"strikethrough", jspan(v.Sp), map[string]interface{}{"content": toJSONNodes(v.Content)}}
	case *ast.Code:
		return jsonNode{"code", jspan(v.Sp), map[string]interface{}{"content": v.Content}}
	case *ast.Link:
		return jsonNode{"link", jspan(v.Sp), map[string]interface{}{
			"text": toJSONNodes(v.Text), "url": v.URL, "title": v.Title,
		}}
	case *ast.Image:
		return jsonNode{"image", jspan(v.Sp), map[string]interface{}{
			"alt": v.Alt, "url": v.URL, "title": v.Title,
		}}
	case *ast.LineBreak:
		return jsonNode{"line_break", jspan(v.Sp), map[string]interface{}{"break_type": string(v.BreakType)}}
	case *ast.EscapedChar:
		return jsonNode{"escaped_char", jspan(v.Sp), map[string]interface{}{"character": string(v.Character)}}
	case *ast.FootnoteDef:
		return jsonNode{"footnote_def", jspan(v.Sp), map[string]interface{}{
			"label": v.Label, "content": toJSONNodes(v.Content),
		}}
	case *ast.FootnoteRef:
		return jsonNode{"footnote_ref", jspan(v.Sp), map[string]interface{}{"label": v.Label}}
	case *ast.InlineFootnoteRef:
		return jsonNode{"inline_footnote_ref", jspan(v.Sp), map[string]interface{}{"content": toJSONNodes(v.Content)}}
	case *ast.ReferenceDefinition:
		return jsonNode{"reference_definition", jspan(v.Sp), map[string]interface{}{
			"label": v.Label, "url": v.URL, "title": v.Title,
		}}
	case *ast.ReferenceLink:
		return jsonNode{"reference_link", jspan(v.Sp), map[string]interface{}{
			"text": toJSONNodes(v.Text), "label": v.Label,
		}}
	case *ast.ReferenceImage:
		return jsonNode{"reference_image", jspan(v.Sp), map[string]interface{}{
			"alt": v.Alt, "label": v.Label,
		}}
	case *ast.PlatformMention:
		return jsonNode{"platform_mention", jspan(v.Sp), map[string]interface{}{
			"username": v.Username, "platform": v.Platform, "display": v.Display,
		}}
	case *ast.Unknown:
		return jsonNode{"unknown", jspan(v.Sp), map[string]interface{}{
			"rule": v.Rule, "content": v.Content,
		}}
	default:
		return jsonNode{"unknown", jspan(n.Span()), nil}
	}
}

func toJSONNodes(nodes []ast.Node) []jsonNode { return toJSONNodeSlice(nodes) }

func toJSONNodeSlice(nodes []ast.Node) []jsonNode {
	out := make([]jsonNode, len(nodes))
	for i, n := range nodes {
		out[i] = toJSONNode(n)
	}
	return out
}

func listItemsToNodes(items []*ast.ListItem) []ast.Node {
	out := make([]ast.Node, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func tableCellsToNodes(cells []*ast.TableCell) []ast.Node {
	out := make([]ast.Node, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

type jsonDocument struct {
	Type     string     `json:"type"`
	Span     jsonSpan   `json:"span"`
	Children []jsonNode `json:"children"`
}

func toJSONDocument(doc *ast.Document) jsonDocument {
	return jsonDocument{Type: "document", Span: jspan(doc.Sp), Children: toJSONNodeSlice(doc.Children)}
}

// JSONCompact serializes doc to its compact single-line JSON form.
func JSONCompact(doc *ast.Document) ([]byte, error) {
	return json.Marshal(toJSONDocument(doc))
}

// JSONPretty serializes doc with two-space indentation.
func JSONPretty(doc *ast.Document) ([]byte, error) {
	return json.MarshalIndent(toJSONDocument(doc), "", "  ")
}
