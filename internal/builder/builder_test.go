package builder

import (
	"testing"

	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/grammar"
	"github.com/JamieLittle16/marco/internal/span"
)

func build(t *testing.T, src string) *ast.Document {
	t.Helper()
	pairs, _ := grammar.ParseBlocks(src)
	loc := span.FromSource(src)
	doc, errs := BuildDocument(pairs, span.FromLocated(loc, loc.Advance(len(src))))
	for _, e := range errs {
		t.Logf("build error: %v", e)
	}
	return doc
}

func TestBuildHeading(t *testing.T) {
	doc := build(t, "## Title\n")
	if len(doc.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(doc.Children))
	}
	h, ok := doc.Children[0].(*ast.Heading)
	if !ok {
		t.Fatalf("expected *ast.Heading, got %T", doc.Children[0])
	}
	if h.Level != 2 {
		t.Errorf("expected level 2, got %d", h.Level)
	}
	if len(h.Content) != 1 {
		t.Fatalf("expected 1 inline child, got %d", len(h.Content))
	}
	text, ok := h.Content[0].(*ast.Text)
	if !ok || text.Content != "Title" {
		t.Errorf("expected Text(Title), got %#v", h.Content[0])
	}
}

func TestBuildParagraphEmphasis(t *testing.T) {
	doc := build(t, "*foo*bar\n")
	p, ok := doc.Children[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected *ast.Paragraph, got %T", doc.Children[0])
	}
	if len(p.Content) != 2 {
		t.Fatalf("expected 2 inline children, got %d: %#v", len(p.Content), p.Content)
	}
	em, ok := p.Content[0].(*ast.Emphasis)
	if !ok {
		t.Fatalf("expected *ast.Emphasis first, got %T", p.Content[0])
	}
	if len(em.Content) != 1 || em.Content[0].(*ast.Text).Content != "foo" {
		t.Errorf("expected Emphasis(foo), got %#v", em.Content)
	}
	txt, ok := p.Content[1].(*ast.Text)
	if !ok || txt.Content != "bar" {
		t.Errorf("expected trailing Text(bar), got %#v", p.Content[1])
	}
}

func TestBuildIntrawordUnderscoreNotEmphasis(t *testing.T) {
	doc := build(t, "_foo_bar\n")
	p := doc.Children[0].(*ast.Paragraph)
	if len(p.Content) != 1 {
		t.Fatalf("expected single literal text child, got %d: %#v", len(p.Content), p.Content)
	}
	txt, ok := p.Content[0].(*ast.Text)
	if !ok || txt.Content != "_foo_bar" {
		t.Errorf("expected literal Text(_foo_bar), got %#v", p.Content[0])
	}
}

func TestBuildFencedCodeBlock(t *testing.T) {
	doc := build(t, "```go\nfmt.Println(1)\n```\n")
	cb, ok := doc.Children[0].(*ast.CodeBlock)
	if !ok {
		t.Fatalf("expected *ast.CodeBlock, got %T", doc.Children[0])
	}
	if cb.Language == nil || *cb.Language != "go" {
		t.Errorf("expected language go, got %v", cb.Language)
	}
	if cb.Content != "fmt.Println(1)" {
		t.Errorf("expected content fmt.Println(1), got %q", cb.Content)
	}
}

func TestBuildListTaskItems(t *testing.T) {
	doc := build(t, "- [x] done\n- [ ] todo\n")
	list, ok := doc.Children[0].(*ast.List)
	if !ok {
		t.Fatalf("expected *ast.List, got %T", doc.Children[0])
	}
	if list.Ordered {
		t.Error("expected unordered list")
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list.Items))
	}
	if list.Items[0].Checked == nil || !*list.Items[0].Checked {
		t.Error("expected first item checked")
	}
	if list.Items[1].Checked == nil || *list.Items[1].Checked {
		t.Error("expected second item unchecked")
	}
}

func TestBuildTableAlignment(t *testing.T) {
	src := "| A | B | C |\n| :-- | :-: | --: |\n| 1 | 2 | 3 |\n"
	doc := build(t, src)
	tbl, ok := doc.Children[0].(*ast.Table)
	if !ok {
		t.Fatalf("expected *ast.Table, got %T", doc.Children[0])
	}
	if len(tbl.Headers) != 3 {
		t.Fatalf("expected 3 header cells, got %d", len(tbl.Headers))
	}
	want := []ast.Alignment{ast.AlignLeft, ast.AlignCenter, ast.AlignRight}
	for i, w := range want {
		if tbl.Headers[i].Alignment != w {
			t.Errorf("column %d: expected alignment %q, got %q", i, w, tbl.Headers[i].Alignment)
		}
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 data row, got %d", len(tbl.Rows))
	}
}

func TestBuildResolvesReferenceLink(t *testing.T) {
	src := "[foo][bar]\n\n[bar]: https://example.com \"title\"\n"
	doc := build(t, src)
	p, ok := doc.Children[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected *ast.Paragraph, got %T", doc.Children[0])
	}
	link, ok := p.Content[0].(*ast.Link)
	if !ok {
		t.Fatalf("expected resolved *ast.Link, got %T", p.Content[0])
	}
	if link.URL != "https://example.com" {
		t.Errorf("expected resolved URL, got %q", link.URL)
	}
	if link.Title == nil || *link.Title != "title" {
		t.Errorf("expected resolved title, got %v", link.Title)
	}
}

func TestBuildLeavesUnresolvedReferenceLink(t *testing.T) {
	doc := build(t, "[foo][missing]\n")
	p := doc.Children[0].(*ast.Paragraph)
	ref, ok := p.Content[0].(*ast.ReferenceLink)
	if !ok {
		t.Fatalf("expected unresolved *ast.ReferenceLink, got %T", p.Content[0])
	}
	if ref.Label != "missing" {
		t.Errorf("expected label missing, got %q", ref.Label)
	}
}

func TestBuildFootnoteDefinitionAndRef(t *testing.T) {
	src := "See[^1] for details.\n\n[^1]: the footnote body\n"
	doc := build(t, src)
	if len(doc.Children) != 2 {
		t.Fatalf("expected paragraph + footnote def, got %d children", len(doc.Children))
	}
	def, ok := doc.Children[1].(*ast.FootnoteDef)
	if !ok {
		t.Fatalf("expected *ast.FootnoteDef, got %T", doc.Children[1])
	}
	if def.Label != "1" {
		t.Errorf("expected label 1, got %q", def.Label)
	}
}

func TestBuildUnknownRuleNeverAbortsDocument(t *testing.T) {
	pairs := []grammar.Pair{
		{Rule: grammar.Rule("totally_unrecognized"), Span: span.Zero, Raw: "huh"},
	}
	doc, errs := BuildDocument(pairs, span.Zero)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one build error, got %d", len(errs))
	}
	if len(doc.Children) != 1 {
		t.Fatalf("expected the Unknown node to still be emitted, got %d children", len(doc.Children))
	}
	if _, ok := doc.Children[0].(*ast.Unknown); !ok {
		t.Errorf("expected *ast.Unknown, got %T", doc.Children[0])
	}
}
