package lsp

import (
	"testing"

	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/builder"
	"github.com/JamieLittle16/marco/internal/grammar"
	"github.com/JamieLittle16/marco/internal/span"
)

func TestHighlightsCoversHeadingAndEmphasis(t *testing.T) {
	pairs, _ := grammar.ParseBlocks("# Title\n\nHello *world* and **strong**.\n")
	doc, _ := builder.BuildDocument(pairs, span.Zero)
	hs := Highlights(doc)

	var sawHeading, sawEmphasis, sawStrong bool
	for _, h := range hs {
		switch h.Tag {
		case TagHeading1:
			sawHeading = true
		case TagEmphasis:
			sawEmphasis = true
		case TagStrong:
			sawStrong = true
		}
	}
	if !sawHeading || !sawEmphasis || !sawStrong {
		t.Errorf("expected heading, emphasis, and strong highlights, got %+v", hs)
	}
}

func TestHighlightsEmptyDocument(t *testing.T) {
	pairs, _ := grammar.ParseBlocks("")
	doc, _ := builder.BuildDocument(pairs, span.Zero)
	if hs := Highlights(doc); len(hs) != 0 {
		t.Errorf("expected no highlights for empty doc, got %+v", hs)
	}
}

func TestDiagnosticsHeadingLevelTooDeep(t *testing.T) {
	// CommonMark's ATX marker caps at 6 '#' characters, so the
	// grammar itself never emits a Heading with Level > 6; this rule
	// guards a Document assembled by some other path (e.g. a decoded
	// JSON AST) that bypassed that constraint.
	doc := &ast.Document{Children: []ast.Node{
		&ast.Heading{Level: 7, Content: []ast.Node{&ast.Text{Content: "Seven", Sp: span.Zero}}, Sp: span.Zero},
	}}
	ds := Diagnostics(doc)
	if !hasDiagnostic(ds, SeverityError, "Invalid heading level") {
		t.Errorf("expected invalid heading level error, got %+v", ds)
	}
}

func TestDiagnosticsHeadingLowercaseHint(t *testing.T) {
	pairs, _ := grammar.ParseBlocks("# lowercase heading\n")
	doc, _ := builder.BuildDocument(pairs, span.Zero)
	ds := Diagnostics(doc)
	if !hasDiagnostic(ds, SeverityHint, "Heading does not start with uppercase") {
		t.Errorf("expected lowercase heading hint, got %+v", ds)
	}
}

func TestDiagnosticsUnsafeLinkProtocol(t *testing.T) {
	pairs, _ := grammar.ParseBlocks("[click](javascript:alert(1))\n")
	doc, _ := builder.BuildDocument(pairs, span.Zero)
	ds := Diagnostics(doc)
	if !hasDiagnostic(ds, SeverityWarning, "Link uses unsafe protocol") {
		t.Errorf("expected unsafe protocol warning, got %+v", ds)
	}
}

func TestDiagnosticsPreferHTTPS(t *testing.T) {
	pairs, _ := grammar.ParseBlocks("[site](http://example.com)\n")
	doc, _ := builder.BuildDocument(pairs, span.Zero)
	ds := Diagnostics(doc)
	if !hasDiagnostic(ds, SeverityInfo, "Prefer HTTPS") {
		t.Errorf("expected prefer-https info, got %+v", ds)
	}
}

func TestDiagnosticsCodeBlockWithoutLanguage(t *testing.T) {
	pairs, _ := grammar.ParseBlocks("```\nplain\n```\n")
	doc, _ := builder.BuildDocument(pairs, span.Zero)
	ds := Diagnostics(doc)
	if !hasDiagnostic(ds, SeverityHint, "Code block has no language") {
		t.Errorf("expected no-language hint, got %+v", ds)
	}
}

func hasDiagnostic(ds []Diagnostic, sev Severity, msg string) bool {
	for _, d := range ds {
		if d.Severity == sev && d.Message == msg {
			return true
		}
	}
	return false
}

func TestCompletionsBlankLineOffersHeadingsAndCode(t *testing.T) {
	text := ""
	items := Completions(span.Position{Offset: 0}, text)
	var sawH1, sawCode bool
	for _, it := range items {
		if it.Label == "Heading 1" {
			sawH1 = true
		}
		if it.Kind == KindCodeBlock {
			sawCode = true
		}
	}
	if !sawH1 || !sawCode {
		t.Errorf("expected heading and code block completions on blank line, got %+v", items)
	}
}

func TestCompletionsAfterImageBracket(t *testing.T) {
	text := "![ "
	items := Completions(span.Position{Offset: 2}, text)
	if len(items) != 1 || items[0].Kind != KindImage {
		t.Errorf("expected single image completion, got %+v", items)
	}
}

func TestCompletionsAfterLinkBracket(t *testing.T) {
	text := "see [ "
	items := Completions(span.Position{Offset: 5}, text)
	if len(items) != 1 || items[0].Kind != KindLink {
		t.Errorf("expected single link completion, got %+v", items)
	}
}

func TestCompletionsEscapedBracketSuppressed(t *testing.T) {
	text := `\[ `
	items := Completions(span.Position{Offset: 2}, text)
	for _, it := range items {
		if it.Kind == KindLink {
			t.Errorf("expected escaped [ to suppress link completion, got %+v", items)
		}
	}
}

func TestCompletionsTripleBacktickOffersFencedBlock(t *testing.T) {
	text := "``` "
	items := Completions(span.Position{Offset: 3}, text)
	var sawGo bool
	for _, it := range items {
		if it.Label == "go" {
			sawGo = true
		}
	}
	if !sawGo {
		t.Errorf("expected language completions after triple backtick, got %+v", items)
	}
}

func TestCompletionsSingleBacktickOffersCodeSpan(t *testing.T) {
	text := "` "
	items := Completions(span.Position{Offset: 1}, text)
	if len(items) != 1 || items[0].Kind != KindCodeSpan {
		t.Errorf("expected code span completion, got %+v", items)
	}
}

func TestCompletionsDoubleAsteriskOffersStrong(t *testing.T) {
	text := "** "
	items := Completions(span.Position{Offset: 2}, text)
	if len(items) != 1 || items[0].Kind != KindStrong {
		t.Errorf("expected strong completion, got %+v", items)
	}
}

func TestCompletionsHardBreakAtEndOfLine(t *testing.T) {
	text := "some text here"
	items := Completions(span.Position{Offset: len(text)}, text)
	var sawBreak bool
	for _, it := range items {
		if it.Kind == KindHardBreak {
			sawBreak = true
		}
	}
	if !sawBreak {
		t.Errorf("expected hard break completions at end of non-empty line, got %+v", items)
	}
}
