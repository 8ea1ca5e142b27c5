package lsp

import (
	"strings"
	"unicode"

	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/span"
)

// Severity is a diagnostic's importance.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// Diagnostic is one reported issue with its source location.
type Diagnostic struct {
	Span     span.Span
	Severity Severity
	Message  string
}

// Diagnostics walks doc and applies the fixed rule set of spec §4.9.
func Diagnostics(doc *ast.Document) []Diagnostic {
	var out []Diagnostic
	for _, n := range doc.Children {
		walkDiagnostic(n, &out)
	}
	return out
}

func walkDiagnostic(n ast.Node, out *[]Diagnostic) {
	switch v := n.(type) {
	case *ast.Heading:
		checkHeading(v, out)
		walkDiagnosticChildren(v.Content, out)
	case *ast.Paragraph:
		walkDiagnosticChildren(v.Content, out)
	case *ast.CodeBlock:
		checkCodeBlock(v, out)
	case *ast.List:
		for _, item := range v.Items {
			walkDiagnostic(item, out)
		}
	case *ast.ListItem:
		walkDiagnosticChildren(v.Content, out)
	case *ast.BlockQuote:
		walkDiagnosticChildren(v.Content, out)
	case *ast.Table:
		for _, cell := range v.Headers {
			walkDiagnosticChildren(cell.Content, out)
		}
		for _, row := range v.Rows {
			for _, cell := range row {
				walkDiagnosticChildren(cell.Content, out)
			}
		}
	case *ast.FootnoteDef:
		walkDiagnosticChildren(v.Content, out)

	case *ast.Strong:
		walkDiagnosticChildren(v.Content, out)
	case *ast.Emphasis:
		walkDiagnosticChildren(v.Content, out)
	case *ast.Strikethrough:
		walkDiagnosticChildren(v.Content, out)
	case *ast.Code:
		checkInlineCode(v, out)
	case *ast.Link:
		checkLink(v.URL, v.Sp, out)
		walkDiagnosticChildren(v.Text, out)
	case *ast.Image:
		checkLink(v.URL, v.Sp, out)
	case *ast.ReferenceLink:
		walkDiagnosticChildren(v.Text, out)
	case *ast.InlineFootnoteRef:
		walkDiagnosticChildren(v.Content, out)
	}
}

func walkDiagnosticChildren(children []ast.Node, out *[]Diagnostic) {
	for _, c := range children {
		walkDiagnostic(c, out)
	}
}

func checkHeading(h *ast.Heading, out *[]Diagnostic) {
	if h.Level > 6 {
		*out = append(*out, Diagnostic{Span: h.Sp, Severity: SeverityError, Message: "Invalid heading level"})
	}
	text := plainText(h.Content)
	if strings.TrimSpace(text) == "" {
		*out = append(*out, Diagnostic{Span: h.Sp, Severity: SeverityWarning, Message: "Empty heading text"})
		return
	}
	first := firstRune(text)
	if first != 0 && !unicode.IsUpper(first) && unicode.IsLetter(first) {
		*out = append(*out, Diagnostic{Span: h.Sp, Severity: SeverityHint, Message: "Heading does not start with uppercase"})
	}
}

func checkLink(url string, sp span.Span, out *[]Diagnostic) {
	if strings.TrimSpace(url) == "" {
		*out = append(*out, Diagnostic{Span: sp, Severity: SeverityWarning, Message: "Link has empty URL"})
		return
	}
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "data:") {
		*out = append(*out, Diagnostic{Span: sp, Severity: SeverityWarning, Message: "Link uses unsafe protocol"})
		return
	}
	if strings.HasPrefix(lower, "http:") {
		*out = append(*out, Diagnostic{Span: sp, Severity: SeverityInfo, Message: "Prefer HTTPS"})
	}
}

func checkCodeBlock(c *ast.CodeBlock, out *[]Diagnostic) {
	if strings.TrimSpace(c.Content) == "" {
		*out = append(*out, Diagnostic{Span: c.Sp, Severity: SeverityInfo, Message: "Empty code block content"})
	}
	if c.Language == nil || strings.TrimSpace(*c.Language) == "" {
		*out = append(*out, Diagnostic{Span: c.Sp, Severity: SeverityHint, Message: "Code block has no language"})
	}
}

func checkInlineCode(c *ast.Code, out *[]Diagnostic) {
	if strings.TrimSpace(c.Content) == "" {
		*out = append(*out, Diagnostic{Span: c.Sp, Severity: SeverityInfo, Message: "Empty inline code"})
	}
}

func plainText(nodes []ast.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch v := n.(type) {
		case *ast.Text:
			sb.WriteString(v.Content)
		case *ast.Strong:
			sb.WriteString(plainText(v.Content))
		case *ast.Emphasis:
			sb.WriteString(plainText(v.Content))
		case *ast.Strikethrough:
			sb.WriteString(plainText(v.Content))
		case *ast.Code:
			sb.WriteString(v.Content)
		case *ast.EscapedChar:
			sb.WriteRune(v.Character)
		}
	}
	return sb.String()
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
