package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/JamieLittle16/marco/internal/builder"
	"github.com/JamieLittle16/marco/internal/grammar"
	"github.com/JamieLittle16/marco/internal/span"
)

func zeroDocSpan() span.Span { return span.Zero }

func TestHTMLEscaping(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{"plain text", "Hello, world!", "<p>Hello, world!</p>\n"},
		{"bold text", "This is **bold** text", "<p>This is <strong>bold</strong> text</p>\n"},
		{"italic text", "This is *italic* text", "<p>This is <em>italic</em> text</p>\n"},
		{"escapes ampersand", "A & B", "<p>A &amp; B</p>\n"},
		{"escapes angle brackets", "1 < 2", "<p>1 &lt; 2</p>\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := renderHTMLDoc(t, test.markdown)
			if got != test.expected {
				t.Errorf("expected %q, got %q", test.expected, got)
			}
		})
	}
}

func renderHTMLDoc(t *testing.T, src string) string {
	t.Helper()
	pairs, _ := grammar.ParseBlocks(src)
	doc, _ := builder.BuildDocument(pairs, zeroDocSpan())
	return HTML(doc)
}

func TestHTMLHeadingLevels(t *testing.T) {
	got := renderHTMLDoc(t, "# One\n## Two\n### Three\n")
	for _, want := range []string{"<h1>One</h1>", "<h2>Two</h2>", "<h3>Three</h3>"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}

func TestHTMLFencedCodeBlockWithLanguage(t *testing.T) {
	got := renderHTMLDoc(t, "```go\nfmt.Println(1)\n```\n")
	want := `<pre><code class="go">fmt.Println(1)</code></pre>`
	if !strings.Contains(got, want) {
		t.Errorf("expected %q in %q", want, got)
	}
}

func TestHTMLTaskListCheckbox(t *testing.T) {
	got := renderHTMLDoc(t, "- [x] done\n- [ ] todo\n")
	if !strings.Contains(got, `<input type="checkbox" disabled checked/>`) {
		t.Errorf("expected checked checkbox markup, got %q", got)
	}
	if !strings.Contains(got, `<input type="checkbox" disabled/>`) {
		t.Errorf("expected unchecked checkbox markup, got %q", got)
	}
}

func TestHTMLTableAlignment(t *testing.T) {
	src := "| A | B |\n| :-- | --: |\n| 1 | 2 |\n"
	got := renderHTMLDoc(t, src)
	if !strings.Contains(got, `style="text-align:left"`) || !strings.Contains(got, `style="text-align:right"`) {
		t.Errorf("expected alignment styles in %q", got)
	}
}

func TestHTMLIdempotentOnReparse(t *testing.T) {
	src := "# Title\n\nSome **bold** and *italic* text with a [link](https://example.com).\n"
	first := renderHTMLDoc(t, src)
	second := renderHTMLDoc(t, first)
	if first != second {
		t.Errorf("expected stable re-render, first=%q second=%q", first, second)
	}
}

func TestHTMLUnresolvedReferenceLinkRendersLiteralBrackets(t *testing.T) {
	got := renderHTMLDoc(t, "[foo][missing]\n")
	if !strings.Contains(got, "[foo][missing]") {
		t.Errorf("expected literal bracket fallback, got %q", got)
	}
}

func TestJSONRoundTripsSpans(t *testing.T) {
	pairs, _ := grammar.ParseBlocks("# Title\n")
	doc, _ := builder.BuildDocument(pairs, zeroDocSpan())
	data, err := JSONCompact(doc)
	if err != nil {
		t.Fatalf("JSONCompact: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "document" {
		t.Errorf("expected document type, got %v", decoded["type"])
	}
	children, ok := decoded["children"].([]interface{})
	if !ok || len(children) != 1 {
		t.Fatalf("expected 1 child, got %#v", decoded["children"])
	}
	heading := children[0].(map[string]interface{})
	if heading["type"] != "heading" {
		t.Errorf("expected heading type, got %v", heading["type"])
	}
	spanField, ok := heading["span"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected span object, got %#v", heading["span"])
	}
	if _, ok := spanField["start"]; !ok {
		t.Error("expected span.start field")
	}
}

func TestJSONPrettyIndents(t *testing.T) {
	pairs, _ := grammar.ParseBlocks("hi\n")
	doc, _ := builder.BuildDocument(pairs, zeroDocSpan())
	data, err := JSONPretty(doc)
	if err != nil {
		t.Fatalf("JSONPretty: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Errorf("expected indented JSON, got %q", data)
	}
}
