package lsp

import (
	"strconv"
	"strings"

	"github.com/JamieLittle16/marco/internal/span"
)

// CompletionKind classifies a suggested insertion.
type CompletionKind string

const (
	KindHeading    CompletionKind = "heading"
	KindCodeBlock  CompletionKind = "codeblock"
	KindCodeSpan   CompletionKind = "codespan"
	KindImage      CompletionKind = "image"
	KindLink       CompletionKind = "link"
	KindAutolink   CompletionKind = "autolink"
	KindEmphasis   CompletionKind = "emphasis"
	KindStrong     CompletionKind = "strong"
	KindCloseLink  CompletionKind = "close-link"
	KindHardBreak  CompletionKind = "hardbreak"
)

// CompletionItem is a single suggestion at the cursor.
type CompletionItem struct {
	Label      string
	Kind       CompletionKind
	InsertText string
}

// commonLanguages seeds the fenced-code-block completion list; it is
// not the grammar's language set (the grammar accepts any info
// string), just a curated shortlist for the editor's popup.
var commonLanguages = []string{"go", "javascript", "typescript", "python", "rust", "bash", "json", "yaml", "markdown", "sql"}

// Completions returns the ordered suggestion list for cursor within
// text, following the priority-ordered context list of spec §4.9. It
// never errors; an unrecognized context yields an empty slice.
func Completions(cursor span.Position, text string) []CompletionItem {
	offset := cursor.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	lineEnd := len(text)
	if nl := strings.IndexByte(text[offset:], '\n'); nl >= 0 {
		lineEnd = offset + nl
	}
	before := text[lineStart:offset]
	after := text[offset:lineEnd]
	fullLine := text[lineStart:lineEnd]

	// 1. Otherwise-blank line.
	if strings.TrimSpace(fullLine) == "" {
		return blankLineCompletions()
	}

	// 2. Cursor immediately after a bare #-prefix on an otherwise
	// empty line.
	if level := headingPrefixLevel(before); level > 0 && strings.TrimSpace(after) == "" {
		if level < 6 {
			return []CompletionItem{{
				Label:      "Continue to heading level " + strconv.Itoa(level+1),
				Kind:       KindHeading,
				InsertText: "#",
			}}
		}
		return nil
	}

	// 3. Unescaped ![ immediately before the cursor.
	if strings.HasSuffix(before, "![") && !escapedAt(before, len(before)-2) {
		return []CompletionItem{{Label: "Image", Kind: KindImage, InsertText: "alt](url)"}}
	}

	// 4. Unescaped [ not already opening a link we're still inside.
	if strings.HasSuffix(before, "[") && !escapedAt(before, len(before)-1) && !unclosedBracket(before[:len(before)-1]) {
		return []CompletionItem{{Label: "Link", Kind: KindLink, InsertText: "text](url)"}}
	}

	// 5. Unescaped < immediately before the cursor.
	if strings.HasSuffix(before, "<") && !escapedAt(before, len(before)-1) {
		return []CompletionItem{
			{Label: "Autolink URL", Kind: KindAutolink, InsertText: "https://example.com>"},
			{Label: "Autolink email", Kind: KindAutolink, InsertText: "user@example.com>"},
		}
	}

	// 6. Backtick run of length 1 or 3 immediately before the cursor.
	if n := trailingRun(before, '`'); n == 1 || n == 3 {
		if n == 1 {
			return []CompletionItem{{Label: "Code span", Kind: KindCodeSpan, InsertText: "code`"}}
		}
		return fencedCodeBlockCompletions()
	}

	// 7. `*`/`_` run of length 1 or 2 immediately before the cursor.
	if n := trailingRun(before, '*'); n == 1 || n == 2 {
		return emphasisCompletions(n, '*')
	}
	if n := trailingRun(before, '_'); n == 1 || n == 2 {
		return emphasisCompletions(n, '_')
	}

	// 8. Cursor inside an unclosed [ region.
	if unclosedBracket(before) {
		return []CompletionItem{{Label: "Close link", Kind: KindCloseLink, InsertText: "]"}}
	}

	// 9. End of a non-empty line not ending in a hard-break backslash.
	if offset == lineEnd && strings.TrimRight(before, " \t") != "" && !strings.HasSuffix(before, `\`) {
		return []CompletionItem{
			{Label: "Hard break (backslash)", Kind: KindHardBreak, InsertText: `\` + "\n"},
			{Label: "Hard break (trailing spaces)", Kind: KindHardBreak, InsertText: "  \n"},
		}
	}

	return nil
}

func blankLineCompletions() []CompletionItem {
	items := make([]CompletionItem, 0, 6+len(commonLanguages)+1)
	for level := 1; level <= 6; level++ {
		items = append(items, CompletionItem{
			Label:      "Heading " + strconv.Itoa(level),
			Kind:       KindHeading,
			InsertText: strings.Repeat("#", level) + " ",
		})
	}
	items = append(items, CompletionItem{Label: "Fenced code block (no language)", Kind: KindCodeBlock, InsertText: "```\n\n```"})
	for _, lang := range commonLanguages {
		items = append(items, CompletionItem{
			Label:      "Fenced code block (" + lang + ")",
			Kind:       KindCodeBlock,
			InsertText: "```" + lang + "\n\n```",
		})
	}
	return items
}

func fencedCodeBlockCompletions() []CompletionItem {
	items := make([]CompletionItem, 0, len(commonLanguages)+1)
	items = append(items, CompletionItem{Label: "no language", Kind: KindCodeBlock, InsertText: "\n\n```"})
	for _, lang := range commonLanguages {
		items = append(items, CompletionItem{Label: lang, Kind: KindCodeBlock, InsertText: lang + "\n\n```"})
	}
	return items
}

func emphasisCompletions(runLen int, ch byte) []CompletionItem {
	marker := strings.Repeat(string(ch), runLen)
	if runLen == 1 {
		return []CompletionItem{{Label: "Emphasis", Kind: KindEmphasis, InsertText: "text" + marker}}
	}
	return []CompletionItem{{Label: "Strong", Kind: KindStrong, InsertText: "text" + marker}}
}

// trailingRun counts how many times ch repeats immediately before the
// cursor, stopping at the first differing byte.
func trailingRun(s string, ch byte) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == ch; i-- {
		n++
	}
	return n
}

// unclosedBracket reports whether s (everything on the line before
// the cursor) has an unmatched opening [ that isn't part of a
// completed [text](url) or [text][label] construct.
func unclosedBracket(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			if !escapedAt(s, i) {
				depth++
			}
		case ']':
			if !escapedAt(s, i) && depth > 0 {
				depth--
			}
		}
	}
	return depth > 0
}

// headingPrefixLevel returns the heading level if s is exactly a run
// of 1-6 '#' characters (optionally with leading spaces, per
// CommonMark's up-to-3-space heading allowance), or 0 otherwise.
func headingPrefixLevel(s string) int {
	trimmed := strings.TrimLeft(s, " ")
	if len(s)-len(trimmed) > 3 {
		return 0
	}
	if trimmed == "" {
		return 0
	}
	for _, r := range trimmed {
		if r != '#' {
			return 0
		}
	}
	if len(trimmed) > 6 {
		return 0
	}
	return len(trimmed)
}

// escapedAt reports whether the byte at index i in s is escaped by an
// odd-length run of backslashes immediately preceding it.
func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
