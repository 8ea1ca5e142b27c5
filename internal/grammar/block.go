package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JamieLittle16/marco/internal/span"
)

// ParseError is returned by a recognizer that could not match at the
// current position; the driver treats it as "try the next
// alternative" rather than aborting (spec §4.3 "Parse errors are
// recoverable at block boundaries").
type ParseError struct {
	Rule    Rule
	Message string
}

func (e *ParseError) Error() string { return string(e.Rule) + ": " + e.Message }

// ParseBlocks runs the block-level driver over an entire document and
// returns the top-level grammar pairs. No recognizer reports an error:
// a line that no construct matches falls back to a paragraph, so the
// returned error slice is always empty.
func ParseBlocks(src string) ([]Pair, []error) {
	return parseBlockLines(splitLines(span.FromSource(src)))
}

// ParseBlocksAt runs the block-level driver over a Located input whose
// offset/line/column need not start at the document origin, so a
// chunked large-document pass (spec §4.6, §4.8) produces spans
// relative to the whole source rather than the chunk.
func ParseBlocksAt(loc span.Located) ([]Pair, []error) {
	return parseBlockLines(splitLines(loc))
}

// parseBlockLines is the recursive block driver: it is re-entered for
// the dedented content of block quotes.
func parseBlockLines(lines []line) ([]Pair, []error) {
	var pairs []Pair
	var errs []error
	i := 0
	for i < len(lines) {
		if lines[i].isBlank() {
			i++
			continue
		}

		if p, next, ok := recognizeFencedCode(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeSlideDeck(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeTabContainer(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeBlockQuote(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeATXHeading(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeThematicBreak(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeHTMLBlock(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeFootnoteDefinition(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeReferenceDefinition(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeTable(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeList(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}
		if p, next, ok := recognizeIndentedCode(lines, i); ok {
			pairs = append(pairs, p)
			i = next
			continue
		}

		p, next := recognizeParagraphOrSetext(lines, i)
		pairs = append(pairs, p)
		i = next
	}
	return pairs, errs
}

// ---- Thematic break ----

var thematicBreakRe = regexp.MustCompile(`^ {0,3}(?:(?:- *){3,}|(?:_ *){3,}|(?:\* *){3,})$`)

func recognizeThematicBreak(lines []line, i int) (Pair, int, bool) {
	l := lines[i]
	if !thematicBreakRe.MatchString(l.Text) {
		return Pair{}, 0, false
	}
	sp := span.FromLocated(l.Loc, l.end())
	return newPair(RuleThematicBreak, sp, l.Text), i + 1, true
}

// ---- ATX heading ----

var atxRe = regexp.MustCompile(`^ {0,3}(#{1,6})(?:\s+(.*?))?\s*$`)
var atxTrailingHashesRe = regexp.MustCompile(`\s+#+\s*$`)

func recognizeATXHeading(lines []line, i int) (Pair, int, bool) {
	l := lines[i]
	m := atxRe.FindStringSubmatch(l.Text)
	if m == nil {
		return Pair{}, 0, false
	}
	level := len(m[1])
	content := m[2]
	content = atxTrailingHashesRe.ReplaceAllString(" "+content, "")
	content = strings.TrimSpace(content)

	contentStart := strings.Index(l.Text, content)
	var contentLoc span.Located
	if contentStart >= 0 && content != "" {
		contentLoc = l.Loc.Advance(contentStart)
	} else {
		contentLoc = l.end()
	}
	sp := span.FromLocated(l.Loc, l.end())
	p := newPair(RuleHeadingATX, sp, l.Text).withMeta("level", strconv.Itoa(level))
	if content != "" {
		contentSpan := span.FromLocated(contentLoc, contentLoc.Advance(len(content)))
		p.Children = []Pair{newPair(RuleText, contentSpan, content)}
	}
	return p, i + 1, true
}

// ---- Setext heading / paragraph ----

var setextUnderlineRe = regexp.MustCompile(`^ {0,3}(=+|-+) *$`)
var looksLikeRefDef = regexp.MustCompile(`^\s*\[[^\]]+\]:\s*\S`)

func recognizeParagraphOrSetext(lines []line, i int) (Pair, int) {
	start := i
	j := i
	for j < len(lines) && !lines[j].isBlank() && !interruptsParagraph(lines, j, j > start) {
		j++
	}
	if j == start {
		j = start + 1 // always consume at least one line to guarantee progress
	}

	// Setext underline must immediately follow the paragraph content.
	if j < len(lines) {
		u := lines[j]
		if setextUnderlineRe.MatchString(u.Text) && !looksLikeRefDef.MatchString(lines[start].Text) {
			firstCtx := startsBlockquoteContext(lines[start].Text)
			underlineCtx := startsBlockquoteContext(u.Text)
			if firstCtx == underlineCtx {
				level := 2
				if strings.Contains(strings.TrimSpace(u.Text), "=") {
					level = 1
				}
				sp := span.FromLocated(lines[start].Loc, u.end())
				raw := joinLines(lines[start:j])
				p := newPair(RuleHeadingSetext, sp, raw).withMeta("level", strconv.Itoa(level))
				p.Children = []Pair{newPair(RuleText, span.FromLocated(lines[start].Loc, lines[j-1].end()), joinLines(lines[start:j]))}
				return p, j + 1
			}
		}
	}

	sp := span.FromLocated(lines[start].Loc, lines[j-1].end())
	raw := joinLines(lines[start:j])
	p := newPair(RuleParagraph, sp, raw)
	p.Children = []Pair{newPair(RuleText, sp, raw)}
	return p, j
}

// interruptsParagraph reports whether line k begins a construct that
// terminates an in-progress paragraph, per the common CommonMark
// "paragraph interrupt" rules this implementation supports.
func interruptsParagraph(lines []line, k int, pastFirst bool) bool {
	if !pastFirst {
		return false
	}
	l := lines[k]
	if atxRe.MatchString(l.Text) {
		return true
	}
	if thematicBreakRe.MatchString(l.Text) {
		return true
	}
	if startsBlockquoteContext(l.Text) {
		return true
	}
	if isFenceOpen(l.Text) != "" {
		return true
	}
	if listMarkerRe.MatchString(l.Text) {
		return true
	}
	return false
}

func joinLines(ls []line) string {
	parts := make([]string, len(ls))
	for i, l := range ls {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// ---- Fenced code block ----

var fenceOpenRe = regexp.MustCompile("^( {0,3})(`{3,}|~{3,})[ \t]*(.*?)[ \t]*$")

// isFenceOpen returns the fence character+length prefix if l opens a
// fence, or "" otherwise. Used by paragraph-interrupt and by the
// slide-deck/tab-container separator-suppression logic.
func isFenceOpen(text string) string {
	m := fenceOpenRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[2]
}

func recognizeFencedCode(lines []line, i int) (Pair, int, bool) {
	l := lines[i]
	m := fenceOpenRe.FindStringSubmatch(l.Text)
	if m == nil {
		return Pair{}, 0, false
	}
	fenceChar := m[2][0]
	fenceLen := len(m[2])
	info := strings.TrimSpace(m[3])
	if strings.ContainsRune(info, ' ') {
		info = strings.Fields(info)[0]
	}

	j := i + 1
	var contentLines []line
	closed := false
	for j < len(lines) {
		t := lines[j].Text
		trimmed := strings.TrimLeft(t, " ")
		if len(trimmed) >= fenceLen && strings.Count(trimmed, string(fenceChar)) == len(strings.TrimRight(trimmed, " \t")) &&
			strings.TrimRight(trimmed, " \t") == strings.Repeat(string(fenceChar), len(strings.TrimRight(trimmed, " \t"))) &&
			len(strings.TrimRight(trimmed, " \t")) >= fenceLen && leadingSpaces(t) <= 3 {
			closed = true
			j++
			break
		}
		contentLines = append(contentLines, lines[j])
		j++
	}
	if !closed {
		j = len(lines)
	}

	var sb strings.Builder
	for k, cl := range contentLines {
		if k > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(cl.Text)
	}

	end := l.end()
	if j > i {
		if j-1 < len(lines) {
			end = lines[j-1].end()
		}
	}
	sp := span.FromLocated(l.Loc, end)
	p := newPair(RuleCodeFenced, sp, sb.String())
	if info != "" {
		p = p.withMeta("language", info)
	}
	return p, j, true
}

// ---- Indented code block ----

func recognizeIndentedCode(lines []line, i int) (Pair, int, bool) {
	if !isIndentedCodeLine(lines[i].Text) {
		return Pair{}, 0, false
	}
	j := i
	var contentLines []string
	lastContent := i
	for j < len(lines) {
		if lines[j].isBlank() {
			contentLines = append(contentLines, "")
			j++
			continue
		}
		if !isIndentedCodeLine(lines[j].Text) {
			break
		}
		contentLines = append(contentLines, stripIndentedPrefix(lines[j].Text))
		lastContent = j
		j++
	}
	for len(contentLines) > 0 && contentLines[len(contentLines)-1] == "" {
		contentLines = contentLines[:len(contentLines)-1]
	}
	end := lines[lastContent].end()
	sp := span.FromLocated(lines[i].Loc, end)
	return newPair(RuleCodeIndented, sp, strings.Join(contentLines, "\n")), lastContent + 1, true
}

func isIndentedCodeLine(s string) bool {
	if strings.HasPrefix(s, "\t") {
		return true
	}
	return leadingSpaces(s) >= 4
}

func stripIndentedPrefix(s string) string {
	if strings.HasPrefix(s, "\t") {
		return s[1:]
	}
	n := leadingSpaces(s)
	if n > 4 {
		n = 4
	}
	return s[n:]
}

// ---- Reference definition ----

var refDefRe = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:\s*(\S+)(?:\s+("[^"]*"|'[^']*'|\([^)]*\)))?\s*$`)

func recognizeReferenceDefinition(lines []line, i int) (Pair, int, bool) {
	m := refDefRe.FindStringSubmatch(lines[i].Text)
	if m == nil {
		return Pair{}, 0, false
	}
	label := strings.ToLower(strings.TrimSpace(m[1]))
	url := m[2]
	var title string
	if m[3] != "" {
		title = m[3][1 : len(m[3])-1]
	}
	sp := span.FromLocated(lines[i].Loc, lines[i].end())
	p := newPair(RuleReferenceDefinition, sp, lines[i].Text).
		withMeta("label", label).withMeta("url", url)
	if m[3] != "" {
		p = p.withMeta("title", title)
	}
	return p, i + 1, true
}

// ---- HTML block ----

var htmlBlockStartRe = regexp.MustCompile(`^ {0,3}</?[A-Za-z][A-Za-z0-9-]*(?:\s[^>]*)?/?>`)
var htmlCommentStartRe = regexp.MustCompile(`^ {0,3}<!--`)

// recognizeHTMLBlock matches a run of lines opening with a raw HTML
// tag or comment, consumed through the next blank line. This covers
// the common case (a standalone block of embedded HTML) rather than
// CommonMark's full seven-way HTML-block classification.
func recognizeHTMLBlock(lines []line, i int) (Pair, int, bool) {
	l := lines[i].Text
	if !htmlBlockStartRe.MatchString(l) && !htmlCommentStartRe.MatchString(l) {
		return Pair{}, 0, false
	}
	j := i + 1
	for j < len(lines) && !lines[j].isBlank() {
		j++
	}
	sp := span.FromLocated(lines[i].Loc, lines[j-1].end())
	return newPair(RuleHTMLBlock, sp, joinLines(lines[i:j])), j, true
}

// ---- Footnote definition ----

var footnoteDefRe = regexp.MustCompile(`^ {0,3}\[\^([^\]]+)\]:\s*(.*)$`)

func recognizeFootnoteDefinition(lines []line, i int) (Pair, int, bool) {
	m := footnoteDefRe.FindStringSubmatch(lines[i].Text)
	if m == nil {
		return Pair{}, 0, false
	}
	label := strings.ToLower(strings.TrimSpace(m[1]))
	contentOffset := strings.Index(lines[i].Text, m[2])
	j := i + 1
	for j < len(lines) && !lines[j].isBlank() && leadingSpaces(lines[j].Text) >= 4 {
		j++
	}
	raw := m[2]
	for k := i + 1; k < j; k++ {
		raw += "\n" + stripIndentedPrefix(lines[k].Text)
	}
	sp := span.FromLocated(lines[i].Loc, lines[j-1].end())
	contentLoc := lines[i].Loc.Advance(contentOffset)
	p := newPair(RuleFootnoteDefinition, sp, raw).withMeta("label", label)
	p.Children = []Pair{newPair(RuleText, span.FromLocated(contentLoc, lines[i].end()), m[2])}
	return p, j, true
}

// ---- Block quote ----

func recognizeBlockQuote(lines []line, i int) (Pair, int, bool) {
	if !startsBlockquoteContext(lines[i].Text) {
		return Pair{}, 0, false
	}
	j := i
	var inner []line
	for j < len(lines) && startsBlockquoteContext(lines[j].Text) {
		content, stripped := stripBlockquotePrefix(lines[j])
		_ = stripped
		inner = append(inner, content)
		j++
	}
	children, _ := parseBlockLines(inner)
	sp := span.FromLocated(lines[i].Loc, lines[j-1].end())
	p := newPair(RuleBlockQuote, sp, joinLines(lines[i:j]))
	p.Children = children
	return p, j, true
}

func stripBlockquotePrefix(l line) (line, int) {
	n := leadingSpaces(l.Text)
	// l.Text[n] == '>' (checked by startsBlockquoteContext)
	skip := n + 1
	if skip < len(l.Text) && l.Text[skip] == ' ' {
		skip++
	}
	return line{Text: l.Text[skip:], Loc: l.Loc.Advance(skip), HasNL: l.HasNL}, skip
}

// ---- List ----

var listMarkerRe = regexp.MustCompile(`^( {0,3})([-+*]|\d{1,9}[.)])( +|$)(.*)$`)

func recognizeList(lines []line, i int) (Pair, int, bool) {
	m := listMarkerRe.FindStringSubmatch(lines[i].Text)
	if m == nil {
		return Pair{}, 0, false
	}
	marker := m[2]
	ordered := marker[0] >= '0' && marker[0] <= '9'

	j := i
	var items []Pair
	for j < len(lines) {
		if lines[j].isBlank() {
			// allow a single blank line between items (loose list); two
			// blanks or a non-matching follow-up line ends the list.
			if j+1 >= len(lines) || !listMarkerRe.MatchString(lines[j+1].Text) {
				break
			}
			j++
			continue
		}
		im := listMarkerRe.FindStringSubmatch(lines[j].Text)
		if im == nil {
			break
		}
		itemOrdered := im[2][0] >= '0' && im[2][0] <= '9'
		if itemOrdered != ordered {
			break
		}
		item, next := recognizeListItem(lines, j)
		items = append(items, item)
		j = next
	}
	if len(items) == 0 {
		return Pair{}, 0, false
	}
	sp := span.FromLocated(lines[i].Loc, lines[j-1].end())
	p := newPair(RuleList, sp, joinLines(lines[i:j]))
	if ordered {
		p = p.withMeta("ordered", "true")
	} else {
		p = p.withMeta("ordered", "false")
	}
	p.Children = items
	return p, j, true
}

var taskItemRe = regexp.MustCompile(`^\[( |x|X)\]\s+(.*)$`)

func recognizeListItem(lines []line, i int) (Pair, int) {
	m := listMarkerRe.FindStringSubmatch(lines[i].Text)
	markerWidth := len(m[1]) + len(m[2]) + 1
	if len(m[3]) > 1 {
		markerWidth = len(m[1]) + len(m[2]) + len(m[3])
	}
	firstContent := m[4]

	var checked *bool
	if tm := taskItemRe.FindStringSubmatch(firstContent); tm != nil {
		c := tm[1] == "x" || tm[1] == "X"
		checked = &c
		firstContent = tm[2]
	}

	contentOffset := len(lines[i].Text) - len(firstContent)
	firstLoc := lines[i].Loc.Advance(contentOffset)
	itemLines := []line{{Text: firstContent, Loc: firstLoc, HasNL: lines[i].HasNL}}

	j := i + 1
	for j < len(lines) {
		if lines[j].isBlank() {
			break
		}
		if leadingSpaces(lines[j].Text) < markerWidth {
			break
		}
		if listMarkerRe.MatchString(lines[j].Text) {
			break
		}
		stripped := lines[j].Text[markerWidth:]
		itemLines = append(itemLines, line{Text: stripped, Loc: lines[j].Loc.Advance(markerWidth), HasNL: lines[j].HasNL})
		j++
	}

	children, _ := parseBlockLines(itemLines)
	end := lines[i].end()
	if j > i {
		end = lines[j-1].end()
	}
	sp := span.FromLocated(lines[i].Loc, end)
	p := newPair(RuleListItem, sp, joinLines(lines[i:j]))
	if checked != nil {
		if *checked {
			p = p.withMeta("checked", "true")
		} else {
			p = p.withMeta("checked", "false")
		}
	}
	p.Children = children
	return p, j
}
