package grammar

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JamieLittle16/marco/internal/span"
)

// TokenizeInline implements the inline tokenizer of spec §4.3: it
// turns paragraph-like content into a tree of inline Pairs, applying
// the CommonMark emphasis delimiter-run rules as a post-tokenization
// pass (spec §9) rather than trying to express flanking in the
// recognizers themselves.
func TokenizeInline(loc span.Located) []Pair {
	items := scanItems(loc)
	items = resolveEmphasis(items)
	return itemsToPairs(items)
}

// ---- flanking classification ----

func isASCIIPunct(b byte) bool {
	switch {
	case b >= '!' && b <= '/':
		return true
	case b >= ':' && b <= '@':
		return true
	case b >= '[' && b <= '`':
		return true
	case b >= '{' && b <= '~':
		return true
	}
	return false
}

// classifyAt reports whether the rune at byte index idx of text is
// whitespace or punctuation; an out-of-range index counts as
// whitespace, per spec §4.3 "End-of-text counts as whitespace".
func classifyAt(text string, idx int) (isWS, isPunct bool) {
	if idx < 0 || idx >= len(text) {
		return true, false
	}
	r, size := utf8.DecodeRuneInString(text[idx:])
	if size == 1 && r < 128 {
		if unicode.IsSpace(r) {
			return true, false
		}
		return false, isASCIIPunct(text[idx])
	}
	if unicode.IsSpace(r) {
		return true, false
	}
	return false, unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// ---- item model ----

type itemKind int

const (
	kindText itemKind = iota
	kindDelim
	kindNode
)

type item struct {
	kind     itemKind
	text     string
	loc      span.Located // start position of this item
	ch       byte         // '*' or '_' for kindDelim
	length   int          // remaining run length for kindDelim
	canOpen  bool
	canClose bool
	pair     Pair
}

func itemText(s string, loc span.Located) item {
	return item{kind: kindText, text: s, loc: loc}
}

func itemFromPair(p Pair, loc span.Located) item {
	return item{kind: kindNode, pair: p, loc: loc}
}

// scanItems performs a single forward pass recognizing code spans,
// links, images, autolinks, escapes, platform mentions, footnote
// references, strikethrough, and line breaks eagerly, and collecting
// runs of `*`/`_` as delimiter items, with flanking pre-computed
// against the original (unconsumed) text window.
func scanItems(loc span.Located) []item {
	orig := loc.Text
	var items []item
	pos := 0 // byte offset into orig
	var textBuf strings.Builder
	textStart := 0

	flushText := func() {
		if textBuf.Len() > 0 {
			items = append(items, itemText(textBuf.String(), loc.Advance(textStart)))
			textBuf.Reset()
		}
	}

	for pos < len(orig) {
		c := orig[pos]

		switch {
		case c == '\\' && pos+1 < len(orig) && isASCIIPunct(orig[pos+1]):
			flushText()
			r, size := utf8.DecodeRuneInString(orig[pos+1:])
			start := loc.Advance(pos)
			items = append(items, itemFromPair(
				newPair(RuleEscapedChar, span.FromLocated(start, loc.Advance(pos+1+size)), orig[pos:pos+1+size]).withMeta("char", string(r)),
				start))
			pos += 1 + size
			textStart = pos
			continue

		case c == '\n':
			flushText()
			hard := strings.HasSuffix(orig[:pos], "  ")
			rule := RuleLineBreakSoft
			if hard {
				rule = RuleLineBreakHard
			}
			start := loc.Advance(pos)
			items = append(items, itemFromPair(newPair(rule, span.FromLocated(start, loc.Advance(pos+1)), "\n"), start))
			pos++
			textStart = pos
			continue

		case c == '`':
			if p, next, ok := scanCodeSpan(orig, pos, loc); ok {
				flushText()
				items = append(items, itemFromPair(p, loc.Advance(pos)))
				pos = next
				textStart = pos
				continue
			}

		case c == '<':
			if p, next, ok := scanAutolink(orig, pos, loc); ok {
				flushText()
				items = append(items, itemFromPair(p, loc.Advance(pos)))
				pos = next
				textStart = pos
				continue
			}

		case c == '!' && pos+1 < len(orig) && orig[pos+1] == '[':
			if p, next, ok := scanImage(orig, pos, loc); ok {
				flushText()
				items = append(items, itemFromPair(p, loc.Advance(pos)))
				pos = next
				textStart = pos
				continue
			}

		case c == '[':
			if p, next, ok := scanFootnoteRef(orig, pos, loc); ok {
				flushText()
				items = append(items, itemFromPair(p, loc.Advance(pos)))
				pos = next
				textStart = pos
				continue
			}
			if p, next, ok := scanLink(orig, pos, loc); ok {
				flushText()
				items = append(items, itemFromPair(p, loc.Advance(pos)))
				pos = next
				textStart = pos
				continue
			}

		case c == '@':
			if p, next, ok := scanPlatformMention(orig, pos, loc); ok {
				flushText()
				items = append(items, itemFromPair(p, loc.Advance(pos)))
				pos = next
				textStart = pos
				continue
			}

		case c == '^' && pos+1 < len(orig) && orig[pos+1] == '[':
			if p, next, ok := scanInlineFootnote(orig, pos, loc); ok {
				flushText()
				items = append(items, itemFromPair(p, loc.Advance(pos)))
				pos = next
				textStart = pos
				continue
			}

		case c == '~' && pos+1 < len(orig) && orig[pos+1] == '~':
			if p, next, ok := scanStrikethrough(orig, pos, loc); ok {
				flushText()
				items = append(items, itemFromPair(p, loc.Advance(pos)))
				pos = next
				textStart = pos
				continue
			}

		case c == '*' || c == '_':
			flushText()
			run := 0
			for pos+run < len(orig) && orig[pos+run] == c {
				run++
			}
			items = append(items, buildDelimItem(orig, pos, run, c, loc))
			pos += run
			textStart = pos
			continue
		}

		r, size := utf8.DecodeRuneInString(orig[pos:])
		if size == 0 {
			size = 1
		}
		textBuf.WriteRune(r)
		pos += size
	}
	flushText()
	return items
}

// buildDelimItem computes left/right flanking for the run
// orig[pos:pos+run] and derives canOpen/canClose per the `*`/`_`
// rules of spec §4.3.
func buildDelimItem(orig string, pos, run int, ch byte, loc span.Located) item {
	beforeWS, beforePunct := classifyAt(orig, pos-1)
	afterWS, afterPunct := classifyAt(orig, pos+run)

	leftFlanking := !afterWS && (!afterPunct || beforeWS || beforePunct)
	rightFlanking := !beforeWS && (!beforePunct || afterWS || afterPunct)

	var canOpen, canClose bool
	if ch == '*' {
		canOpen = leftFlanking
		canClose = rightFlanking
	} else {
		canOpen = leftFlanking && (!rightFlanking || beforePunct)
		canClose = rightFlanking && (!leftFlanking || afterPunct)
	}

	return item{
		kind: kindDelim, ch: ch, length: run, loc: loc.Advance(pos),
		text: orig[pos : pos+run], canOpen: canOpen, canClose: canClose,
	}
}

// resolveEmphasis matches delimiter runs left to right against the
// nearest compatible still-open opener, building Strong/Emphasis
// nodes as matches are found (a simplified single-pass variant of
// CommonMark's delimiter-stack algorithm: it omits the "multiple of
// 3" rule, which only matters for exotic mixed-length runs). After a
// match, whatever length remains of the closing run is emitted as
// literal text and is not matched against an earlier opener. Openers
// left unmatched at the end are demoted back to literal text.
func resolveEmphasis(items []item) []item {
	var out []item
	var openers []int // indices into out

	for _, it := range items {
		if it.kind != kindDelim || (it.ch != '*' && it.ch != '_') {
			out = append(out, it)
			continue
		}

		if it.canClose {
			matchedAt := -1
			for k := len(openers) - 1; k >= 0; k-- {
				oi := openers[k]
				if out[oi].ch == it.ch && out[oi].canOpen && out[oi].length > 0 {
					matchedAt = k
					break
				}
			}
			if matchedAt >= 0 {
				openerIdx := openers[matchedAt]
				openerLoc := out[openerIdx].loc
				matchLen := 1
				if out[openerIdx].length >= 2 && it.length >= 2 {
					matchLen = 2
				}
				inner := append([]item{}, out[openerIdx+1:]...)
				out[openerIdx].length -= matchLen
				it.length -= matchLen

				rule := RuleEmphasis
				if matchLen == 2 {
					rule = RuleStrong
				}
				sp := span.FromLocated(out[openerIdx].loc, it.loc.Advance(matchLen))
				node := newPair(rule, sp, "")
				node.Children = itemsToPairs(inner)

				if out[openerIdx].length == 0 {
					out = out[:openerIdx]
					openers = openers[:matchedAt]
				} else {
					out = out[:openerIdx+1]
					openers = openers[:matchedAt+1]
				}
				out = append(out, itemFromPair(node, openerLoc))
				if it.length > 0 {
					out = append(out, item{kind: kindText, text: strings.Repeat(string(it.ch), it.length), loc: it.loc})
				}
				continue
			}
		}

		if it.canOpen {
			out = append(out, it)
			openers = append(openers, len(out)-1)
			continue
		}

		out = append(out, item{kind: kindText, text: it.text, loc: it.loc})
	}

	for _, oi := range openers {
		if out[oi].kind == kindDelim && out[oi].length > 0 {
			out[oi] = item{kind: kindText, text: strings.Repeat(string(out[oi].ch), out[oi].length), loc: out[oi].loc}
		}
	}
	return out
}

func itemsToPairs(items []item) []Pair {
	var pairs []Pair
	// addText merges literal text into the previous Text pair when the
	// two are adjacent in the source, so a run such as `_foo_bar` whose
	// delimiters stay literal becomes a single Text pair.
	addText := func(s string, loc span.Located) {
		sp := span.FromLocated(loc, loc.Advance(len(s)))
		if n := len(pairs); n > 0 && pairs[n-1].Rule == RuleText && pairs[n-1].Span.End.Offset == sp.Start.Offset {
			pairs[n-1].Raw += s
			pairs[n-1].Span.End = sp.End
			return
		}
		pairs = append(pairs, newPair(RuleText, sp, s))
	}
	for _, it := range items {
		switch it.kind {
		case kindText:
			if it.text == "" {
				continue
			}
			addText(it.text, it.loc)
		case kindNode:
			pairs = append(pairs, it.pair)
		case kindDelim:
			if it.length <= 0 {
				continue
			}
			addText(strings.Repeat(string(it.ch), it.length), it.loc)
		}
	}
	return pairs
}
