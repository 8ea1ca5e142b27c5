package grammar

import (
	"regexp"
	"strings"

	"github.com/JamieLittle16/marco/internal/span"
)

// scanCodeSpan recognizes a run of one or more backticks as a code
// span delimiter and looks for a closing run of the same length.
func scanCodeSpan(orig string, pos int, loc span.Located) (Pair, int, bool) {
	n := 0
	for pos+n < len(orig) && orig[pos+n] == '`' {
		n++
	}
	search := pos + n
	for search < len(orig) {
		idx := strings.IndexByte(orig[search:], '`')
		if idx < 0 {
			return Pair{}, 0, false
		}
		closeStart := search + idx
		closeLen := 0
		for closeStart+closeLen < len(orig) && orig[closeStart+closeLen] == '`' {
			closeLen++
		}
		if closeLen == n {
			content := orig[pos+n : closeStart]
			content = strings.ReplaceAll(content, "\n", " ")
			if strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.TrimSpace(content) != "" {
				content = content[1 : len(content)-1]
			}
			sp := span.FromLocated(loc.Advance(pos), loc.Advance(closeStart+closeLen))
			return newPair(RuleCodeSpan, sp, content), closeStart + closeLen, true
		}
		search = closeStart + closeLen
	}
	return Pair{}, 0, false
}

var autolinkURLRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]{1,31}:[^<> \t\n]*$`)
var autolinkEmailRe = regexp.MustCompile(`^[A-Za-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`)

func scanAutolink(orig string, pos int, loc span.Located) (Pair, int, bool) {
	idx := strings.IndexByte(orig[pos:], '>')
	if idx < 0 {
		return Pair{}, 0, false
	}
	inner := orig[pos+1 : pos+idx]
	if strings.ContainsAny(inner, " \t\n<") || inner == "" {
		return Pair{}, 0, false
	}
	isURL := autolinkURLRe.MatchString(inner)
	isEmail := autolinkEmailRe.MatchString(inner)
	if !isURL && !isEmail {
		return Pair{}, 0, false
	}
	url := inner
	if isEmail {
		url = "mailto:" + inner
	}
	sp := span.FromLocated(loc.Advance(pos), loc.Advance(pos+idx+1))
	p := newPair(RuleAutolink, sp, inner).withMeta("url", url)
	return p, pos + idx + 1, true
}

// findMatchingBracket finds the index of the ']' matching the '['
// at orig[pos], respecting escapes and nested brackets.
func findMatchingBracket(orig string, pos int) int {
	depth := 0
	for i := pos; i < len(orig); i++ {
		switch {
		case orig[i] == '\\' && i+1 < len(orig):
			i++
		case orig[i] == '[':
			depth++
		case orig[i] == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var inlineDestTitleRe = regexp.MustCompile(`^\(\s*(\S*?)(?:\s+"([^"]*)")?\s*\)`)

func scanLink(orig string, pos int, loc span.Located) (Pair, int, bool) {
	close := findMatchingBracket(orig, pos)
	if close < 0 {
		return Pair{}, 0, false
	}
	text := orig[pos+1 : close]
	rest := orig[close+1:]

	if strings.HasPrefix(rest, "(") {
		if m := inlineDestTitleRe.FindStringSubmatch(rest); m != nil {
			textLoc := loc.Advance(pos + 1)
			children := TokenizeInline(span.Located{Text: text, Offset: textLoc.Offset, Line: textLoc.Line, Column: textLoc.Column})
			sp := span.FromLocated(loc.Advance(pos), loc.Advance(close+1+len(m[0])))
			p := newPair(RuleLink, sp, text)
			p.Children = children
			p = p.withMeta("url", m[1])
			if m[2] != "" {
				p = p.withMeta("title", m[2])
			}
			return p, close + 1 + len(m[0]), true
		}
	}

	label := text
	next := close + 1
	if strings.HasPrefix(rest, "[") {
		labelClose := findMatchingBracket(rest, 0)
		if labelClose > 0 {
			label = rest[1:labelClose]
			next = close + 1 + labelClose + 1
		} else if labelClose == 0 {
			next = close + 1 + 1
		}
	}
	if strings.TrimSpace(label) == "" {
		label = text
	}
	textLoc := loc.Advance(pos + 1)
	children := TokenizeInline(span.Located{Text: text, Offset: textLoc.Offset, Line: textLoc.Line, Column: textLoc.Column})
	sp := span.FromLocated(loc.Advance(pos), loc.Advance(next))
	p := newPair(RuleReferenceLink, sp, text).withMeta("label", strings.ToLower(strings.TrimSpace(label)))
	p.Children = children
	return p, next, true
}

func scanImage(orig string, pos int, loc span.Located) (Pair, int, bool) {
	bracketPos := pos + 1 // orig[pos]=='!', orig[pos+1]=='['
	close := findMatchingBracket(orig, bracketPos)
	if close < 0 {
		return Pair{}, 0, false
	}
	alt := orig[bracketPos+1 : close]
	rest := orig[close+1:]

	if strings.HasPrefix(rest, "(") {
		if m := inlineDestTitleRe.FindStringSubmatch(rest); m != nil {
			sp := span.FromLocated(loc.Advance(pos), loc.Advance(close+1+len(m[0])))
			p := newPair(RuleImage, sp, alt).withMeta("alt", alt).withMeta("url", m[1])
			if m[2] != "" {
				p = p.withMeta("title", m[2])
			}
			return p, close + 1 + len(m[0]), true
		}
	}

	label := alt
	next := close + 1
	if strings.HasPrefix(rest, "[") {
		labelClose := findMatchingBracket(rest, 0)
		if labelClose > 0 {
			label = rest[1:labelClose]
			next = close + 1 + labelClose + 1
		}
	}
	sp := span.FromLocated(loc.Advance(pos), loc.Advance(next))
	p := newPair(RuleReferenceImage, sp, alt).withMeta("alt", alt).withMeta("label", strings.ToLower(strings.TrimSpace(label)))
	return p, next, true
}

var footnoteRefRe = regexp.MustCompile(`^\[\^([^\]]+)\]`)

func scanFootnoteRef(orig string, pos int, loc span.Located) (Pair, int, bool) {
	m := footnoteRefRe.FindStringSubmatch(orig[pos:])
	if m == nil {
		return Pair{}, 0, false
	}
	// A trailing ':' makes this a footnote *definition*, handled at
	// block level instead.
	if pos+len(m[0]) < len(orig) && orig[pos+len(m[0])] == ':' {
		return Pair{}, 0, false
	}
	sp := span.FromLocated(loc.Advance(pos), loc.Advance(pos+len(m[0])))
	p := newPair(RuleFootnoteRef, sp, m[0]).withMeta("label", strings.ToLower(m[1]))
	return p, pos + len(m[0]), true
}

func scanStrikethrough(orig string, pos int, loc span.Located) (Pair, int, bool) {
	end := strings.Index(orig[pos+2:], "~~")
	if end < 0 {
		return Pair{}, 0, false
	}
	content := orig[pos+2 : pos+2+end]
	if content == "" {
		return Pair{}, 0, false
	}
	contentLoc := loc.Advance(pos + 2)
	children := TokenizeInline(span.Located{Text: content, Offset: contentLoc.Offset, Line: contentLoc.Line, Column: contentLoc.Column})
	sp := span.FromLocated(loc.Advance(pos), loc.Advance(pos+2+end+2))
	p := newPair(RuleStrikethrough, sp, content)
	p.Children = children
	return p, pos + 2 + end + 2, true
}

// scanInlineFootnote recognizes the `^[content]` inline-footnote
// extension (content given inline rather than via a referenced
// definition), producing an InlineFootnoteRef node.
func scanInlineFootnote(orig string, pos int, loc span.Located) (Pair, int, bool) {
	close := findMatchingBracket(orig, pos+1)
	if close < 0 {
		return Pair{}, 0, false
	}
	content := orig[pos+2 : close]
	contentLoc := loc.Advance(pos + 2)
	children := TokenizeInline(span.Located{Text: content, Offset: contentLoc.Offset, Line: contentLoc.Line, Column: contentLoc.Column})
	sp := span.FromLocated(loc.Advance(pos), loc.Advance(close+1))
	p := newPair(RuleInlineFootnote, sp, content)
	p.Children = children
	return p, close + 1, true
}

var platformMentionRe = regexp.MustCompile(`^@([A-Za-z0-9_.\-]{1,128})\[([A-Za-z0-9_\-]{1,64})\](?:\(([^)]{0,256})\))?`)

// scanPlatformMention implements the Marco `@username[platform](display)`
// inline extension (spec §4.3).
func scanPlatformMention(orig string, pos int, loc span.Located) (Pair, int, bool) {
	m := platformMentionRe.FindStringSubmatch(orig[pos:])
	if m == nil {
		return Pair{}, 0, false
	}
	sp := span.FromLocated(loc.Advance(pos), loc.Advance(pos+len(m[0])))
	p := newPair(RulePlatformMention, sp, m[0]).
		withMeta("username", m[1]).
		withMeta("platform", strings.ToLower(m[2]))
	if m[3] != "" {
		p = p.withMeta("display", strings.TrimSpace(m[3]))
	}
	return p, pos + len(m[0]), true
}

// FindNextMentionStart scans text for the next byte offset at which a
// platform mention could begin, for hosts that want to fall back to
// plain tokenization around mentions without running the full inline
// tokenizer (spec §4.3).
func FindNextMentionStart(text string) (int, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '@' {
			continue
		}
		if platformMentionRe.MatchString(text[i:]) {
			return i, true
		}
	}
	return 0, false
}
