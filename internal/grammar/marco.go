package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JamieLittle16/marco/internal/span"
)

var slideStartRe = regexp.MustCompile(`^ {0,3}@slidestart(?::t(\d+))?\s*$`)
var slideEndRe = regexp.MustCompile(`^ {0,3}@slideend\s*$`)
var slideSepRe = regexp.MustCompile(`^ {0,3}(--|---)\s*$`)

// recognizeSlideDeck implements the `@slidestart` / `@slideend` Marco
// extension (spec §4.3). A fenced code region inside the deck
// suppresses `--`/`---` separator recognition; EOF without a closing
// marker is a failure, letting the driver fall back to a paragraph.
func recognizeSlideDeck(lines []line, i int) (Pair, int, bool) {
	m := slideStartRe.FindStringSubmatch(lines[i].Text)
	if m == nil {
		return Pair{}, 0, false
	}
	var timer *int
	if m[1] != "" {
		if n, err := strconv.Atoi(m[1]); err == nil {
			timer = &n
		}
	}

	j := i + 1
	var fence string
	var body []line
	closed := false
	for j < len(lines) {
		t := lines[j].Text
		if fence == "" {
			if f := isFenceOpen(t); f != "" {
				fence = f
			}
		} else if strings.TrimSpace(t) == fence || strings.HasPrefix(strings.TrimLeft(t, " "), fence) {
			fence = ""
		}
		if fence == "" && slideEndRe.MatchString(t) {
			closed = true
			break
		}
		body = append(body, lines[j])
		j++
	}
	if !closed {
		return Pair{}, 0, false
	}

	slides := splitSlides(body)
	sp := span.FromLocated(lines[i].Loc, lines[j].end())
	p := newPair(RuleSlideDeck, sp, joinLines(lines[i:j+1]))
	if timer != nil {
		p = p.withMeta("timer", strconv.Itoa(*timer))
	}
	p.Children = slides
	return p, j + 1, true
}

func splitSlides(body []line) []Pair {
	var slides []Pair
	start := 0
	orientation := "horizontal"
	fence := ""
	flush := func(end int, nextOrientation string) {
		if end < start {
			return
		}
		sp := span.Zero
		if len(body) > 0 {
			last := end
			if last >= len(body) {
				last = len(body) - 1
			}
			if last >= start {
				sp = span.FromLocated(body[start].Loc, body[last].end())
			}
		}
		raw := joinLines(body[start:clampEnd(end, len(body))])
		p := newPair(RuleText, sp, raw).withMeta("orientation", orientation)
		slides = append(slides, p)
		start = end + 1
		orientation = nextOrientation
	}
	for idx, l := range body {
		t := l.Text
		if fence == "" {
			if f := isFenceOpen(t); f != "" {
				fence = f
				continue
			}
		} else {
			if strings.TrimSpace(t) == fence {
				fence = ""
			}
			continue
		}
		if m := slideSepRe.FindStringSubmatch(t); m != nil {
			next := "horizontal"
			if m[1] == "--" {
				next = "vertical"
			}
			flush(idx-1, next)
		}
	}
	flush(len(body)-1, "")
	return slides
}

func clampEnd(end, n int) int {
	if end+1 > n {
		return n
	}
	return end + 1
}

var tabOpenRe = regexp.MustCompile(`^ {0,3}:::tab\s*$`)
var tabCloseRe = regexp.MustCompile(`^ {0,3}:::\s*$`)
var tabPanelRe = regexp.MustCompile(`^ {0,3}@tab\s+(.+?)\s*$`)

// recognizeTabContainer implements the `:::tab` / `@tab <title>` /
// `:::` Marco extension. At least one panel is required.
func recognizeTabContainer(lines []line, i int) (Pair, int, bool) {
	if !tabOpenRe.MatchString(lines[i].Text) {
		return Pair{}, 0, false
	}
	j := i + 1
	var panels []Pair
	var curTitle string
	var curStart int = -1
	fence := ""
	closed := false
	flush := func(end int) {
		if curStart < 0 {
			return
		}
		sp := span.Zero
		if end >= curStart && end < len(lines) {
			sp = span.FromLocated(lines[curStart].Loc, lines[end].end())
		}
		raw := joinLines(lines[curStart : end+1])
		p := newPair(RuleText, sp, raw).withMeta("title", curTitle)
		panels = append(panels, p)
		curStart = -1
	}
	for j < len(lines) {
		t := lines[j].Text
		if fence == "" {
			if f := isFenceOpen(t); f != "" {
				fence = f
				j++
				continue
			}
		} else {
			if strings.TrimSpace(t) == fence {
				fence = ""
			}
			j++
			continue
		}
		if tabCloseRe.MatchString(t) {
			flush(j - 1)
			closed = true
			break
		}
		if m := tabPanelRe.FindStringSubmatch(t); m != nil {
			flush(j - 1)
			curTitle = m[1]
			curStart = j + 1
			j++
			continue
		}
		j++
	}
	if !closed || len(panels) == 0 {
		return Pair{}, 0, false
	}
	sp := span.FromLocated(lines[i].Loc, lines[j].end())
	p := newPair(RuleTabContainer, sp, joinLines(lines[i:j+1]))
	p.Children = panels
	return p, j + 1, true
}
