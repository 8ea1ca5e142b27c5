package grammar

import (
	"regexp"
	"strings"

	"github.com/JamieLittle16/marco/internal/span"
)

var tableDelimCellRe = regexp.MustCompile(`^:?-+:?$`)

// splitUnescapedPipes splits s on '|' that are not escaped with a
// preceding backslash; `\|` is literal (spec §4.3 GFM table).
func splitUnescapedPipes(s string) []string {
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '|' {
			cur.WriteByte('|')
			i++
			continue
		}
		if s[i] == '|' {
			cells = append(cells, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	cells = append(cells, cur.String())
	return cells
}

func trimOuterEmptyPipeCells(cells []string) []string {
	if len(cells) > 0 && strings.TrimSpace(cells[0]) == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func hasUnescapedPipe(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '|' {
			i++
			continue
		}
		if s[i] == '|' {
			return true
		}
	}
	return false
}

// recognizeTable implements spec §4.3's GFM table contract: a header
// line, a delimiter line whose cell count matches the header's, then
// zero or more data rows.
func recognizeTable(lines []line, i int) (Pair, int, bool) {
	if leadingSpaces(lines[i].Text) >= 4 {
		return Pair{}, 0, false
	}
	if !hasUnescapedPipe(lines[i].Text) {
		return Pair{}, 0, false
	}
	if i+1 >= len(lines) {
		return Pair{}, 0, false
	}
	delimLine := lines[i+1].Text
	if !hasUnescapedPipe(delimLine) || !strings.Contains(delimLine, "-") {
		return Pair{}, 0, false
	}
	delimCells := trimOuterEmptyPipeCells(splitUnescapedPipes(delimLine))
	for _, c := range delimCells {
		if !tableDelimCellRe.MatchString(strings.TrimSpace(c)) {
			return Pair{}, 0, false
		}
	}
	headerCells := trimOuterEmptyPipeCells(splitUnescapedPipes(lines[i].Text))
	if len(headerCells) != len(delimCells) {
		return Pair{}, 0, false
	}

	alignments := make([]string, len(delimCells))
	for k, c := range delimCells {
		c = strings.TrimSpace(c)
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			alignments[k] = "center"
		case left:
			alignments[k] = "left"
		case right:
			alignments[k] = "right"
		default:
			alignments[k] = ""
		}
	}

	headerRow := buildTableRow(lines[i], headerCells, alignments)

	j := i + 2
	var rows []Pair
	for j < len(lines) {
		if lines[j].isBlank() || !hasUnescapedPipe(lines[j].Text) {
			break
		}
		rowCells := trimOuterEmptyPipeCells(splitUnescapedPipes(lines[j].Text))
		rows = append(rows, buildTableRow(lines[j], rowCells, alignments))
		j++
	}

	sp := span.FromLocated(lines[i].Loc, lines[j-1].end())
	p := newPair(RuleTable, sp, joinLines(lines[i:j]))
	p.Children = append([]Pair{headerRow}, rows...)
	return p, j, true
}

func buildTableRow(l line, cells []string, alignments []string) Pair {
	row := newPair(RuleTableRow, span.FromLocated(l.Loc, l.end()), l.Text)
	row.Children = make([]Pair, len(cells))
	for k, c := range cells {
		trimmed := strings.TrimSpace(c)
		cell := newPair(RuleTableCell, span.FromLocated(l.Loc, l.end()), trimmed)
		if k < len(alignments) && alignments[k] != "" {
			cell = cell.withMeta("alignment", alignments[k])
		}
		cell.Children = []Pair{newPair(RuleText, cell.Span, trimmed)}
		row.Children[k] = cell
	}
	return row
}
