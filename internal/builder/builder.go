// Package builder turns grammar output (a tree of grammar.Pair) into
// the closed AST defined by package ast, resolving the deferred
// semantics spec §4.4 calls out: heading level, code-block fencing,
// and reference-link/image resolution. IndentLevel fields are not
// tracked and are always left nil.
package builder

import (
	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/errtax"
	"github.com/JamieLittle16/marco/internal/grammar"
	"github.com/JamieLittle16/marco/internal/span"
)

// RefDef is the resolved form of a [label]: url "title" definition.
// Open Question (spec §9) resolved: reference definitions are pure
// side-table metadata, not AST nodes — see DESIGN.md.
type RefDef struct {
	URL   string
	Title *string
}

// BuildDocument implements spec §4.4's build_document contract.
func BuildDocument(pairs []grammar.Pair, docSpan span.Span) (*ast.Document, []error) {
	refs := map[string]RefDef{}
	collectReferences(pairs, refs)

	var children []ast.Node
	var errs []error
	for _, p := range pairs {
		if p.Rule == grammar.RuleReferenceDefinition {
			continue
		}
		node, err := buildBlock(p, refs)
		if err != nil {
			errs = append(errs, err)
		}
		if node != nil {
			children = append(children, node)
		}
	}
	return &ast.Document{Children: children, Sp: docSpan}, errs
}

func collectReferences(pairs []grammar.Pair, refs map[string]RefDef) {
	for _, p := range pairs {
		if p.Rule == grammar.RuleReferenceDefinition {
			label := p.Meta["label"]
			def := RefDef{URL: p.Meta["url"]}
			if t, ok := p.Meta["title"]; ok {
				def.Title = &t
			}
			refs[label] = def
		}
		if len(p.Children) > 0 {
			collectReferences(p.Children, refs)
		}
	}
}

func locatedFromPair(p grammar.Pair) span.Located {
	return span.Located{Text: p.Raw, Offset: p.Span.Start.Offset, Line: p.Span.Start.Line, Column: p.Span.Start.Column}
}

func buildInlineFromRawChild(p grammar.Pair, refs map[string]RefDef) []ast.Node {
	if len(p.Children) == 0 {
		return nil
	}
	raw := p.Children[0]
	tokenized := grammar.TokenizeInline(locatedFromPair(raw))
	return buildInlineNodes(tokenized, refs)
}

func buildInlineNodes(pairs []grammar.Pair, refs map[string]RefDef) []ast.Node {
	nodes := make([]ast.Node, 0, len(pairs))
	for _, p := range pairs {
		nodes = append(nodes, buildInlineNode(p, refs))
	}
	return nodes
}

func optionalMeta(p grammar.Pair, key string) *string {
	if v, ok := p.Meta[key]; ok {
		return &v
	}
	return nil
}

func buildInlineNode(p grammar.Pair, refs map[string]RefDef) ast.Node {
	switch p.Rule {
	case grammar.RuleText:
		return &ast.Text{Content: p.Raw, Sp: p.Span}
	case grammar.RuleEmphasis:
		return &ast.Emphasis{Content: buildInlineNodes(p.Children, refs), Sp: p.Span}
	case grammar.RuleStrong:
		return &ast.Strong{Content: buildInlineNodes(p.Children, refs), Sp: p.Span}
	case grammar.RuleStrikethrough:
		return &ast.Strikethrough{Content: buildInlineNodes(p.Children, refs), Sp: p.Span}
	case grammar.RuleCodeSpan:
		return &ast.Code{Content: p.Raw, Sp: p.Span}
	case grammar.RuleLink:
		return &ast.Link{Text: buildInlineNodes(p.Children, refs), URL: p.Meta["url"], Title: optionalMeta(p, "title"), Sp: p.Span}
	case grammar.RuleImage:
		alt := p.Meta["alt"]
		return &ast.Image{Alt: alt, URL: p.Meta["url"], Title: optionalMeta(p, "title"), Sp: p.Span}
	case grammar.RuleAutolink:
		return &ast.Link{Text: []ast.Node{&ast.Text{Content: p.Raw, Sp: p.Span}}, URL: p.Meta["url"], Sp: p.Span}
	case grammar.RuleReferenceLink:
		label := p.Meta["label"]
		if def, ok := refs[label]; ok {
			return &ast.Link{Text: buildInlineNodes(p.Children, refs), URL: def.URL, Title: def.Title, Sp: p.Span}
		}
		return &ast.ReferenceLink{Text: buildInlineNodes(p.Children, refs), Label: label, Sp: p.Span}
	case grammar.RuleReferenceImage:
		label := p.Meta["label"]
		alt := p.Meta["alt"]
		if _, ok := refs[label]; ok {
			def := refs[label]
			return &ast.Image{Alt: alt, URL: def.URL, Title: def.Title, Sp: p.Span}
		}
		return &ast.ReferenceImage{Alt: alt, Label: label, Sp: p.Span}
	case grammar.RuleLineBreakHard:
		return &ast.LineBreak{BreakType: ast.BreakHard, Sp: p.Span}
	case grammar.RuleLineBreakSoft:
		return &ast.LineBreak{BreakType: ast.BreakSoft, Sp: p.Span}
	case grammar.RuleEscapedChar:
		ch := p.Meta["char"]
		var r rune = '\\'
		for _, c := range ch {
			r = c
			break
		}
		return &ast.EscapedChar{Character: r, Sp: p.Span}
	case grammar.RuleFootnoteRef:
		return &ast.FootnoteRef{Label: p.Meta["label"], Sp: p.Span}
	case grammar.RuleInlineFootnote:
		return &ast.InlineFootnoteRef{Content: buildInlineNodes(p.Children, refs), Sp: p.Span}
	case grammar.RulePlatformMention:
		return &ast.PlatformMention{Username: p.Meta["username"], Platform: p.Meta["platform"], Display: optionalMeta(p, "display"), Sp: p.Span}
	default:
		return &ast.Unknown{Content: p.Raw, Rule: string(p.Rule), Sp: p.Span}
	}
}

func clampHeadingLevel(level int) int {
	if level < 1 || level > 6 {
		return 1
	}
	return level
}

func buildBlocks(pairs []grammar.Pair, refs map[string]RefDef) ([]ast.Node, []error) {
	var nodes []ast.Node
	var errs []error
	for _, p := range pairs {
		if p.Rule == grammar.RuleReferenceDefinition {
			continue
		}
		n, err := buildBlock(p, refs)
		if err != nil {
			errs = append(errs, err)
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, errs
}

func buildBlock(p grammar.Pair, refs map[string]RefDef) (ast.Node, error) {
	switch p.Rule {
	case grammar.RuleHeadingATX:
		level := parseLevel(p.Meta["level"])
		var content []ast.Node
		if len(p.Children) > 0 {
			content = buildInlineNodes(grammar.TokenizeInline(locatedFromPair(p.Children[0])), refs)
		}
		return &ast.Heading{Level: clampHeadingLevel(level), Content: content, Sp: p.Span}, nil

	case grammar.RuleHeadingSetext:
		level := parseLevel(p.Meta["level"])
		content := buildInlineFromRawChild(p, refs)
		return &ast.Heading{Level: clampHeadingLevel(level), Content: content, Sp: p.Span}, nil

	case grammar.RuleParagraph:
		content := buildInlineFromRawChild(p, refs)
		return &ast.Paragraph{Content: content, Sp: p.Span}, nil

	case grammar.RuleCodeFenced:
		var lang *string
		if l, ok := p.Meta["language"]; ok && l != "" {
			lang = &l
		}
		return &ast.CodeBlock{Language: lang, Content: p.Raw, Sp: p.Span}, nil

	case grammar.RuleCodeIndented:
		return &ast.CodeBlock{Content: p.Raw, Sp: p.Span}, nil

	case grammar.RuleThematicBreak:
		return &ast.HorizontalRule{Sp: p.Span}, nil

	case grammar.RuleFootnoteDefinition:
		content := buildInlineFromRawChild(p, refs)
		return &ast.FootnoteDef{Label: p.Meta["label"], Content: content, Sp: p.Span}, nil

	case grammar.RuleBlockQuote:
		content, errs := buildBlocks(p.Children, refs)
		var err error
		if len(errs) > 0 {
			err = errs[0]
		}
		return &ast.BlockQuote{Content: content, Sp: p.Span}, err

	case grammar.RuleList:
		ordered := p.Meta["ordered"] == "true"
		items := make([]*ast.ListItem, 0, len(p.Children))
		for _, child := range p.Children {
			item, _ := buildBlock(child, refs)
			if li, ok := item.(*ast.ListItem); ok {
				items = append(items, li)
			}
		}
		return &ast.List{Ordered: ordered, Items: items, Sp: p.Span}, nil

	case grammar.RuleListItem:
		content, errs := buildBlocks(p.Children, refs)
		var err error
		if len(errs) > 0 {
			err = errs[0]
		}
		var checked *bool
		if v, ok := p.Meta["checked"]; ok {
			b := v == "true"
			checked = &b
		}
		return &ast.ListItem{Content: content, Checked: checked, Sp: p.Span}, err

	case grammar.RuleTable:
		return buildTable(p, refs), nil

	case grammar.RuleHTMLBlock:
		return &ast.HtmlBlock{Content: p.Raw, Sp: p.Span}, nil

	case grammar.RuleSlideDeck:
		return buildSlideDeck(p), nil

	case grammar.RuleTabContainer:
		return buildTabContainer(p), nil

	default:
		return &ast.Unknown{Content: p.Raw, Rule: string(p.Rule), Sp: p.Span},
			errtax.At(errtax.Build, "unrecognized grammar rule: "+string(p.Rule), p.Span)
	}
}

func parseLevel(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return 1
	}
	return n
}

func buildTable(p grammar.Pair, refs map[string]RefDef) ast.Node {
	if len(p.Children) == 0 {
		return &ast.Table{Sp: p.Span}
	}
	headers := buildTableRow(p.Children[0], refs)
	rows := make([][]*ast.TableCell, 0, len(p.Children)-1)
	for _, row := range p.Children[1:] {
		rows = append(rows, buildTableRow(row, refs))
	}
	return &ast.Table{Headers: headers, Rows: rows, Sp: p.Span}
}

func buildTableRow(row grammar.Pair, refs map[string]RefDef) []*ast.TableCell {
	cells := make([]*ast.TableCell, 0, len(row.Children))
	for _, cell := range row.Children {
		var content []ast.Node
		if len(cell.Children) > 0 {
			content = buildInlineNodes(grammar.TokenizeInline(locatedFromPair(cell.Children[0])), refs)
		}
		align := ast.Alignment(cell.Meta["alignment"])
		cells = append(cells, &ast.TableCell{Content: content, Alignment: align, Sp: cell.Span})
	}
	return cells
}

func buildSlideDeck(p grammar.Pair) ast.Node {
	var timer *int
	if t := p.Meta["timer"]; t != "" {
		n := parseLevel(t)
		timer = &n
	}
	slides := make([]ast.Slide, 0, len(p.Children))
	for _, child := range p.Children {
		orientation := ast.SlideHorizontal
		if child.Meta["orientation"] == "vertical" {
			orientation = ast.SlideVertical
		}
		slides = append(slides, ast.Slide{Orientation: orientation, RawContent: child.Raw, Sp: child.Span})
	}
	return &ast.SlideDeck{TimerSeconds: timer, Slides: slides, Sp: p.Span}
}

func buildTabContainer(p grammar.Pair) ast.Node {
	panels := make([]ast.TabPanel, 0, len(p.Children))
	for _, child := range p.Children {
		panels = append(panels, ast.TabPanel{Title: child.Meta["title"], RawContent: child.Raw, Sp: child.Span})
	}
	return &ast.TabContainer{Panels: panels, Sp: p.Span}
}
