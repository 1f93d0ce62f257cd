package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
)

// preview is the on-screen surface. Step text is editable in place, choices
// and grid cells are live inputs, and matching rows carry connector handles
// for the line-drawing widget.
type preview struct {
	theme   Theme
	b       strings.Builder
	session int
	tables  int
}

func newPreview(th Theme) *preview { return &preview{theme: th} }

func (p *preview) String() string { return p.b.String() }

func (p *preview) openSession(label string, index int) {
	p.session = index
	fmt.Fprintf(&p.b, `<section class="lf-session" data-session="%d">`, index+1)
	if label != "" {
		fmt.Fprintf(&p.b, `<h3 class="lf-session-label">%s</h3>`, literalHTML(label))
	}
}

func (p *preview) closeSession() { p.b.WriteString("</section>\n") }

func (p *preview) openGroup(hasHeader bool) {
	if hasHeader {
		p.b.WriteString(`<div class="lf-group lf-group-headed">`)
		return
	}
	p.b.WriteString(`<div class="lf-group">`)
}

func (p *preview) closeGroup() { p.b.WriteString("</div>\n") }

func (p *preview) VisitSectionHeader(h *doctree.SectionHeader) {
	fmt.Fprintf(&p.b, `<h4 class="lf-section-header">%s</h4>`, literalHTML(h.Label))
}

func (p *preview) VisitStep(s *doctree.Step) {
	fmt.Fprintf(&p.b, `<div class="lf-step" data-ordinal="%d">`, s.Ordinal)
	fmt.Fprintf(&p.b, `<span class="lf-ordinal">%d.</span> `, s.Ordinal)
	fmt.Fprintf(&p.b, `<span class="lf-step-text" contenteditable="true">%s</span>`, inlineHTML(s.Text))
	for _, t := range s.Tags {
		p.b.WriteString(" ")
		p.b.WriteString(p.badge(t))
	}
	if len(s.Choices) > 0 {
		kind := "radio"
		if s.ChoiceMode == doctree.ChoiceMultiple {
			kind = "checkbox"
		}
		name := fmt.Sprintf("s%d-q%d", p.session+1, s.Ordinal)
		fmt.Fprintf(&p.b, `<ul class="lf-choices lf-choices-%s">`, kind)
		for _, c := range s.Choices {
			fmt.Fprintf(&p.b, `<li><label><input type="%s" name="%s" value="%s"> <span class="lf-choice-label">%s.</span> %s</label></li>`,
				kind, name, c.Label, c.Label, inlineHTML(c.Text))
		}
		p.b.WriteString("</ul>")
	}
	p.b.WriteString("</div>\n")
}

func (p *preview) badge(t doctree.Tag) string {
	b := p.theme.Badge(t)
	return fmt.Sprintf(`<span class="lf-tag lf-tag-%s" style="background:#%s;color:#%s;border-radius:9999px;padding:0 8px;font-size:0.75em">%s</span>`,
		t.Slug(), b.Background, b.Color, literalHTML(string(t)))
}

func (p *preview) VisitTable(t *doctree.Table) {
	p.tables++
	switch t.TableKind {
	case doctree.TableMatching:
		p.matching(t)
		return
	case doctree.TableStatementGrid:
		p.grid(t)
		return
	}

	cols := t.Columns()
	p.b.WriteString(`<table class="lf-table">`)
	if h := t.Header(); h != nil {
		p.b.WriteString("<thead><tr>")
		for _, c := range padRow(h, cols) {
			fmt.Fprintf(&p.b, `<th contenteditable="true">%s</th>`, cellHTML(c))
		}
		p.b.WriteString("</tr></thead>")
	}
	p.b.WriteString("<tbody>")
	for _, row := range t.Body() {
		p.b.WriteString("<tr>")
		for _, c := range padRow(row, cols) {
			fmt.Fprintf(&p.b, `<td contenteditable="true">%s</td>`, cellHTML(c))
		}
		p.b.WriteString("</tr>")
	}
	p.b.WriteString("</tbody></table>\n")
}

func (p *preview) grid(t *doctree.Table) {
	cols := t.Columns()
	fmt.Fprintf(&p.b, `<table class="lf-table lf-grid lf-grid-%s">`, t.Grid)
	p.b.WriteString("<thead><tr>")
	for _, c := range padRow(t.Header(), cols) {
		fmt.Fprintf(&p.b, "<th>%s</th>", cellHTML(c))
	}
	p.b.WriteString("</tr></thead><tbody>")
	header := padRow(t.Header(), cols)
	for i, row := range t.Body() {
		row = padRow(row, cols)
		fmt.Fprintf(&p.b, `<tr><td contenteditable="true">%s</td>`, cellHTML(row[0]))
		for j := 1; j < cols; j++ {
			fmt.Fprintf(&p.b, `<td class="lf-check"><input type="radio" name="s%d-t%d-r%d" value="%s" aria-label="%s"></td>`,
				p.session+1, p.tables, i+1, literalHTML(header[j]), literalHTML(header[j]))
		}
		p.b.WriteString("</tr>")
	}
	p.b.WriteString("</tbody></table>\n")
}

func (p *preview) matching(t *doctree.Table) {
	fmt.Fprintf(&p.b, `<div class="lf-matching" data-table="s%d-t%d">`, p.session+1, p.tables)
	for i, row := range t.Rows {
		row = padRow(row, 2)
		fmt.Fprintf(&p.b, `<div class="lf-match-row" data-row="%d">`, i)
		fmt.Fprintf(&p.b, `<span class="lf-match-left">%s</span>`, cellHTML(row[0]))
		fmt.Fprintf(&p.b, `<span class="lf-handle" data-side="left" data-row="%d"></span>`, i)
		fmt.Fprintf(&p.b, `<span class="lf-handle" data-side="right" data-row="%d"></span>`, i)
		fmt.Fprintf(&p.b, `<span class="lf-match-right">%s</span>`, cellHTML(row[1]))
		p.b.WriteString("</div>")
	}
	p.b.WriteString("</div>\n")
}

func (p *preview) VisitParagraph(para *doctree.Paragraph) {
	fmt.Fprintf(&p.b, `<p class="lf-paragraph" contenteditable="true">%s</p>`+"\n", inlineHTML(para.Text))
}
