package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
)

const (
	printAvoidBreak = "page-break-inside:avoid;break-inside:avoid"
	printKeepNext   = "page-break-after:avoid;break-after:avoid"
	printCell       = "border:1px solid #000;padding:3pt 5pt;vertical-align:top"
)

// printer is the print surface: static markup, point-based spacing and
// break-avoidance hints so a step never splits across pages.
type printer struct {
	theme Theme
	b     strings.Builder
}

func newPrint(th Theme) *printer { return &printer{theme: th} }

func (p *printer) String() string { return p.b.String() }

func (p *printer) openSession(label string, index int) {
	style := fmt.Sprintf("font-family:'%s';font-size:%dpt", p.theme.FontFamily, p.theme.FontSizePt)
	if index > 0 {
		style += ";page-break-before:always;break-before:page"
	}
	fmt.Fprintf(&p.b, `<section class="lf-session" style="%s">`, style)
	if label != "" {
		fmt.Fprintf(&p.b, `<h3 style="margin:0 0 8pt;font-size:%dpt;color:#%s;%s">%s</h3>`,
			p.theme.FontSizePt+2, p.theme.Accent, printKeepNext, literalHTML(label))
	}
}

func (p *printer) closeSession() { p.b.WriteString("</section>\n") }

func (p *printer) openGroup(hasHeader bool) {
	if hasHeader {
		p.b.WriteString(`<div class="lf-group" style="margin:0 0 10pt">`)
		return
	}
	p.b.WriteString(`<div class="lf-group" style="margin:0 0 6pt">`)
}

func (p *printer) closeGroup() { p.b.WriteString("</div>\n") }

func (p *printer) VisitSectionHeader(h *doctree.SectionHeader) {
	fmt.Fprintf(&p.b, `<h4 style="margin:6pt 0 4pt;font-size:%dpt;%s">%s</h4>`,
		p.theme.FontSizePt, printKeepNext, literalHTML(h.Label))
}

func (p *printer) VisitStep(s *doctree.Step) {
	fmt.Fprintf(&p.b, `<div class="lf-step" data-ordinal="%d" style="margin:0 0 4pt 18pt;text-indent:-18pt;%s">`, s.Ordinal, printAvoidBreak)
	fmt.Fprintf(&p.b, `<span style="display:inline-block;width:18pt;text-indent:0">%d.</span>%s`, s.Ordinal, inlineHTML(s.Text))
	for _, t := range s.Tags {
		b := p.theme.Badge(t)
		fmt.Fprintf(&p.b, ` <span style="background:#%s;color:#%s;border:1px solid #%s;padding:0 3pt;font-size:%dpt;-webkit-print-color-adjust:exact;print-color-adjust:exact">%s</span>`,
			b.Background, b.Color, b.Color, p.theme.FontSizePt-3, literalHTML(string(t)))
	}
	if len(s.Choices) > 0 {
		radius := "50%"
		if s.ChoiceMode == doctree.ChoiceMultiple {
			radius = "0"
		}
		for _, c := range s.Choices {
			fmt.Fprintf(&p.b, `<div style="margin:2pt 0 0 0;text-indent:0"><span style="display:inline-block;width:8pt;height:8pt;border:1px solid #000;border-radius:%s;margin-right:4pt"></span>%s. %s</div>`,
				radius, c.Label, inlineHTML(c.Text))
		}
	}
	p.b.WriteString("</div>\n")
}

func (p *printer) VisitTable(t *doctree.Table) {
	cols := t.Columns()
	fmt.Fprintf(&p.b, `<table style="border-collapse:collapse;width:100%%;margin:4pt 0 8pt;%s">`, printAvoidBreak)

	if t.TableKind == doctree.TableMatching {
		for _, row := range t.Rows {
			row = padRow(row, 2)
			fmt.Fprintf(&p.b, `<tr><td style="%s;width:45%%">%s</td><td style="width:10%%"></td><td style="%s;width:45%%">%s</td></tr>`,
				printCell, cellHTML(row[0]), printCell, cellHTML(row[1]))
		}
		p.b.WriteString("</table>\n")
		return
	}

	if h := t.Header(); h != nil {
		p.b.WriteString("<thead><tr>")
		for _, c := range padRow(h, cols) {
			fmt.Fprintf(&p.b, `<th style="%s;background:#F2F2F2;-webkit-print-color-adjust:exact;print-color-adjust:exact">%s</th>`, printCell, cellHTML(c))
		}
		p.b.WriteString("</tr></thead>")
	}
	p.b.WriteString("<tbody>")
	for _, row := range t.Body() {
		fmt.Fprintf(&p.b, `<tr style="%s">`, printAvoidBreak)
		for j, c := range padRow(row, cols) {
			if t.TableKind == doctree.TableStatementGrid && j > 0 {
				fmt.Fprintf(&p.b, `<td style="%s;width:15%%;text-align:center"></td>`, printCell)
				continue
			}
			fmt.Fprintf(&p.b, `<td style="%s">%s</td>`, printCell, cellHTML(c))
		}
		p.b.WriteString("</tr>")
	}
	p.b.WriteString("</tbody></table>\n")
}

func (p *printer) VisitParagraph(para *doctree.Paragraph) {
	fmt.Fprintf(&p.b, `<p style="margin:0 0 6pt;%s">%s</p>`+"\n", printAvoidBreak, inlineHTML(para.Text))
}
