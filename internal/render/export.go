package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
)

const (
	msoCell  = "border:solid windowtext 1.0pt;mso-border-alt:solid windowtext .5pt;padding:0cm 5.4pt 0cm 5.4pt"
	msoTable = "border-collapse:collapse;border:none;mso-border-alt:solid windowtext .5pt;mso-yfti-tbllook:1184;mso-padding-alt:0cm 5.4pt 0cm 5.4pt"
	msoBlank = `<p class="MsoNormal" style="margin:0cm">&nbsp;</p>`
)

// exporter writes HTML in the dialect word processors accept on import:
// MsoNormal paragraphs, mso- styles and bordered tables, with no CSS classes
// of its own and no scripts.
type exporter struct {
	theme Theme
	b     strings.Builder
}

func newExport(th Theme) *exporter { return &exporter{theme: th} }

func (e *exporter) String() string { return e.b.String() }

func (e *exporter) font() string {
	return fmt.Sprintf("font-family:'%s';mso-fareast-font-family:'%s';font-size:%d.0pt",
		e.theme.FontFamily, e.theme.FontFamily, e.theme.FontSizePt)
}

func (e *exporter) openSession(label string, index int) {
	fmt.Fprintf(&e.b, `<div class="WordSection%d">`, index+1)
	if index > 0 {
		e.b.WriteString(`<br clear="all" style="mso-special-character:line-break;page-break-before:always">`)
	}
	if label != "" {
		fmt.Fprintf(&e.b, `<p class="MsoNormal" style="margin:12.0pt 0cm 6.0pt 0cm;mso-pagination:keep-with-next;%s"><b><span style="font-size:%d.0pt;color:#%s">%s</span></b></p>`,
			e.font(), e.theme.FontSizePt+2, e.theme.Accent, literalHTML(label))
	}
}

func (e *exporter) closeSession() { e.b.WriteString("</div>\n") }

func (e *exporter) openGroup(bool) {}

func (e *exporter) closeGroup() {}

func (e *exporter) VisitSectionHeader(h *doctree.SectionHeader) {
	fmt.Fprintf(&e.b, `<p class="MsoNormal" style="margin:6.0pt 0cm 3.0pt 0cm;page-break-after:avoid;mso-pagination:keep-with-next;%s"><b>%s</b></p>`+"\n",
		e.font(), literalHTML(h.Label))
}

func (e *exporter) VisitStep(s *doctree.Step) {
	fmt.Fprintf(&e.b, `<p class="MsoNormal" data-ordinal="%d" style="margin:0cm 0cm 3.0pt 18.0pt;text-indent:-18.0pt;mso-pagination:widow-orphan lines-together;%s">`, s.Ordinal, e.font())
	fmt.Fprintf(&e.b, `%d.<span style="mso-tab-count:1">&nbsp;</span>%s`, s.Ordinal, inlineHTML(s.Text))
	for _, t := range s.Tags {
		b := e.theme.Badge(t)
		fmt.Fprintf(&e.b, ` <span style="font-size:%d.0pt;color:#%s;background:#%s;mso-shading:#%s">&nbsp;%s&nbsp;</span>`,
			e.theme.FontSizePt-3, b.Color, b.Background, b.Background, literalHTML(string(t)))
	}
	e.b.WriteString("</p>\n")

	for _, c := range s.Choices {
		fmt.Fprintf(&e.b, `<p class="MsoNormal" style="margin:0cm 0cm 0cm 36.0pt;text-indent:-18.0pt;%s">%s.<span style="mso-tab-count:1">&nbsp;</span>%s</p>`+"\n",
			e.font(), c.Label, inlineHTML(c.Text))
	}
}

func (e *exporter) VisitTable(t *doctree.Table) {
	cols := t.Columns()
	fmt.Fprintf(&e.b, `<table class="MsoTableGrid" border="1" cellspacing="0" cellpadding="0" style="%s">`, msoTable)

	if t.TableKind == doctree.TableMatching {
		for _, row := range t.Rows {
			row = padRow(row, 2)
			fmt.Fprintf(&e.b, `<tr><td style="%s;width:45%%">%s</td><td style="border:none;width:10%%">%s</td><td style="%s;width:45%%">%s</td></tr>`,
				msoCell, e.cell(row[0], false), msoBlank, msoCell, e.cell(row[1], false))
		}
		e.b.WriteString("</table>\n")
		e.b.WriteString(msoBlank + "\n")
		return
	}

	if h := t.Header(); h != nil {
		e.b.WriteString(`<tr style="mso-yfti-firstrow:yes;mso-yfti-irow:0">`)
		for _, c := range padRow(h, cols) {
			fmt.Fprintf(&e.b, `<td style="%s;background:#F2F2F2;mso-shading:#F2F2F2">%s</td>`, msoCell, e.cell(c, true))
		}
		e.b.WriteString("</tr>")
	}
	for i, row := range t.Body() {
		fmt.Fprintf(&e.b, `<tr style="mso-yfti-irow:%d;page-break-inside:avoid">`, i+1)
		for j, c := range padRow(row, cols) {
			if t.TableKind == doctree.TableStatementGrid && j > 0 {
				fmt.Fprintf(&e.b, `<td style="%s;width:15%%">%s</td>`, msoCell, msoBlank)
				continue
			}
			fmt.Fprintf(&e.b, `<td style="%s">%s</td>`, msoCell, e.cell(c, false))
		}
		e.b.WriteString("</tr>")
	}
	e.b.WriteString("</table>\n")
	e.b.WriteString(msoBlank + "\n")
}

func (e *exporter) cell(s string, bold bool) string {
	body := cellHTML(s)
	if body == "" {
		return msoBlank
	}
	if bold {
		body = "<b>" + body + "</b>"
	}
	return fmt.Sprintf(`<p class="MsoNormal" style="margin:0cm;%s">%s</p>`, e.font(), body)
}

func (e *exporter) VisitParagraph(p *doctree.Paragraph) {
	fmt.Fprintf(&e.b, `<p class="MsoNormal" style="margin:0cm 0cm 6.0pt 0cm;%s">%s</p>`+"\n", e.font(), inlineHTML(p.Text))
}
