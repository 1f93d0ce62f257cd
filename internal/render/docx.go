package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
	"github.com/fumiama/go-docx"
)

// WriteDOCX writes doc as a .docx file with the default theme.
func WriteDOCX(w io.Writer, doc Document) error {
	return New(DefaultTheme()).WriteDOCX(w, doc)
}

// WriteDOCX writes doc as a .docx file. It follows the same layout pass as
// the HTML surfaces, so ordinals and text match the export fragment.
func (r *Renderer) WriteDOCX(w io.Writer, doc Document) error {
	f := docx.New().WithDefaultTheme().WithA4Page()
	dw := &docxWriter{f: f, theme: r.theme}

	if doc.Title != "" {
		run := f.AddParagraph().Justification("center").AddText(doc.Title)
		dw.style(run).Bold().Size(dw.halfPoints(4))
	}
	for _, p := range layout(doc) {
		dw.openSession(p.Label, p.Index)
		for _, g := range p.Groups {
			if g.Header != nil {
				g.Header.Accept(dw)
			}
			doctree.Walk(g.Nodes, dw)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

type docxWriter struct {
	f     *docx.Docx
	theme Theme
}

func (d *docxWriter) halfPoints(delta int) string {
	return strconv.Itoa((d.theme.FontSizePt + delta) * 2)
}

func (d *docxWriter) style(run *docx.Run) *docx.Run {
	ff := d.theme.FontFamily
	return run.Font(ff, ff, ff, "default").Size(d.halfPoints(0))
}

func (d *docxWriter) openSession(label string, index int) {
	if index > 0 {
		d.f.AddParagraph().AddPageBreaks()
	}
	if label == "" {
		return
	}
	run := d.f.AddParagraph().AddText(label)
	d.style(run).Bold().Size(d.halfPoints(2)).Color(d.theme.Accent)
}

func (d *docxWriter) spans(p *docx.Paragraph, text string) {
	for _, s := range inlineSpans(text) {
		run := d.style(p.AddText(s.Text))
		if s.Bold {
			run.Bold()
		}
		if s.Italic {
			run.Italic()
		}
	}
}

func (d *docxWriter) VisitSectionHeader(h *doctree.SectionHeader) {
	d.style(d.f.AddParagraph().AddText(h.Label)).Bold()
}

func (d *docxWriter) VisitStep(s *doctree.Step) {
	p := d.f.AddParagraph()
	d.style(p.AddText(strconv.Itoa(s.Ordinal) + ".\t"))
	d.spans(p, s.Text)
	for _, t := range s.Tags {
		d.style(p.AddText(" "))
		b := d.theme.Badge(t)
		d.style(p.AddText(" " + string(t) + " ")).
			Size(d.halfPoints(-3)).
			Color(b.Color).
			Shade("clear", "auto", b.Background)
	}
	for _, c := range s.Choices {
		cp := d.f.AddParagraph()
		d.style(cp.AddText("\t" + c.Label + ".\t"))
		d.spans(cp, c.Text)
	}
}

func (d *docxWriter) VisitTable(t *doctree.Table) {
	rows := t.Rows
	cols := t.Columns()
	if t.TableKind == doctree.TableMatching {
		cols = 3
	}
	if len(rows) == 0 || cols == 0 {
		return
	}
	tbl := d.f.AddTable(len(rows), cols, 0, nil)
	for i, row := range rows {
		cells := tbl.TableRows[i].TableCells
		if t.TableKind == doctree.TableMatching {
			row = padRow(row, 2)
			row = []string{row[0], "", row[1]}
		}
		row = padRow(row, cols)
		header := i == 0 && t.TableKind != doctree.TableMatching
		for j, cell := range cells {
			text := strings.TrimSpace(row[j])
			if t.TableKind == doctree.TableStatementGrid && i > 0 && j > 0 {
				text = ""
			}
			p := cell.AddParagraph()
			if header {
				cell.Shade("clear", "auto", "F2F2F2")
			}
			if text == "" {
				continue
			}
			for _, s := range inlineSpans(text) {
				run := d.style(p.AddText(s.Text))
				if header || s.Bold {
					run.Bold()
				}
				if s.Italic {
					run.Italic()
				}
			}
		}
	}
	d.f.AddParagraph()
}

func (d *docxWriter) VisitParagraph(para *doctree.Paragraph) {
	d.spans(d.f.AddParagraph(), para.Text)
}
