package source

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/parser"
	"github.com/fumiama/go-docx"
)

// DOCXImporter handles .docx files. Paragraphs become lines, Word list
// numbering is written out as "N." and tables become pipe rows.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &Document{Title: titleFromName(filename)}
	counters := make(map[string]int)
	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(it)
			if text == "" {
				continue
			}
			if docxHeadingLevel(it) == 1 && len(lines) == 0 {
				out.Title = text
				continue
			}
			lines = append(lines, numbered(it, text, counters))
		case *docx.Table:
			lines = append(lines, docxTableRows(it)...)
			lines = append(lines, "")
		}
	}
	out.Text = strings.TrimSpace(strings.Join(lines, "\n"))
	return out, nil
}

// numbered prefixes Word list paragraphs with their ordinal. Deeper list
// levels and text that already carries a number are left alone.
func numbered(para *docx.Paragraph, text string, counters map[string]int) string {
	props := para.Properties
	if props == nil || props.NumProperties == nil || props.NumProperties.NumID == nil {
		return text
	}
	if lvl := props.NumProperties.Ilvl; lvl != nil && lvl.Val != "0" {
		return "- " + text
	}
	if parser.HasOrdinal(text) {
		return text
	}
	id := props.NumProperties.NumID.Val
	counters[id]++
	return strconv.Itoa(counters[id]) + ". " + text
}

func docxTableRows(tbl *docx.Table) []string {
	var rows []string
	for i, tr := range tbl.TableRows {
		cells := make([]string, 0, len(tr.TableCells))
		for _, tc := range tr.TableCells {
			var parts []string
			for _, para := range tc.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		rows = append(rows, pipeRow(cells))
		if i == 0 {
			rows = append(rows, "|"+strings.Repeat(" --- |", len(cells)))
		}
	}
	return rows
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				buf.WriteString(t.Text)
			case *docx.Tab:
				buf.WriteByte(' ')
			}
		}
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}
