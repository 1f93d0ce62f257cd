package source

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFImporter handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFImporter struct {
	FallbackPdftotext bool
}

func (p *PDFImporter) Import(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "lessonfmt-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var pages []string
	for _, page := range splitPages(text) {
		if page = cleanPage(page); page != "" {
			pages = append(pages, page)
		}
	}
	return &Document{
		Title: titleFromName(filename),
		Text:  strings.Join(pages, "\n\n"),
	}, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		for _, row := range rows {
			buf.WriteString(rowText(row.Content))
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

// rowText joins the glyph runs of one row. A gap wider than a fifth of the
// font size between runs becomes a space, since many generators do not
// emit space glyphs.
func rowText(texts []pdflib.Text) string {
	var line strings.Builder
	end := 0.0
	for i, t := range texts {
		if i > 0 && t.X-end > t.FontSize/5 && !strings.HasPrefix(t.S, " ") && !strings.HasSuffix(line.String(), " ") {
			line.WriteString(" ")
		}
		line.WriteString(t.S)
		end = t.X + t.W
	}
	return line.String()
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}

// cleanPage trims layout padding from each line and drops blank runs.
func cleanPage(page string) string {
	var lines []string
	for _, l := range strings.Split(page, "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" && (len(lines) == 0 || lines[len(lines)-1] == "") {
			continue
		}
		lines = append(lines, l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
