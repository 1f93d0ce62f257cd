// Package source imports uploaded teaching material as plain instructional
// text: numbered steps as "N." lines and tables as pipe rows, ready for the
// block parser.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is the imported text of one file.
type Document struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Importer converts raw file bytes into instructional text.
type Importer interface {
	Import(r io.Reader, filename string) (*Document, error)
}

// Options tunes importers that have alternatives.
type Options struct {
	// PDFFallbackPdftotext retries PDF extraction with the pdftotext binary
	// when the Go reader fails.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string, opts Options) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".csv":
		return &CSVImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// pipeRow formats cells as a pipe-delimited table row.
func pipeRow(cells []string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.Join(strings.Fields(c), " ")
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return "| " + strings.Join(out, " | ") + " |"
}
