package source

import (
	"bufio"
	"io"
	"strings"
)

// TextImporter handles plain text files. Lines are kept; runs of blank lines
// collapse to one.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	blank := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			blank = len(lines) > 0
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Document{
		Title: titleFromName(filename),
		Text:  strings.Join(lines, "\n"),
	}, nil
}
