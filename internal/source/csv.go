package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVImporter handles CSV files. The first record is the header row; every
// record becomes one pipe row.
type CSVImporter struct{}

func (p *CSVImporter) Import(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: titleFromName(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	rows := make([]string, 0, len(records)+1)
	for i, rec := range records {
		rows = append(rows, pipeRow(rec))
		if i == 0 {
			rows = append(rows, "|"+strings.Repeat(" --- |", len(rec)))
		}
	}
	doc.Text = strings.Join(rows, "\n")
	return doc, nil
}
