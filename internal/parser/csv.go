package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV files holding one message per row. The message is
// read from a "ciphertext" or "text" column when the header has one,
// otherwise from the first column.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{
		Title: strings.TrimSuffix(filename, ".csv"),
	}
	if len(records) == 0 {
		return doc, nil
	}

	col, rows, first := messageColumn(records)
	for i, row := range rows {
		if col >= len(row) {
			continue
		}
		text := strings.TrimSpace(row[col])
		if text == "" {
			continue
		}
		n := i + first // 1-indexed source row
		doc.Sections = append(doc.Sections, Section{
			Title: fmt.Sprintf("Row %d", n),
			Text:  text,
			Page:  n,
		})
	}
	return doc, nil
}

// messageColumn picks the column to read and strips a recognised header.
// It also returns the 1-indexed source row of the first data row.
func messageColumn(records [][]string) (int, [][]string, int) {
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "ciphertext", "text", "message":
			return i, records[1:], 2
		}
	}
	return 0, records, 1
}
