package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
)

// CSVParser parses delimited result files (CSV, TSV).
type CSVParser struct {
	delimiter rune
}

// NewCSVParser creates a parser for the given delimiter.
func NewCSVParser(delimiter rune) *CSVParser {
	return &CSVParser{delimiter: delimiter}
}

// Parse reads the data into a table. The first non-empty row is the header;
// ragged rows are tolerated because hand-edited result sheets rarely line up.
func (p *CSVParser) Parse(data []byte) (normalize.Table, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return normalize.Table{}, fmt.Errorf("failed to read CSV: %w", err)
		}
		if isEmptyRow(record) {
			continue
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return normalize.Table{}, fmt.Errorf("CSV file is empty")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return normalize.Table{Headers: headers, Rows: rows[1:]}, nil
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
