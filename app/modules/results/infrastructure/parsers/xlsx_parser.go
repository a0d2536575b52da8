package parsers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
)

// XLSXParser parses Excel result files.
type XLSXParser struct{}

// NewXLSXParser creates a new XLSX parser.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse reads the first sheet into a table. The first non-empty row is the
// header row.
func (p *XLSXParser) Parse(data []byte) (normalize.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "zip: not a valid zip file") {
			return normalize.Table{}, fmt.Errorf("failed to open XLSX file: %w. (Hint: if this is a CSV file, give it a .csv extension)", err)
		}
		return normalize.Table{}, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return normalize.Table{}, fmt.Errorf("XLSX file has no sheets")
	}

	sheetName := sheets[0]
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return normalize.Table{}, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	var kept [][]string
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) == 0 {
		return normalize.Table{}, fmt.Errorf("sheet %q is empty", sheetName)
	}

	headers := make([]string, len(kept[0]))
	for i, h := range kept[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return normalize.Table{Headers: headers, Rows: kept[1:]}, nil
}
