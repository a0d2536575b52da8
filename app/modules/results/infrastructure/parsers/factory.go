package parsers

import (
	"fmt"
	"strings"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
)

// Parser reads one raw results file into a table.
type Parser interface {
	Parse(data []byte) (normalize.Table, error)
}

// ParserFactory creates parsers for result files.
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory picks the parser from the file extension. Extension dispatch is
// deliberate: content sniffing is out of scope, callers name their format.
type Factory struct{}

// NewFactory creates a new parser factory.
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename.
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(getFileExtension(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(','), nil
	case ".tsv", ".txt":
		return NewCSVParser('\t'), nil
	case ".xlsx", ".xls":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func getFileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return filename[idx:]
}
