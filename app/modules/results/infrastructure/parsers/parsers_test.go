package parsers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFactory_GetParser(t *testing.T) {
	factory := NewFactory()
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "csv file", filename: "results.csv", want: "csv"},
		{name: "tsv file", filename: "results.tsv", want: "tsv"},
		{name: "txt file is tab-delimited", filename: "results.txt", want: "tsv"},
		{name: "xlsx file", filename: "results.xlsx", want: "xlsx"},
		{name: "xls file", filename: "results.xls", want: "xlsx"},
		{name: "uppercase extension", filename: "RESULTS.CSV", want: "csv"},
		{name: "unsupported file", filename: "results.pdf", wantErr: true},
		{name: "no extension", filename: "results", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := factory.GetParser(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			switch tt.want {
			case "csv", "tsv":
				p, ok := parser.(*CSVParser)
				require.True(t, ok)
				if tt.want == "tsv" {
					require.Equal(t, '\t', p.delimiter)
				} else {
					require.Equal(t, ',', p.delimiter)
				}
			case "xlsx":
				_, ok := parser.(*XLSXParser)
				require.True(t, ok)
			default:
				t.Fatalf("unexpected parser type %q", tt.want)
			}
		})
	}
}

func TestCSVParser_Parse(t *testing.T) {
	tests := []struct {
		name        string
		delimiter   rune
		data        string
		wantErr     bool
		wantHeaders []string
		wantRows    int
	}{
		{
			name:        "simple results",
			delimiter:   ',',
			data:        "Pos,Name,Club,Time\n1,A Runner,Carnethy,31:45\n2,B Runner,HBT,32:10",
			wantHeaders: []string{"Pos", "Name", "Club", "Time"},
			wantRows:    2,
		},
		{
			name:        "blank lines skipped",
			delimiter:   ',',
			data:        "Pos,Name,Time\n\n1,A,31:45\n,,\n2,B,32:10\n",
			wantHeaders: []string{"Pos", "Name", "Time"},
			wantRows:    2,
		},
		{
			name:        "ragged rows tolerated",
			delimiter:   ',',
			data:        "Pos,Name,Club,Time\n1,A Runner,31:45",
			wantHeaders: []string{"Pos", "Name", "Club", "Time"},
			wantRows:    1,
		},
		{
			name:        "tab delimited",
			delimiter:   '\t',
			data:        "Pos\tName\tTime\n1\tA Runner\t31:45",
			wantHeaders: []string{"Pos", "Name", "Time"},
			wantRows:    1,
		},
		{
			name:        "headers trimmed",
			delimiter:   ',',
			data:        "Pos , Name , Time \n1,A,31:45",
			wantHeaders: []string{"Pos", "Name", "Time"},
			wantRows:    1,
		},
		{
			name:      "empty file",
			delimiter: ',',
			data:      "",
			wantErr:   true,
		},
		{
			name:      "only blank lines",
			delimiter: ',',
			data:      "\n\n,,\n",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewCSVParser(tt.delimiter)
			table, err := parser.Parse([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantHeaders, table.Headers)
			require.Len(t, table.Rows, tt.wantRows)
		})
	}
}

func TestXLSXParser_Parse(t *testing.T) {
	parser := NewXLSXParser()
	tests := []struct {
		name        string
		rows        [][]string
		wantErr     bool
		wantHeaders []string
		wantRows    int
	}{
		{
			name: "normal sheet",
			rows: [][]string{
				{"Pos", "Name", "Club", "Time"},
				{"1", "A Runner", "Carnethy", "31:45"},
				{"2", "B Runner", "HBT", "32:10"},
			},
			wantHeaders: []string{"Pos", "Name", "Club", "Time"},
			wantRows:    2,
		},
		{
			name: "blank rows skipped",
			rows: [][]string{
				{"", "", ""},
				{"Pos", "Name", "Time"},
				{"1", "A", "31:45"},
			},
			wantHeaders: []string{"Pos", "Name", "Time"},
			wantRows:    1,
		},
		{
			name:    "empty sheet",
			rows:    [][]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildXLSX(t, tt.rows)
			table, err := parser.Parse(data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantHeaders, table.Headers)
			require.Len(t, table.Rows, tt.wantRows)
		})
	}
}

func TestXLSXParser_Parse_NotAZip(t *testing.T) {
	parser := NewXLSXParser()
	_, err := parser.Parse([]byte("Pos,Name,Time\n1,A,31:45"))
	require.Error(t, err)
	require.Contains(t, err.Error(), ".csv extension")
}

func buildXLSX(t *testing.T, rows [][]string) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, err)
		cells := make([]interface{}, len(row))
		for i, val := range row {
			cells[i] = val
		}
		require.NoError(t, f.SetSheetRow(sheet, axis, &cells))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return buf.Bytes()
}
