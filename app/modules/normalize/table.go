package normalize

import (
	"sort"
	"strconv"
	"strings"
)

// Table is the in-memory tabular exchange shape: ordered named columns and
// ordered rows of raw cell values. Readers (CSV, XLSX) produce it and the
// tabular projection of normalized records is emitted as one.
type Table struct {
	Headers []string
	Rows    [][]string
}

// headerIndex maps each header to its column position. The first occurrence
// wins when a source repeats a header.
func (t Table) headerIndex() map[string]int {
	idx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

// cell returns the trimmed value of the named column in row, or "" when the
// column is missing or the row is ragged.
func cell(row []string, idx map[string]int, header string) string {
	i, ok := idx[header]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// projectionColumns is the canonical column order of the tabular projection.
var projectionColumns = []string{
	FieldPositionOverall,
	FieldPositionGender,
	FieldPositionCategory,
	FieldName,
	FieldBibNumber,
	FieldGender,
	FieldAgeCategory,
	FieldClub,
	FieldRaceStatus,
	FieldFinishTimeSeconds,
	FieldFinishTimeMinutes,
	FieldChipTimeSeconds,
	FieldChipTimeMinutes,
	FieldGunTimeSeconds,
	FieldGunTimeMinutes,
	FieldRaceName,
	FieldRaceDate,
	FieldRaceYear,
	FieldRaceCategory,
}

// Project renders records as a table: one column per canonical field plus
// one column per unmapped source field, in first-seen order. Row order
// matches the record order.
func Project(records []Record) Table {
	headers := append([]string(nil), projectionColumns...)
	metaIndex := make(map[string]bool)
	for _, r := range records {
		// Metadata keys are sorted per record so column order is stable.
		for _, key := range metadataKeys(r) {
			if !metaIndex[key] {
				metaIndex[key] = true
				headers = append(headers, key)
			}
		}
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = r.projectField(h)
		}
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows}
}

func metadataKeys(r Record) []string {
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r Record) projectField(column string) string {
	switch column {
	case FieldPositionOverall:
		return formatInt(r.PositionOverall)
	case FieldPositionGender:
		return formatInt(r.PositionGender)
	case FieldPositionCategory:
		return formatInt(r.PositionCategory)
	case FieldName:
		return r.Name
	case FieldBibNumber:
		return r.BibNumber
	case FieldGender:
		return string(r.Gender)
	case FieldAgeCategory:
		return r.AgeCategory
	case FieldClub:
		return r.Club
	case FieldRaceStatus:
		return string(r.RaceStatus)
	case FieldFinishTimeSeconds:
		return formatFloat(r.FinishTimeSeconds)
	case FieldFinishTimeMinutes:
		return formatFloat(r.FinishTimeMinutes)
	case FieldChipTimeSeconds:
		return formatFloat(r.ChipTimeSeconds)
	case FieldChipTimeMinutes:
		return formatFloat(r.ChipTimeMinutes)
	case FieldGunTimeSeconds:
		return formatFloat(r.GunTimeSeconds)
	case FieldGunTimeMinutes:
		return formatFloat(r.GunTimeMinutes)
	case FieldRaceName:
		return r.RaceName
	case FieldRaceDate:
		return r.RaceDate
	case FieldRaceYear:
		return formatInt(r.RaceYear)
	case FieldRaceCategory:
		return string(r.RaceCategory)
	}
	return r.Metadata[column]
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
