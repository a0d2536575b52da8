package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Options configures one Normalizer. The zero value parses HH:MM:SS times,
// runs non-strict, and performs no auto-detection.
type Options struct {
	// Mapping binds canonical fields to source columns. Explicit entries
	// always win over auto-detection.
	Mapping ColumnMapping
	// AutoDetect fills unset mapping entries from the column headers.
	AutoDetect bool
	// TimeFormat selects how raw time cells are parsed (default HH:MM:SS).
	TimeFormat TimeFormat
	// Strict drops a whole row on any field-level failure and reports it;
	// non-strict downgrades the failing field to absent and keeps the row.
	Strict bool

	// Race metadata defaults stamped onto every record that does not carry
	// its own value from a mapped column.
	RaceName     string
	RaceDate     string
	RaceYear     int
	RaceCategory RaceCategory

	// DefaultAgeCategory, when set, fills records whose category cell was
	// blank or unmapped; DefaultGender fills gender alongside it.
	DefaultAgeCategory string
	DefaultGender      Gender
}

// Normalizer converts raw tabular race results into validated Records. It
// holds only read-only configuration: concurrent Normalize calls on separate
// Normalizers are safe, and rows are processed independently in input order.
type Normalizer struct {
	opts   Options
	parser TimeParser
}

// New returns a Normalizer for the given options.
func New(opts Options) *Normalizer {
	if opts.TimeFormat == "" {
		opts.TimeFormat = FormatHMS
	}
	return &Normalizer{
		opts:   opts,
		parser: TimeParser{Format: opts.TimeFormat},
	}
}

// Normalize converts every row of the table into a Record. In strict mode
// rows with field-level failures are dropped from the output and reported in
// the failure list; in non-strict mode the failure list is always empty and
// failed fields are simply absent. The only fatal condition is a
// structurally unusable table, reported before any row is processed.
func (n *Normalizer) Normalize(table Table) ([]Record, []RowError, error) {
	if len(table.Headers) == 0 {
		return nil, nil, errors.New("table has no columns")
	}

	mapping := n.opts.Mapping
	if n.opts.AutoDetect {
		mapping = mapping.merged(DetectColumns(table.Headers))
	}
	entries := mapping.Entries()

	idx := table.headerIndex()
	mappedColumns := make(map[string]bool, len(entries))
	for _, col := range entries {
		mappedColumns[col] = true
	}

	records := make([]Record, 0, len(table.Rows))
	var failures []RowError

	for i, row := range table.Rows {
		record, rowErrs := n.normalizeRow(i, row, idx, entries, mappedColumns)
		if n.opts.Strict && len(rowErrs) > 0 {
			failures = append(failures, rowErrs...)
			continue
		}
		records = append(records, record)
	}

	return records, failures, nil
}

// NormalizeToTable is Normalize for callers preferring tabular consumption.
func (n *Normalizer) NormalizeToTable(table Table) (Table, []RowError, error) {
	records, failures, err := n.Normalize(table)
	if err != nil {
		return Table{}, nil, err
	}
	return Project(records), failures, nil
}

// timeFamilies pairs each minutes field with the seconds field it backfills.
var timeFamilies = []struct {
	secondsField string
	minutesField string
}{
	{FieldChipTimeSeconds, FieldChipTimeMinutes},
	{FieldGunTimeSeconds, FieldGunTimeMinutes},
	{FieldFinishTimeSeconds, FieldFinishTimeMinutes},
}

func (n *Normalizer) normalizeRow(
	rowIdx int,
	row []string,
	idx map[string]int,
	entries map[string]string,
	mappedColumns map[string]bool,
) (Record, []RowError) {
	var rowErrs []RowError
	fail := func(field, reason string) {
		rowErrs = append(rowErrs, RowError{Row: rowIdx, Field: field, Reason: reason})
	}

	raw := make(map[string]string, len(entries))
	for _, field := range mappingFieldOrder {
		col, ok := entries[field]
		if !ok {
			continue
		}
		if v := cell(row, idx, col); v != "" {
			raw[field] = v
		}
	}

	var candidate Record

	// A non-finish marker anywhere in the mapped values decides the status
	// up front; an explicitly mapped status column still wins below.
	markerStatus := detectMarkerStatus(raw)

	if v, ok := raw[FieldRaceStatus]; ok {
		if status := ParseRaceStatus(v); status != "" {
			candidate.RaceStatus = status
		} else {
			fail(FieldRaceStatus, fmt.Sprintf("unrecognized status %q", v))
		}
	}
	if candidate.RaceStatus == "" {
		candidate.RaceStatus = markerStatus
	}

	for field, dst := range map[string]**int{
		FieldPositionOverall:  &candidate.PositionOverall,
		FieldPositionGender:   &candidate.PositionGender,
		FieldPositionCategory: &candidate.PositionCategory,
	} {
		if v, ok := raw[field]; ok {
			if parsed, err := parseIntCell(v); err != nil {
				fail(field, err.Error())
			} else {
				*dst = &parsed
			}
		}
	}

	candidate.Name = raw[FieldName]
	if candidate.Name == "" {
		candidate.Name = combineSplitName(row, idx)
	}
	candidate.BibNumber = raw[FieldBibNumber]

	if v, ok := raw[FieldGender]; ok {
		if g := ParseGender(v); g != "" {
			candidate.Gender = g
		} else {
			fail(FieldGender, fmt.Sprintf("unrecognized gender %q", v))
		}
	}

	if v, ok := raw[FieldClub]; ok {
		candidate.Club = NormalizeClubName(v)
	}

	if v, ok := raw[FieldAgeCategory]; ok {
		category, inferred := ParseAgeCategory(v, candidate.Gender)
		candidate.AgeCategory = category
		if candidate.Gender == "" && inferred != "" {
			candidate.Gender = inferred
		}
	}
	n.applyCategoryDefaults(&candidate)

	for _, family := range timeFamilies {
		if v, ok := raw[family.secondsField]; ok {
			seconds, err := n.parseTimeCell(v)
			switch {
			case err == nil:
				*secondsSlot(&candidate, family.secondsField) = &seconds
			case isNonFinish(err):
				if candidate.RaceStatus == "" {
					candidate.RaceStatus = nonFinishStatus(err)
				}
			default:
				fail(family.secondsField, err.Error())
			}
		}
		if v, ok := raw[family.minutesField]; ok {
			seconds, err := n.parseTimeCell(v)
			switch {
			case err == nil:
				minutes := seconds / 60
				// A raw colon time in a minutes column carries seconds
				// precision, so the seconds field is backfilled too.
				if strings.Contains(v, ":") {
					*secondsSlot(&candidate, family.secondsField) = &seconds
					*minutesSlot(&candidate, family.minutesField) = &minutes
				} else {
					direct := seconds
					*minutesSlot(&candidate, family.minutesField) = &direct
				}
			case isNonFinish(err):
				if candidate.RaceStatus == "" {
					candidate.RaceStatus = nonFinishStatus(err)
				}
			default:
				fail(family.minutesField, err.Error())
			}
		}
	}

	candidate.RaceName = firstNonEmpty(raw[FieldRaceName], n.opts.RaceName)
	candidate.RaceDate = firstNonEmpty(raw[FieldRaceDate], n.opts.RaceDate)

	if v, ok := raw[FieldRaceYear]; ok {
		if year, err := parseIntCell(v); err != nil {
			fail(FieldRaceYear, err.Error())
		} else {
			candidate.RaceYear = &year
		}
	}
	if candidate.RaceYear == nil && n.opts.RaceYear != 0 {
		year := n.opts.RaceYear
		candidate.RaceYear = &year
	}

	if v, ok := raw[FieldRaceCategory]; ok {
		rc := RaceCategory(strings.ToLower(strings.TrimSpace(v)))
		if raceCategories[rc] {
			candidate.RaceCategory = rc
		} else {
			fail(FieldRaceCategory, fmt.Sprintf("unrecognized race category %q", v))
		}
	}
	if candidate.RaceCategory == "" {
		candidate.RaceCategory = n.opts.RaceCategory
	}

	candidate.Metadata = collectMetadata(row, idx, mappedColumns)

	record, err := NewRecord(candidate)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			fail(vErr.Field, vErr.Reason)
			// Non-strict: downgrade the offending field and rebuild.
			clearField(&candidate, vErr.Field)
			if record, err = NewRecord(candidate); err != nil {
				fail("record", err.Error())
				return Record{}, rowErrs
			}
		} else {
			fail("record", err.Error())
			return Record{}, rowErrs
		}
	}

	return record, rowErrs
}

// parseTimeCell accepts either a plain number (already in the column's unit)
// or a time string handled by the configured TimeParser. For time strings
// the returned value is in seconds.
func (n *Normalizer) parseTimeCell(v string) (float64, error) {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if f < 0 {
			return 0, &ParseError{Raw: v, Reason: "negative time"}
		}
		return f, nil
	}
	return n.parser.Parse(v)
}

func (n *Normalizer) applyCategoryDefaults(candidate *Record) {
	if candidate.AgeCategory != "" || n.opts.DefaultAgeCategory == "" {
		return
	}
	candidate.AgeCategory = n.opts.DefaultAgeCategory
	if candidate.Gender == "" {
		if n.opts.DefaultGender != "" {
			candidate.Gender = n.opts.DefaultGender
		} else if g := genderFromCategory(candidate.AgeCategory); g != "" {
			candidate.Gender = g
		}
	}
}

// detectMarkerStatus scans mapped raw values for non-finish tokens, in
// field-processing order so the result is deterministic.
func detectMarkerStatus(raw map[string]string) RaceStatus {
	for _, field := range mappingFieldOrder {
		if field == FieldRaceStatus {
			continue
		}
		v, ok := raw[field]
		if !ok {
			continue
		}
		upper := strings.ToUpper(v)
		switch {
		case strings.Contains(upper, "DNF"):
			return StatusDNF
		case strings.Contains(upper, "DNS"):
			return StatusDNS
		case strings.Contains(upper, "DSQ"):
			return StatusDSQ
		}
	}
	return ""
}

// combineSplitName assembles "Surname Firstname" from split name columns
// when no single name column is mapped.
func combineSplitName(row []string, idx map[string]int) string {
	var first, last string
	for header, i := range idx {
		if i >= len(row) {
			continue
		}
		lower := strings.ToLower(header)
		switch {
		case strings.Contains(lower, "firstname") || strings.Contains(lower, "first name"):
			first = strings.TrimSpace(row[i])
		case strings.Contains(lower, "surname") || strings.Contains(lower, "last name"):
			last = strings.TrimSpace(row[i])
		}
	}
	parts := make([]string, 0, 2)
	if last != "" {
		parts = append(parts, last)
	}
	if first != "" {
		parts = append(parts, first)
	}
	return strings.Join(parts, " ")
}

func collectMetadata(row []string, idx map[string]int, mappedColumns map[string]bool) map[string]string {
	var meta map[string]string
	for header, i := range idx {
		if mappedColumns[header] || i >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[i])
		if v == "" {
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[header] = v
	}
	return meta
}

func parseIntCell(v string) (int, error) {
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	// Sources exported from spreadsheets render integers as "1.0".
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f), nil
	}
	return 0, fmt.Errorf("not an integer: %q", v)
}

func secondsSlot(r *Record, field string) **float64 {
	switch field {
	case FieldChipTimeSeconds:
		return &r.ChipTimeSeconds
	case FieldGunTimeSeconds:
		return &r.GunTimeSeconds
	default:
		return &r.FinishTimeSeconds
	}
}

func minutesSlot(r *Record, field string) **float64 {
	switch field {
	case FieldChipTimeMinutes:
		return &r.ChipTimeMinutes
	case FieldGunTimeMinutes:
		return &r.GunTimeMinutes
	default:
		return &r.FinishTimeMinutes
	}
}

func clearField(r *Record, field string) {
	switch field {
	case FieldPositionOverall:
		r.PositionOverall = nil
	case FieldPositionGender:
		r.PositionGender = nil
	case FieldPositionCategory:
		r.PositionCategory = nil
	case FieldGender:
		r.Gender = ""
	case FieldRaceStatus:
		r.RaceStatus = ""
	case FieldRaceCategory:
		r.RaceCategory = ""
	case FieldFinishTimeSeconds:
		r.FinishTimeSeconds = nil
	case FieldFinishTimeMinutes:
		r.FinishTimeMinutes = nil
	case FieldChipTimeSeconds:
		r.ChipTimeSeconds = nil
	case FieldChipTimeMinutes:
		r.ChipTimeMinutes = nil
	case FieldGunTimeSeconds:
		r.GunTimeSeconds = nil
	case FieldGunTimeMinutes:
		r.GunTimeMinutes = nil
	}
}

func isNonFinish(err error) bool {
	var nf *NonFinishError
	return errors.As(err, &nf)
}

func nonFinishStatus(err error) RaceStatus {
	var nf *NonFinishError
	if errors.As(err, &nf) {
		return nf.Status
	}
	return StatusUnknown
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
