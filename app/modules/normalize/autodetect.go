package normalize

import (
	"regexp"
	"strings"
)

// fieldDetector owns the ordered pattern list for one canonical field.
// Patterns match case-insensitively against the whole header; a header
// matching any pattern in the list is a candidate.
type fieldDetector struct {
	field    string
	patterns []*regexp.Regexp
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// pairPattern matches headers carrying both a time-family token and a unit
// token in either order, e.g. "Chip Time (seconds)" or "Seconds (chip)".
func pairPattern(family, unit string) string {
	return "(" + family + ").*(" + unit + ")|(" + unit + ").*(" + family + ")"
}

// detectionTable is static configuration: the fields are processed in this
// exact order (position, identity, time, race metadata), and within a field
// the first header in the input's original order wins. A header claimed by
// one field is not offered to later fields.
var detectionTable = []fieldDetector{
	{FieldPositionOverall, compilePatterns(
		`position.*overall`, `^position$`, `^posn?\.?$`, `^place$`, `^rank$`,
	)},
	{FieldPositionGender, compilePatterns(
		`position.*gender`, `gender.*pos`,
	)},
	{FieldPositionCategory, compilePatterns(
		`position.*cat`, `cat(egory)?.*pos`,
	)},
	{FieldName, compilePatterns(
		`^name$`, `runner`, `athlete`, `participant`, `^full ?name$`,
	)},
	{FieldBibNumber, compilePatterns(
		`bib`, `race ?no`, `^number$`, `^no\.?$`,
	)},
	{FieldGender, compilePatterns(
		`^gender$`, `^sex$`,
	)},
	{FieldAgeCategory, compilePatterns(
		`^cat(egory)?\.?:?$`, `age.*cat`, `age.*group`, `^class$`, `category`,
	)},
	{FieldClub, compilePatterns(
		`club`, `^team$`, `affiliation`,
	)},
	{FieldChipTimeSeconds, compilePatterns(
		pairPattern(`chip|net`, `sec`), `^chip ?time$`, `^net ?time$`,
	)},
	{FieldChipTimeMinutes, compilePatterns(
		pairPattern(`chip|net`, `min`),
	)},
	{FieldGunTimeSeconds, compilePatterns(
		pairPattern(`gun|gross`, `sec`), `^gun ?time$`, `^gross ?time$`,
	)},
	{FieldGunTimeMinutes, compilePatterns(
		pairPattern(`gun|gross`, `min`),
	)},
	{FieldFinishTimeSeconds, compilePatterns(
		pairPattern(`finish|time`, `sec`),
	)},
	{FieldFinishTimeMinutes, compilePatterns(
		pairPattern(`finish|time`, `min`),
	)},
	{FieldFinishTime, compilePatterns(
		`^time$`, `^finish( ?time)?$`, `final.*time`, `elapsed`,
	)},
	{FieldRaceDate, compilePatterns(
		`^date$`, `race.*date`,
	)},
	{FieldRaceYear, compilePatterns(
		`^year$`,
	)},
	{FieldRaceStatus, compilePatterns(
		`^status$`, `^result$`, `dnf`, `dns`,
	)},
}

// DetectColumns matches source column headers against the per-field pattern
// libraries and returns the detected mapping. Detection is deterministic:
// fixed field order, first matching header in input order wins, and a
// claimed header is never reused for a later field. A field with no match is
// simply left unmapped.
func DetectColumns(headers []string) ColumnMapping {
	var mapping ColumnMapping
	claimed := make([]bool, len(headers))

	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	// Sources with split Firstname/Surname columns get their name assembled
	// during row normalization instead of mapping either column to name.
	splitName := hasSplitNameColumns(lowered)

	for _, det := range detectionTable {
		if det.field == FieldName && splitName {
			continue
		}
		for i, header := range lowered {
			if claimed[i] || !matchesAny(det.patterns, header) {
				continue
			}
			*mapping.slot(det.field) = headers[i]
			claimed[i] = true
			break
		}
	}

	return mapping
}

func matchesAny(patterns []*regexp.Regexp, header string) bool {
	for _, p := range patterns {
		if p.MatchString(header) {
			return true
		}
	}
	return false
}

func hasSplitNameColumns(lowered []string) bool {
	var first, last bool
	for _, h := range lowered {
		if strings.Contains(h, "firstname") || strings.Contains(h, "first name") {
			first = true
		}
		if strings.Contains(h, "surname") || strings.Contains(h, "last name") {
			last = true
		}
	}
	return first && last
}
