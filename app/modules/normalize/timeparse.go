package normalize

import (
	"strconv"
	"strings"
)

// TimeFormat selects how a raw time string is interpreted.
type TimeFormat string

const (
	// FormatHMS parses "HH:MM:SS" strings.
	FormatHMS TimeFormat = "HH:MM:SS"
	// FormatMS parses "MM:SS" strings.
	FormatMS TimeFormat = "MM:SS"
	// FormatSeconds coerces plain numbers.
	FormatSeconds TimeFormat = "seconds"
)

// nonFinishMarkers short-circuit time parsing. The caller maps the status to
// race_status rather than treating the cell as a parse failure.
var nonFinishMarkers = map[string]RaceStatus{
	"DNF":            StatusDNF,
	"DID NOT FINISH": StatusDNF,
	"DID-NOT-FINISH": StatusDNF,
	"DNS":            StatusDNS,
	"DID NOT START":  StatusDNS,
	"DID-NOT-START":  StatusDNS,
	"DSQ":            StatusDSQ,
	"DQ":             StatusDSQ,
	"DISQUALIFIED":   StatusDSQ,
}

// TimeParser parses time-like cells into seconds under a configured format.
type TimeParser struct {
	Format TimeFormat
}

// Parse converts raw into seconds. Malformed colon artifacts are corrected
// before structural parsing. A recognized non-finish marker returns a
// *NonFinishError; anything else unparseable returns a *ParseError.
func (p TimeParser) Parse(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ParseError{Raw: raw, Reason: "empty value"}
	}

	if status, ok := nonFinishMarkers[strings.ToUpper(s)]; ok {
		return 0, &NonFinishError{Status: status}
	}

	s = fixMalformedTime(s)
	if s == "" {
		return 0, &ParseError{Raw: raw, Reason: "nothing left after correction"}
	}

	if p.Format == FormatSeconds {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &ParseError{Raw: raw, Reason: "not a number"}
		}
		return v, nil
	}

	parts := strings.Split(s, ":")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	// Each colon format tolerates the other's arity: result tables routinely
	// mix "MM:SS" and "HH:MM:SS" rows within one column.
	switch len(parts) {
	case 2:
		m, errM := strconv.ParseFloat(parts[0], 64)
		sec, errS := strconv.ParseFloat(parts[1], 64)
		if errM != nil || errS != nil {
			return 0, &ParseError{Raw: raw, Reason: "non-numeric segment"}
		}
		return m*60 + sec, nil
	case 3:
		h, errH := strconv.ParseFloat(parts[0], 64)
		m, errM := strconv.ParseFloat(parts[1], 64)
		sec, errS := strconv.ParseFloat(parts[2], 64)
		if errH != nil || errM != nil || errS != nil {
			return 0, &ParseError{Raw: raw, Reason: "non-numeric segment"}
		}
		return h*3600 + m*60 + sec, nil
	default:
		return 0, &ParseError{Raw: raw, Reason: "expected MM:SS or HH:MM:SS"}
	}
}

// maxFixIterations caps the correction loop so chained malformations
// terminate even on adversarial input.
const maxFixIterations = 5

// fixMalformedTime repairs common transcription artifacts before structural
// parsing: "42::51" -> "42:51", ":40:56" -> "40:56", "1:2:3:" -> "1:2:3",
// and dot-separated times like "1.00.24" -> "1:00:24". The colon rewrites run
// as a fixed-point loop over an ordered rule list.
func fixMalformedTime(s string) string {
	s = strings.TrimSpace(s)

	if !strings.Contains(s, ":") && strings.Contains(s, ".") {
		parts := strings.Split(s, ".")
		if len(parts) >= 2 && len(parts) <= 3 && allDigits(parts) {
			s = strings.Join(parts, ":")
		}
	}

	rules := []func(string) string{
		func(s string) string { return strings.ReplaceAll(s, "::", ":") },
		func(s string) string { return strings.TrimPrefix(s, ":") },
		func(s string) string { return strings.TrimSuffix(s, ":") },
	}

	for i := 0; i < maxFixIterations; i++ {
		before := s
		for _, rule := range rules {
			s = rule(s)
		}
		if s == before {
			break
		}
	}

	return s
}

func allDigits(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
