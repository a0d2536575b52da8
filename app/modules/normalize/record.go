package normalize

import (
	"fmt"
	"strings"
)

// Gender is a standard gender code.
type Gender string

const (
	GenderMale      Gender = "M"
	GenderFemale    Gender = "F"
	GenderNonbinary Gender = "N"
	GenderUnknown   Gender = "U"
)

// ParseGender maps free-text gender values onto the standard codes. It
// returns the zero value for anything it does not recognize.
func ParseGender(raw string) Gender {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M", "MALE":
		return GenderMale
	case "F", "FEMALE", "W", "WOMAN":
		return GenderFemale
	case "N", "NB", "NON_BINARY", "NON-BINARY", "NONBINARY":
		return GenderNonbinary
	case "U", "UNKNOWN":
		return GenderUnknown
	}
	return ""
}

// RaceStatus is a race completion status.
type RaceStatus string

const (
	StatusFinished RaceStatus = "finished"
	StatusDNF      RaceStatus = "dnf"
	StatusDNS      RaceStatus = "dns"
	StatusDSQ      RaceStatus = "dsq"
	StatusUnknown  RaceStatus = "unknown"
)

// ParseRaceStatus maps common status spellings (DNF, "Did Not Start", ...)
// onto a RaceStatus. Unrecognized values map to the zero value.
func ParseRaceStatus(raw string) RaceStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DNF", "DID NOT FINISH", "DID-NOT-FINISH":
		return StatusDNF
	case "DNS", "DID NOT START", "DID-NOT-START":
		return StatusDNS
	case "DSQ", "DQ", "DISQUALIFIED":
		return StatusDSQ
	case "FINISHED", "FINISH", "OK":
		return StatusFinished
	case "UNKNOWN":
		return StatusUnknown
	}
	return ""
}

// IsNonFinish reports whether the status means the runner has no valid time.
func (s RaceStatus) IsNonFinish() bool {
	return s == StatusDNF || s == StatusDNS || s == StatusDSQ
}

// RaceCategory is a standard race type.
type RaceCategory string

const (
	CategoryUltra        RaceCategory = "ultra"
	CategoryMarathon     RaceCategory = "marathon"
	CategoryHalfMarathon RaceCategory = "half_marathon"
	CategoryTenK         RaceCategory = "10k"
	CategoryFiveK        RaceCategory = "5k"
	CategoryParkrun      RaceCategory = "parkrun"
	CategoryFellRace     RaceCategory = "fell_race"
	CategoryRoadRace     RaceCategory = "road_race"
	CategoryUnknown      RaceCategory = "unknown"
)

var raceCategories = map[RaceCategory]bool{
	CategoryUltra:        true,
	CategoryMarathon:     true,
	CategoryHalfMarathon: true,
	CategoryTenK:         true,
	CategoryFiveK:        true,
	CategoryParkrun:      true,
	CategoryFellRace:     true,
	CategoryRoadRace:     true,
	CategoryUnknown:      true,
}

// maxPlausibleSeconds rejects clearly corrupt values (10 days); multi-day
// ultras stay well under it.
const maxPlausibleSeconds = 864000

// Record is one normalized race result. Every field is optional: pointer
// fields and empty strings mean "absent". A Record is built once per source
// row, validated at construction, and not mutated afterwards.
type Record struct {
	PositionOverall  *int `json:"position_overall,omitempty"`
	PositionGender   *int `json:"position_gender,omitempty"`
	PositionCategory *int `json:"position_category,omitempty"`

	Name        string `json:"name,omitempty"`
	BibNumber   string `json:"bib_number,omitempty"`
	Gender      Gender `json:"gender,omitempty"`
	AgeCategory string `json:"age_category,omitempty"`
	Club        string `json:"club,omitempty"`

	RaceStatus RaceStatus `json:"race_status,omitempty"`

	FinishTimeSeconds *float64 `json:"finish_time_seconds,omitempty"`
	FinishTimeMinutes *float64 `json:"finish_time_minutes,omitempty"`
	ChipTimeSeconds   *float64 `json:"chip_time_seconds,omitempty"`
	ChipTimeMinutes   *float64 `json:"chip_time_minutes,omitempty"`
	GunTimeSeconds    *float64 `json:"gun_time_seconds,omitempty"`
	GunTimeMinutes    *float64 `json:"gun_time_minutes,omitempty"`

	RaceName     string       `json:"race_name,omitempty"`
	RaceDate     string       `json:"race_date,omitempty"`
	RaceYear     *int         `json:"race_year,omitempty"`
	RaceCategory RaceCategory `json:"race_category,omitempty"`

	// Metadata holds every unmapped source column verbatim, keyed by the
	// original header, so normalization never loses information.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PreferredTimeSeconds returns the best available time for the record:
// chip, then gun, then finish. The second return is false when no time
// family carries a value.
func (r Record) PreferredTimeSeconds() (float64, bool) {
	for _, v := range []*float64{r.ChipTimeSeconds, r.GunTimeSeconds, r.FinishTimeSeconds} {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

// HasTime reports whether any of the six time fields carries a value.
func (r Record) HasTime() bool {
	for _, v := range []*float64{
		r.FinishTimeSeconds, r.FinishTimeMinutes,
		r.ChipTimeSeconds, r.ChipTimeMinutes,
		r.GunTimeSeconds, r.GunTimeMinutes,
	} {
		if v != nil {
			return true
		}
	}
	return false
}

// NewRecord validates the candidate field values and applies the derivation
// rules, in that order. Construction is two-phase and the derivation order is
// fixed:
//
//  1. each time family fills its absent representation from the present one
//     (minutes = seconds/60, seconds = minutes*60); families where both
//     values were supplied are accepted as given,
//  2. a non-finish status clears every time field,
//  3. an absent status defaults to finished when a time exists and to DNF
//     otherwise,
//  4. an absent gender is derived from the age category when possible.
func NewRecord(candidate Record) (Record, error) {
	if err := candidate.validate(); err != nil {
		return Record{}, err
	}

	r := candidate
	derivePair(&r.FinishTimeSeconds, &r.FinishTimeMinutes)
	derivePair(&r.ChipTimeSeconds, &r.ChipTimeMinutes)
	derivePair(&r.GunTimeSeconds, &r.GunTimeMinutes)

	if r.RaceStatus.IsNonFinish() {
		r.clearTimes()
	}
	if r.RaceStatus == "" {
		if r.HasTime() {
			r.RaceStatus = StatusFinished
		} else {
			r.RaceStatus = StatusDNF
		}
	}

	if r.Gender == "" && r.AgeCategory != "" {
		if g := genderFromCategory(r.AgeCategory); g != "" {
			r.Gender = g
		}
	}

	return r, nil
}

func (r Record) validate() error {
	for _, p := range []struct {
		name  string
		value *int
	}{
		{"position_overall", r.PositionOverall},
		{"position_gender", r.PositionGender},
		{"position_category", r.PositionCategory},
	} {
		if p.value != nil && *p.value < 1 {
			return &ValidationError{Field: p.name, Reason: fmt.Sprintf("must be a positive integer, got %d", *p.value)}
		}
	}

	for _, t := range []struct {
		name  string
		value *float64
	}{
		{"finish_time_seconds", r.FinishTimeSeconds},
		{"finish_time_minutes", r.FinishTimeMinutes},
		{"chip_time_seconds", r.ChipTimeSeconds},
		{"chip_time_minutes", r.ChipTimeMinutes},
		{"gun_time_seconds", r.GunTimeSeconds},
		{"gun_time_minutes", r.GunTimeMinutes},
	} {
		if t.value == nil {
			continue
		}
		if *t.value < 0 {
			return &ValidationError{Field: t.name, Reason: fmt.Sprintf("negative time %.2f", *t.value)}
		}
		if *t.value > maxPlausibleSeconds {
			return &ValidationError{Field: t.name, Reason: fmt.Sprintf("implausible time %.2f", *t.value)}
		}
	}

	if r.Gender != "" {
		switch r.Gender {
		case GenderMale, GenderFemale, GenderNonbinary, GenderUnknown:
		default:
			return &ValidationError{Field: "gender", Reason: fmt.Sprintf("unrecognized code %q", r.Gender)}
		}
	}

	if r.RaceStatus != "" {
		switch r.RaceStatus {
		case StatusFinished, StatusDNF, StatusDNS, StatusDSQ, StatusUnknown:
		default:
			return &ValidationError{Field: "race_status", Reason: fmt.Sprintf("unrecognized status %q", r.RaceStatus)}
		}
	}

	if r.RaceCategory != "" && !raceCategories[r.RaceCategory] {
		return &ValidationError{Field: "race_category", Reason: fmt.Sprintf("unrecognized category %q", r.RaceCategory)}
	}

	return nil
}

func (r *Record) clearTimes() {
	r.FinishTimeSeconds = nil
	r.FinishTimeMinutes = nil
	r.ChipTimeSeconds = nil
	r.ChipTimeMinutes = nil
	r.GunTimeSeconds = nil
	r.GunTimeMinutes = nil
}

// derivePair fills whichever of seconds/minutes is absent from the other.
// When both are present they are left alone: upstream sources round the two
// representations independently and forcing equality would reject good data.
func derivePair(seconds, minutes **float64) {
	switch {
	case *seconds != nil && *minutes == nil:
		m := **seconds / 60
		*minutes = &m
	case *minutes != nil && *seconds == nil:
		s := **minutes * 60
		*seconds = &s
	}
}
