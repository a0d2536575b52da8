package normalize

// Canonical field names of the normalized schema.
const (
	FieldPositionOverall   = "position_overall"
	FieldPositionGender    = "position_gender"
	FieldPositionCategory  = "position_category"
	FieldName              = "name"
	FieldBibNumber         = "bib_number"
	FieldGender            = "gender"
	FieldAgeCategory       = "age_category"
	FieldClub              = "club"
	FieldFinishTime        = "finish_time"
	FieldFinishTimeSeconds = "finish_time_seconds"
	FieldFinishTimeMinutes = "finish_time_minutes"
	FieldChipTimeSeconds   = "chip_time_seconds"
	FieldChipTimeMinutes   = "chip_time_minutes"
	FieldGunTimeSeconds    = "gun_time_seconds"
	FieldGunTimeMinutes    = "gun_time_minutes"
	FieldRaceName          = "race_name"
	FieldRaceDate          = "race_date"
	FieldRaceYear          = "race_year"
	FieldRaceCategory      = "race_category"
	FieldRaceStatus        = "race_status"
)

// ColumnMapping associates canonical field names with source column names.
// Every entry is optional; unset fields are auto-detected (when enabled) or
// left unmapped. FinishTime is a generic time column treated as seconds once
// parsed.
type ColumnMapping struct {
	PositionOverall   string `yaml:"position_overall,omitempty" json:"position_overall,omitempty"`
	PositionGender    string `yaml:"position_gender,omitempty" json:"position_gender,omitempty"`
	PositionCategory  string `yaml:"position_category,omitempty" json:"position_category,omitempty"`
	Name              string `yaml:"name,omitempty" json:"name,omitempty"`
	BibNumber         string `yaml:"bib_number,omitempty" json:"bib_number,omitempty"`
	Gender            string `yaml:"gender,omitempty" json:"gender,omitempty"`
	AgeCategory       string `yaml:"age_category,omitempty" json:"age_category,omitempty"`
	Club              string `yaml:"club,omitempty" json:"club,omitempty"`
	FinishTime        string `yaml:"finish_time,omitempty" json:"finish_time,omitempty"`
	FinishTimeSeconds string `yaml:"finish_time_seconds,omitempty" json:"finish_time_seconds,omitempty"`
	FinishTimeMinutes string `yaml:"finish_time_minutes,omitempty" json:"finish_time_minutes,omitempty"`
	ChipTimeSeconds   string `yaml:"chip_time_seconds,omitempty" json:"chip_time_seconds,omitempty"`
	ChipTimeMinutes   string `yaml:"chip_time_minutes,omitempty" json:"chip_time_minutes,omitempty"`
	GunTimeSeconds    string `yaml:"gun_time_seconds,omitempty" json:"gun_time_seconds,omitempty"`
	GunTimeMinutes    string `yaml:"gun_time_minutes,omitempty" json:"gun_time_minutes,omitempty"`
	RaceName          string `yaml:"race_name,omitempty" json:"race_name,omitempty"`
	RaceDate          string `yaml:"race_date,omitempty" json:"race_date,omitempty"`
	RaceYear          string `yaml:"race_year,omitempty" json:"race_year,omitempty"`
	RaceCategory      string `yaml:"race_category,omitempty" json:"race_category,omitempty"`
	RaceStatus        string `yaml:"race_status,omitempty" json:"race_status,omitempty"`
}

// slot returns a pointer to the entry for a canonical field name.
func (m *ColumnMapping) slot(field string) *string {
	switch field {
	case FieldPositionOverall:
		return &m.PositionOverall
	case FieldPositionGender:
		return &m.PositionGender
	case FieldPositionCategory:
		return &m.PositionCategory
	case FieldName:
		return &m.Name
	case FieldBibNumber:
		return &m.BibNumber
	case FieldGender:
		return &m.Gender
	case FieldAgeCategory:
		return &m.AgeCategory
	case FieldClub:
		return &m.Club
	case FieldFinishTime:
		return &m.FinishTime
	case FieldFinishTimeSeconds:
		return &m.FinishTimeSeconds
	case FieldFinishTimeMinutes:
		return &m.FinishTimeMinutes
	case FieldChipTimeSeconds:
		return &m.ChipTimeSeconds
	case FieldChipTimeMinutes:
		return &m.ChipTimeMinutes
	case FieldGunTimeSeconds:
		return &m.GunTimeSeconds
	case FieldGunTimeMinutes:
		return &m.GunTimeMinutes
	case FieldRaceName:
		return &m.RaceName
	case FieldRaceDate:
		return &m.RaceDate
	case FieldRaceYear:
		return &m.RaceYear
	case FieldRaceCategory:
		return &m.RaceCategory
	case FieldRaceStatus:
		return &m.RaceStatus
	}
	return nil
}

// mappingFieldOrder is the deterministic field-processing order shared by
// auto-detection and extraction: position fields, identity fields, time
// fields, then race metadata fields.
var mappingFieldOrder = []string{
	FieldPositionOverall,
	FieldPositionGender,
	FieldPositionCategory,
	FieldName,
	FieldBibNumber,
	FieldGender,
	FieldAgeCategory,
	FieldClub,
	FieldChipTimeSeconds,
	FieldChipTimeMinutes,
	FieldGunTimeSeconds,
	FieldGunTimeMinutes,
	FieldFinishTimeSeconds,
	FieldFinishTimeMinutes,
	FieldFinishTime,
	FieldRaceName,
	FieldRaceDate,
	FieldRaceYear,
	FieldRaceCategory,
	FieldRaceStatus,
}

// Entries returns the set canonical-field -> source-column pairs. The
// generic finish_time entry is folded into finish_time_seconds unless that
// is already mapped.
func (m ColumnMapping) Entries() map[string]string {
	out := make(map[string]string)
	for _, field := range mappingFieldOrder {
		if col := *m.slot(field); col != "" {
			out[field] = col
		}
	}
	if col, ok := out[FieldFinishTime]; ok {
		if _, taken := out[FieldFinishTimeSeconds]; !taken {
			out[FieldFinishTimeSeconds] = col
		}
		delete(out, FieldFinishTime)
	}
	return out
}

// IsEmpty reports whether no field is mapped.
func (m ColumnMapping) IsEmpty() bool {
	for _, field := range mappingFieldOrder {
		if *m.slot(field) != "" {
			return false
		}
	}
	return true
}

// merged returns a copy of m with unset entries filled from detected.
func (m ColumnMapping) merged(detected ColumnMapping) ColumnMapping {
	out := m
	for _, field := range mappingFieldOrder {
		if *out.slot(field) == "" {
			*out.slot(field) = *detected.slot(field)
		}
	}
	return out
}
