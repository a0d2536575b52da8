package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAgeCategory(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		hint         Gender
		wantCategory string
		wantInferred Gender
	}{
		{name: "veteran with male hint", raw: "V", hint: GenderMale, wantCategory: "M40", wantInferred: ""},
		{name: "veteran without hint implies male", raw: "V", wantCategory: "M40", wantInferred: GenderMale},
		{name: "veteran with female hint", raw: "V", hint: GenderFemale, wantCategory: "F40", wantInferred: ""},
		{name: "female veteran", raw: "FV", wantCategory: "F40", wantInferred: GenderFemale},
		{name: "female super veteran", raw: "FSV", wantCategory: "F50", wantInferred: GenderFemale},
		{name: "super veteran", raw: "SV", wantCategory: "M50", wantInferred: GenderMale},
		{name: "super super veteran", raw: "SSV", wantCategory: "M60", wantInferred: GenderMale},
		{name: "lady veteran", raw: "LV", wantCategory: "F40", wantInferred: GenderFemale},
		{name: "lowercase token", raw: "fv", wantCategory: "F40", wantInferred: GenderFemale},
		{name: "already canonical with hint", raw: "M40", hint: GenderMale, wantCategory: "M40", wantInferred: ""},
		{name: "already canonical without hint", raw: "F50", wantCategory: "F50", wantInferred: GenderFemale},
		{name: "canonical range", raw: "F35-39", wantCategory: "F35-39", wantInferred: GenderFemale},
		{name: "junior", raw: "J", wantCategory: "U20", wantInferred: ""},
		{name: "under twenty", raw: "U20", wantCategory: "U20", wantInferred: ""},
		{name: "gender only male", raw: "M", wantCategory: "M", wantInferred: GenderMale},
		{name: "gender only lady", raw: "L", wantCategory: "F", wantInferred: GenderFemale},
		{name: "unrecognized passes through", raw: "Clydesdale", wantCategory: "Clydesdale", wantInferred: ""},
		{name: "unrecognized is trimmed", raw: "  Wheelchair  ", wantCategory: "Wheelchair", wantInferred: ""},
		{name: "empty", raw: "", wantCategory: "", wantInferred: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, inferred := ParseAgeCategory(tt.raw, tt.hint)
			require.Equal(t, tt.wantCategory, category)
			require.Equal(t, tt.wantInferred, inferred)
		})
	}
}

func TestParseAgeCategory_HintWinsOnConflict(t *testing.T) {
	// The explicit field wins and the mismatch is not surfaced.
	category, inferred := ParseAgeCategory("M40", GenderFemale)
	require.Equal(t, "M40", category)
	require.Equal(t, Gender(""), inferred)
}
