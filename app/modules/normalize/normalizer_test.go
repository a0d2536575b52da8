package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func fellRaceTable() Table {
	return Table{
		Headers: []string{"Pos", "Name", "Club", "Time", "Cat"},
		Rows: [][]string{
			{"1", "A", "Carnethy HRC", "31:45", "V"},
			{"2", "B", "U/A", "DNF", "FV"},
		},
	}
}

func TestNormalizer_EndToEnd(t *testing.T) {
	n := New(Options{AutoDetect: true, TimeFormat: FormatMS})
	records, failures, err := n.Normalize(fellRaceTable())
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, 1, *first.PositionOverall)
	require.Equal(t, "A", first.Name)
	require.Equal(t, "Carnethy", first.Club)
	require.Equal(t, 1905.0, *first.FinishTimeSeconds)
	require.InDelta(t, 31.75, *first.FinishTimeMinutes, 1e-9)
	require.Equal(t, "M40", first.AgeCategory)
	require.Equal(t, GenderMale, first.Gender)
	require.Equal(t, StatusFinished, first.RaceStatus)

	second := records[1]
	require.Equal(t, 2, *second.PositionOverall)
	require.Equal(t, UnattachedClub, second.Club)
	require.Equal(t, StatusDNF, second.RaceStatus)
	require.False(t, second.HasTime())
	require.Equal(t, "F40", second.AgeCategory)
	require.Equal(t, GenderFemale, second.Gender)
}

func TestNormalizer_StrictVsNonStrict(t *testing.T) {
	table := Table{
		Headers: []string{"Pos", "Name", "Time"},
		Rows:    [][]string{{"1", "A", "not a time"}},
	}

	lenient := New(Options{AutoDetect: true, TimeFormat: FormatMS})
	records, failures, err := lenient.Normalize(table)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, records, 1)
	require.Nil(t, records[0].FinishTimeSeconds)
	require.Equal(t, "A", records[0].Name)

	strict := New(Options{AutoDetect: true, TimeFormat: FormatMS, Strict: true})
	records, failures, err = strict.Normalize(table)
	require.NoError(t, err)
	require.Empty(t, records)
	require.Len(t, failures, 1)
	require.Equal(t, 0, failures[0].Row)
	require.Equal(t, FieldFinishTimeSeconds, failures[0].Field)
	require.NotEmpty(t, failures[0].Reason)
}

func TestNormalizer_ExplicitMappingWinsOverDetection(t *testing.T) {
	table := Table{
		Headers: []string{"Name", "Time", "Official"},
		Rows:    [][]string{{"A", "99:99", "31:45"}},
	}

	n := New(Options{
		AutoDetect: true,
		TimeFormat: FormatMS,
		Mapping:    ColumnMapping{FinishTimeSeconds: "Official"},
	})
	records, _, err := n.Normalize(table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 1905.0, *records[0].FinishTimeSeconds)
}

func TestNormalizer_MetadataPreservesUnmappedColumns(t *testing.T) {
	table := Table{
		Headers: []string{"Name", "Time", "Shoe Sponsor", "Notes"},
		Rows: [][]string{
			{"A", "31:45", "Walsh", "led from the start"},
			{"B", "32:00", "", "second claim"},
		},
	}

	n := New(Options{AutoDetect: true, TimeFormat: FormatMS})
	records, _, err := n.Normalize(table)
	require.NoError(t, err)

	require.Equal(t, map[string]string{
		"Shoe Sponsor": "Walsh",
		"Notes":        "led from the start",
	}, records[0].Metadata)
	// Empty cells are not carried; only real values survive.
	require.Equal(t, map[string]string{"Notes": "second claim"}, records[1].Metadata)
}

func TestNormalizer_RaceMetadataDefaults(t *testing.T) {
	table := Table{
		Headers: []string{"Name", "Time"},
		Rows:    [][]string{{"A", "31:45"}},
	}

	n := New(Options{
		AutoDetect:   true,
		TimeFormat:   FormatMS,
		RaceName:     "Carnethy 5",
		RaceYear:     2024,
		RaceDate:     "2024-02-10",
		RaceCategory: CategoryFellRace,
	})
	records, _, err := n.Normalize(table)
	require.NoError(t, err)
	require.Equal(t, "Carnethy 5", records[0].RaceName)
	require.Equal(t, 2024, *records[0].RaceYear)
	require.Equal(t, "2024-02-10", records[0].RaceDate)
	require.Equal(t, CategoryFellRace, records[0].RaceCategory)
}

func TestNormalizer_DefaultAgeCategory(t *testing.T) {
	table := Table{
		Headers: []string{"Name", "Time", "Cat"},
		Rows: [][]string{
			{"A", "31:45", ""},
			{"B", "32:10", "FV"},
		},
	}

	n := New(Options{AutoDetect: true, TimeFormat: FormatMS, DefaultAgeCategory: "M"})
	records, _, err := n.Normalize(table)
	require.NoError(t, err)
	require.Equal(t, "M", records[0].AgeCategory)
	require.Equal(t, GenderMale, records[0].Gender)
	// A populated cell is never overwritten by the default.
	require.Equal(t, "F40", records[1].AgeCategory)
}

func TestNormalizer_SplitNameColumns(t *testing.T) {
	table := Table{
		Headers: []string{"Surname", "Firstname", "Time"},
		Rows:    [][]string{{"Hope", "Jill", "31:45"}},
	}

	n := New(Options{AutoDetect: true, TimeFormat: FormatMS})
	records, _, err := n.Normalize(table)
	require.NoError(t, err)
	require.Equal(t, "Hope Jill", records[0].Name)
}

func TestNormalizer_MinutesColumn(t *testing.T) {
	table := Table{
		Headers: []string{"Name", "Chip Time (minutes)"},
		Rows:    [][]string{{"A", "31.75"}, {"B", "31:45"}},
	}

	n := New(Options{AutoDetect: true, TimeFormat: FormatMS})
	records, _, err := n.Normalize(table)
	require.NoError(t, err)

	// Plain numbers are already in the column's unit.
	require.InDelta(t, 31.75, *records[0].ChipTimeMinutes, 1e-9)
	require.InDelta(t, 1905, *records[0].ChipTimeSeconds, 1e-9)

	// Colon times are parsed to seconds and converted.
	require.InDelta(t, 31.75, *records[1].ChipTimeMinutes, 1e-9)
	require.InDelta(t, 1905, *records[1].ChipTimeSeconds, 1e-9)
}

func TestNormalizer_EmptyTableIsFatal(t *testing.T) {
	n := New(Options{AutoDetect: true})
	_, _, err := n.Normalize(Table{})
	require.Error(t, err)
}

func TestNormalizer_PreservesRowOrder(t *testing.T) {
	table := Table{
		Headers: []string{"Name", "Time"},
		Rows: [][]string{
			{"C", "33:00"}, {"A", "31:00"}, {"B", "32:00"},
		},
	}

	n := New(Options{AutoDetect: true, TimeFormat: FormatMS})
	records, _, err := n.Normalize(table)
	require.NoError(t, err)

	var names []string
	for _, r := range records {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{"C", "A", "B"}, names)
}

func TestNormalizer_TabularProjection(t *testing.T) {
	n := New(Options{AutoDetect: true, TimeFormat: FormatMS})
	projected, failures, err := n.NormalizeToTable(Table{
		Headers: []string{"Pos", "Name", "Time", "Notes"},
		Rows:    [][]string{{"1", "A", "31:45", "course record"}},
	})
	require.NoError(t, err)
	require.Empty(t, failures)

	require.Contains(t, projected.Headers, "Notes")
	row := projected.Rows[0]
	got := map[string]string{}
	for i, h := range projected.Headers {
		got[h] = row[i]
	}
	require.Equal(t, "1", got[FieldPositionOverall])
	require.Equal(t, "A", got[FieldName])
	require.Equal(t, "1905", got[FieldFinishTimeSeconds])
	require.Equal(t, "course record", got["Notes"])
}

func TestNormalizer_RepeatedRunsAgree(t *testing.T) {
	n := New(Options{AutoDetect: true, TimeFormat: FormatMS})
	first, _, err := n.Normalize(fellRaceTable())
	require.NoError(t, err)
	second, _, err := n.Normalize(fellRaceTable())
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("normalization not deterministic (-first +second):\n%s", diff)
	}
}
