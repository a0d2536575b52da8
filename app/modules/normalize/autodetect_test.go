package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    ColumnMapping
	}{
		{
			name:    "fell race sheet",
			headers: []string{"Pos", "Name", "Club", "Time", "Cat"},
			want: ColumnMapping{
				PositionOverall: "Pos",
				Name:            "Name",
				Club:            "Club",
				FinishTime:      "Time",
				AgeCategory:     "Cat",
			},
		},
		{
			name:    "big city marathon export",
			headers: []string{"Position (Overall)", "Position (Gender)", "Name", "Bib", "Chip Time (seconds)", "Gun Time (seconds)", "Category", "Sex"},
			want: ColumnMapping{
				PositionOverall: "Position (Overall)",
				PositionGender:  "Position (Gender)",
				Name:            "Name",
				BibNumber:       "Bib",
				ChipTimeSeconds: "Chip Time (seconds)",
				GunTimeSeconds:  "Gun Time (seconds)",
				AgeCategory:     "Category",
				Gender:          "Sex",
			},
		},
		{
			name:    "family and unit tokens in either order",
			headers: []string{"Seconds (chip)", "Minutes (gun)"},
			want: ColumnMapping{
				ChipTimeSeconds: "Seconds (chip)",
				GunTimeMinutes:  "Minutes (gun)",
			},
		},
		{
			name:    "split name columns are left for row assembly",
			headers: []string{"Surname", "Firstname", "Club", "Time"},
			want: ColumnMapping{
				Club:       "Club",
				FinishTime: "Time",
			},
		},
		{
			name:    "nothing recognizable",
			headers: []string{"Splits", "Notes"},
			want:    ColumnMapping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectColumns(tt.headers)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DetectColumns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectColumns_HeaderClaimedOnce(t *testing.T) {
	// "Time" satisfies both the finish-time patterns and nothing else may
	// reuse it once claimed; the chip column keeps its own header.
	got := DetectColumns([]string{"Time", "Chip Time"})
	require.Equal(t, "Time", got.FinishTime)
	require.Equal(t, "Chip Time", got.ChipTimeSeconds)
}

func TestDetectColumns_FirstHeaderWins(t *testing.T) {
	got := DetectColumns([]string{"Place", "Rank"})
	require.Equal(t, "Place", got.PositionOverall)
	require.Empty(t, got.PositionGender)
}

func TestDetectColumns_Deterministic(t *testing.T) {
	headers := []string{"Pos", "Name", "Club", "Chip Time (seconds)", "Time", "Cat", "Year", "Status"}
	first := DetectColumns(headers)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, DetectColumns(headers))
	}
}
