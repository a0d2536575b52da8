package resultsservice

import (
	"context"
	"sort"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
)

// ApplyDerivedPositions fills missing position_gender and position_category
// for the stored results, walking each edition's finished rows in overall
// position order (finish time when no overall position is stored). Positions
// already present are kept. Returns the number of rows written back.
func (s *ResultsService) ApplyDerivedPositions(ctx context.Context, raceName string, year int) (int, error) {
	return withTelemetry(s, ctx, "ApplyDerivedPositions", raceName, func(ctx context.Context) (int, error) {
		rows, err := s.repo.GetResults(ctx, raceName, year)
		if err != nil {
			return 0, err
		}

		updated := derivePositions(rows)
		if len(updated) == 0 {
			return 0, nil
		}

		if err := s.repo.UpdatePositions(ctx, updated); err != nil {
			return 0, err
		}
		return len(updated), nil
	})
}

// positionSortKey orders finished rows for position derivation: stored
// overall position first, then finish time, then everything else.
func positionSortKey(row *resultsdb.Result) (int, float64) {
	if row.PositionOverall != nil {
		return 0, float64(*row.PositionOverall)
	}
	if t, ok := row.ToRecord().PreferredTimeSeconds(); ok {
		return 1, t
	}
	return 2, 0
}

func derivePositions(rows []*resultsdb.Result) []*resultsdb.Result {
	byYear := map[int][]*resultsdb.Result{}
	for _, row := range rows {
		if row.RaceStatus != string(normalize.StatusFinished) {
			continue
		}
		byYear[row.RaceYear] = append(byYear[row.RaceYear], row)
	}

	var updated []*resultsdb.Result
	for _, edition := range byYear {
		sort.SliceStable(edition, func(i, j int) bool {
			ci, vi := positionSortKey(edition[i])
			cj, vj := positionSortKey(edition[j])
			if ci != cj {
				return ci < cj
			}
			return vi < vj
		})

		genderRank := map[string]int{}
		categoryRank := map[string]int{}
		for _, row := range edition {
			filled := false
			if row.PositionGender == nil && row.Gender != "" {
				genderRank[row.Gender]++
				pos := genderRank[row.Gender]
				row.PositionGender = &pos
				filled = true
			}
			if row.PositionCategory == nil && row.AgeCategory != "" {
				categoryRank[row.AgeCategory]++
				pos := categoryRank[row.AgeCategory]
				row.PositionCategory = &pos
				filled = true
			}
			if filled {
				updated = append(updated, row)
			}
		}
	}
	return updated
}
