package resultsservice

import (
	"context"
	"math"
	"sort"

	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
)

// RunnerRating is one runner's Elo rating across a race's editions.
type RunnerRating struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Races  int     `json:"races"`
}

const (
	eloInitialRating = 1500.0
	eloKFactor       = 32.0
)

// CalculateRankings computes Elo ratings for every runner who has finished
// the race, processing editions oldest first. Within an edition every pair of
// finishers is one head-to-head decided by time.
func (s *ResultsService) CalculateRankings(ctx context.Context, raceName string) ([]RunnerRating, error) {
	return withTelemetry(s, ctx, "CalculateRankings", raceName, func(ctx context.Context) ([]RunnerRating, error) {
		rows, err := s.repo.GetResults(ctx, raceName, 0)
		if err != nil {
			return nil, err
		}
		return rankByElo(rows), nil
	})
}

type eloEntrant struct {
	name string
	time float64
}

func rankByElo(rows []*resultsdb.Result) []RunnerRating {
	ratings := map[string]float64{}
	raceCounts := map[string]int{}

	for _, edition := range groupByYear(rows) {
		for _, e := range edition {
			if _, ok := ratings[e.name]; !ok {
				ratings[e.name] = eloInitialRating
			}
			raceCounts[e.name]++
		}

		// Ratings update from the pre-edition snapshot so pair order
		// within an edition does not matter.
		before := make(map[string]float64, len(ratings))
		for k, v := range ratings {
			before[k] = v
		}

		for i := 0; i < len(edition); i++ {
			for j := i + 1; j < len(edition); j++ {
				winner, loser := edition[i], edition[j]
				if loser.time < winner.time {
					winner, loser = loser, winner
				}
				expected := 1 / (1 + math.Pow(10, (before[loser.name]-before[winner.name])/400))
				delta := eloKFactor * (1 - expected)
				if winner.time == loser.time {
					delta = eloKFactor * (0.5 - expected)
				}
				ratings[winner.name] += delta
				ratings[loser.name] -= delta
			}
		}
	}

	out := make([]RunnerRating, 0, len(ratings))
	for name, rating := range ratings {
		out = append(out, RunnerRating{Name: name, Rating: rating, Races: raceCounts[name]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// groupByYear splits the rows into per-edition entrant lists, oldest year
// first. Rows without a name or a usable time are skipped.
func groupByYear(rows []*resultsdb.Result) [][]eloEntrant {
	byYear := map[int][]eloEntrant{}
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		record := row.ToRecord()
		t, ok := record.PreferredTimeSeconds()
		if !ok {
			continue
		}
		byYear[row.RaceYear] = append(byYear[row.RaceYear], eloEntrant{name: row.Name, time: t})
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([][]eloEntrant, 0, len(years))
	for _, y := range years {
		out = append(out, byYear[y])
	}
	return out
}
