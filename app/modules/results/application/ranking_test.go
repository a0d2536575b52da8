package resultsservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
)

func TestCalculateRankings(t *testing.T) {
	repo := NewFakeResultsRepository()
	repo.GetResultsFunc = func(ctx context.Context, raceName string, year int) ([]*resultsdb.Result, error) {
		return []*resultsdb.Result{
			storedResult("A", "", "M", "", 2023, 1900),
			storedResult("B", "", "M", "", 2023, 2000),
			storedResult("C", "", "M", "", 2023, 2100),
			storedResult("A", "", "M", "", 2024, 1950),
			storedResult("B", "", "M", "", 2024, 1940),
		}, nil
	}
	service := newTestService(repo)

	ratings, err := service.CalculateRankings(context.Background(), "Carnethy 5")
	require.NoError(t, err)
	require.Len(t, ratings, 3)

	byName := map[string]RunnerRating{}
	for _, r := range ratings {
		byName[r.Name] = r
	}

	// A swept 2023 (+32) but lost the 2024 head-to-head as the favorite,
	// which costs more than an even exchange; B ends up on top.
	require.Equal(t, "B", ratings[0].Name)
	require.Greater(t, byName["B"].Rating, byName["A"].Rating)
	require.Greater(t, byName["A"].Rating, byName["C"].Rating)

	require.Equal(t, 2, byName["A"].Races)
	require.Equal(t, 2, byName["B"].Races)
	require.Equal(t, 1, byName["C"].Races)

	// Elo is zero-sum around the initial rating.
	total := 0.0
	for _, r := range ratings {
		total += r.Rating - eloInitialRating
	}
	require.InDelta(t, 0, total, 1e-6)
}

func TestRankByElo_SkipsRowsWithoutNameOrTime(t *testing.T) {
	rows := []*resultsdb.Result{
		storedResult("A", "", "M", "", 2024, 1900),
		storedResult("", "", "M", "", 2024, 1950),
		storedResult("B", "", "M", "", 2024, 0),
	}

	ratings := rankByElo(rows)
	require.Len(t, ratings, 1)
	require.Equal(t, "A", ratings[0].Name)
	require.Equal(t, eloInitialRating, ratings[0].Rating)
}

func TestRankByElo_Deterministic(t *testing.T) {
	rows := []*resultsdb.Result{
		storedResult("A", "", "M", "", 2023, 1900),
		storedResult("B", "", "M", "", 2023, 2000),
		storedResult("C", "", "M", "", 2024, 1800),
		storedResult("A", "", "M", "", 2024, 1850),
	}

	first := rankByElo(rows)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, rankByElo(rows))
	}
}
