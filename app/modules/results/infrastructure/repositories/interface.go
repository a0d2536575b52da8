package resultsdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
)

// ResultsDB is an interface for interacting with the results database.
type ResultsDB interface {
	UpsertRace(ctx context.Context, raceName string) (*Race, error)
	UpsertEdition(ctx context.Context, raceID uuid.UUID, year int, date, category string) (*RaceEdition, error)
	ReplaceEditionResults(ctx context.Context, editionID uuid.UUID, records []normalize.Record) (int, error)
	ListRaces(ctx context.Context) ([]*Race, error)
	GetRace(ctx context.Context, raceName string) (*Race, error)
	GetResults(ctx context.Context, raceName string, year int) ([]*Result, error)
	GetRunnerHistory(ctx context.Context, runnerName string) ([]*Result, error)
	UpdatePositions(ctx context.Context, results []*Result) error
}
