package resultsservice

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
	"github.com/hill-race-archive/race-results/app/modules/results/infrastructure/parsers"
	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
	"github.com/hill-race-archive/race-results/internal/observability"
)

// ------------------------
// Fake Results Repo
// ------------------------

// FakeResultsRepository provides a programmable stub for the
// resultsdb.ResultsDB interface.
type FakeResultsRepository struct {
	trace []string

	UpsertRaceFunc            func(ctx context.Context, raceName string) (*resultsdb.Race, error)
	UpsertEditionFunc         func(ctx context.Context, raceID uuid.UUID, year int, date, category string) (*resultsdb.RaceEdition, error)
	ReplaceEditionResultsFunc func(ctx context.Context, editionID uuid.UUID, records []normalize.Record) (int, error)
	ListRacesFunc             func(ctx context.Context) ([]*resultsdb.Race, error)
	GetRaceFunc               func(ctx context.Context, raceName string) (*resultsdb.Race, error)
	GetResultsFunc            func(ctx context.Context, raceName string, year int) ([]*resultsdb.Result, error)
	GetRunnerHistoryFunc      func(ctx context.Context, runnerName string) ([]*resultsdb.Result, error)
	UpdatePositionsFunc       func(ctx context.Context, results []*resultsdb.Result) error

	LastStoredRecords []normalize.Record
	LastUpdatedRows   []*resultsdb.Result
}

func NewFakeResultsRepository() *FakeResultsRepository {
	return &FakeResultsRepository{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeResultsRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeResultsRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeResultsRepository) UpsertRace(ctx context.Context, raceName string) (*resultsdb.Race, error) {
	f.record("UpsertRace")
	if f.UpsertRaceFunc != nil {
		return f.UpsertRaceFunc(ctx, raceName)
	}
	return &resultsdb.Race{ID: uuid.New(), RaceName: raceName}, nil
}

func (f *FakeResultsRepository) UpsertEdition(ctx context.Context, raceID uuid.UUID, year int, date, category string) (*resultsdb.RaceEdition, error) {
	f.record("UpsertEdition")
	if f.UpsertEditionFunc != nil {
		return f.UpsertEditionFunc(ctx, raceID, year, date, category)
	}
	return &resultsdb.RaceEdition{ID: uuid.New(), RaceID: raceID, RaceYear: year, RaceDate: date, RaceCategory: category}, nil
}

func (f *FakeResultsRepository) ReplaceEditionResults(ctx context.Context, editionID uuid.UUID, records []normalize.Record) (int, error) {
	f.record("ReplaceEditionResults")
	f.LastStoredRecords = records
	if f.ReplaceEditionResultsFunc != nil {
		return f.ReplaceEditionResultsFunc(ctx, editionID, records)
	}
	return len(records), nil
}

func (f *FakeResultsRepository) ListRaces(ctx context.Context) ([]*resultsdb.Race, error) {
	f.record("ListRaces")
	if f.ListRacesFunc != nil {
		return f.ListRacesFunc(ctx)
	}
	return nil, nil
}

func (f *FakeResultsRepository) GetRace(ctx context.Context, raceName string) (*resultsdb.Race, error) {
	f.record("GetRace")
	if f.GetRaceFunc != nil {
		return f.GetRaceFunc(ctx, raceName)
	}
	return nil, resultsdb.ErrNotFound
}

func (f *FakeResultsRepository) GetResults(ctx context.Context, raceName string, year int) ([]*resultsdb.Result, error) {
	f.record("GetResults")
	if f.GetResultsFunc != nil {
		return f.GetResultsFunc(ctx, raceName, year)
	}
	return nil, resultsdb.ErrNotFound
}

func (f *FakeResultsRepository) GetRunnerHistory(ctx context.Context, runnerName string) ([]*resultsdb.Result, error) {
	f.record("GetRunnerHistory")
	if f.GetRunnerHistoryFunc != nil {
		return f.GetRunnerHistoryFunc(ctx, runnerName)
	}
	return nil, nil
}

func (f *FakeResultsRepository) UpdatePositions(ctx context.Context, results []*resultsdb.Result) error {
	f.record("UpdatePositions")
	f.LastUpdatedRows = results
	if f.UpdatePositionsFunc != nil {
		return f.UpdatePositionsFunc(ctx, results)
	}
	return nil
}

// newTestService wires a service around the fake repo with quiet telemetry.
func newTestService(repo resultsdb.ResultsDB) *ResultsService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewResultsService(repo, parsers.NewFactory(), nil, logger, metrics, tracer)
}
