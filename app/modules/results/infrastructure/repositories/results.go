package resultsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
)

type ResultsDBImpl struct {
	DB *bun.DB
}

// UpsertRace inserts the race if it is new and returns the stored row either
// way. Race names are unique.
func (db *ResultsDBImpl) UpsertRace(ctx context.Context, raceName string) (*Race, error) {
	race := &Race{RaceName: raceName}

	_, err := db.DB.NewInsert().
		Model(race).
		On("CONFLICT (race_name) DO UPDATE").
		Set("race_name = EXCLUDED.race_name").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert race %q: %w", raceName, err)
	}

	return race, nil
}

// UpsertEdition inserts the edition for (race, year) if it is new. Date and
// category are refreshed on conflict so a re-import with corrected metadata
// wins.
func (db *ResultsDBImpl) UpsertEdition(ctx context.Context, raceID uuid.UUID, year int, date, category string) (*RaceEdition, error) {
	edition := &RaceEdition{
		RaceID:       raceID,
		RaceYear:     year,
		RaceDate:     date,
		RaceCategory: category,
	}

	_, err := db.DB.NewInsert().
		Model(edition).
		On("CONFLICT (race_id, race_year) DO UPDATE").
		Set("race_date = EXCLUDED.race_date, race_category = EXCLUDED.race_category").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert edition %d for race %s: %w", year, raceID, err)
	}

	return edition, nil
}

// ReplaceEditionResults replaces the edition's rows with the given records in
// a single transaction. Re-importing a file is therefore idempotent.
func (db *ResultsDBImpl) ReplaceEditionResults(ctx context.Context, editionID uuid.UUID, records []normalize.Record) (int, error) {
	rows := make([]*Result, 0, len(records))
	for _, record := range records {
		rows = append(rows, ResultFromRecord(editionID, record))
	}

	err := db.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Result)(nil)).
			Where("edition_id = ?", editionID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear existing results: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert results: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to replace results for edition %s: %w", editionID, err)
	}

	return len(rows), nil
}

// ListRaces returns every race with its editions, ordered by name.
func (db *ResultsDBImpl) ListRaces(ctx context.Context) ([]*Race, error) {
	var races []*Race
	err := db.DB.NewSelect().
		Model(&races).
		Relation("Editions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("race_year ASC")
		}).
		Order("race_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list races: %w", err)
	}
	return races, nil
}

// GetRace fetches one race with its editions.
func (db *ResultsDBImpl) GetRace(ctx context.Context, raceName string) (*Race, error) {
	race := &Race{}
	err := db.DB.NewSelect().
		Model(race).
		Relation("Editions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("race_year ASC")
		}).
		Where("race_name = ?", raceName).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch race %q: %w", raceName, err)
	}
	return race, nil
}

// GetResults returns the stored results for a race, annotated with race name
// and year. A zero year means every edition.
func (db *ResultsDBImpl) GetResults(ctx context.Context, raceName string, year int) ([]*Result, error) {
	var results []*Result
	q := db.DB.NewSelect().
		Model(&results).
		ColumnExpr("res.*").
		ColumnExpr("ra.race_name AS race_name").
		ColumnExpr("e.race_year AS race_year").
		Join("JOIN race_editions AS e ON e.id = res.edition_id").
		Join("JOIN races AS ra ON ra.id = e.race_id").
		Where("ra.race_name = ?", raceName).
		OrderExpr("e.race_year ASC, res.position_overall ASC NULLS LAST, res.name ASC")

	if year != 0 {
		q = q.Where("e.race_year = ?", year)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch results for race %q: %w", raceName, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results, nil
}

// GetRunnerHistory returns every stored result for a runner name across all
// races, oldest edition first.
func (db *ResultsDBImpl) GetRunnerHistory(ctx context.Context, runnerName string) ([]*Result, error) {
	var results []*Result
	err := db.DB.NewSelect().
		Model(&results).
		ColumnExpr("res.*").
		ColumnExpr("ra.race_name AS race_name").
		ColumnExpr("e.race_year AS race_year").
		Join("JOIN race_editions AS e ON e.id = res.edition_id").
		Join("JOIN races AS ra ON ra.id = e.race_id").
		Where("res.name = ?", runnerName).
		OrderExpr("e.race_year ASC, ra.race_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for runner %q: %w", runnerName, err)
	}
	return results, nil
}

// UpdatePositions writes back derived gender and category positions.
func (db *ResultsDBImpl) UpdatePositions(ctx context.Context, results []*Result) error {
	if len(results) == 0 {
		return nil
	}

	res, err := db.DB.NewUpdate().
		Model(&results).
		Column("position_gender", "position_category").
		Bulk().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update positions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
