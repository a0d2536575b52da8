package resultsmigrations

import (
	"context"
	"fmt"

	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating results schema...")

		if _, err := db.NewCreateTable().Model((*resultsdb.Race)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create races table: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*resultsdb.RaceEdition)(nil)).
			IfNotExists().
			ForeignKey(`("race_id") REFERENCES "races" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create race_editions table: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*resultsdb.Result)(nil)).
			IfNotExists().
			ForeignKey(`("edition_id") REFERENCES "race_editions" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create results table: %w", err)
		}

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE UNIQUE INDEX IF NOT EXISTS idx_race_editions_race_year ON race_editions(race_id, race_year);
			`); err != nil {
				return fmt.Errorf("failed to add unique index to race_editions: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_results_edition_id ON results(edition_id);
			`); err != nil {
				return fmt.Errorf("failed to add index to results: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_results_name ON results(name);
			`); err != nil {
				return fmt.Errorf("failed to add name index to results: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping results schema...")

		for _, model := range []interface{}{
			(*resultsdb.Result)(nil),
			(*resultsdb.RaceEdition)(nil),
			(*resultsdb.Race)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table: %w", err)
			}
		}
		return nil
	})
}
