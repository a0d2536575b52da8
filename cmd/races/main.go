package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/hill-race-archive/race-results/app"
	"github.com/hill-race-archive/race-results/app/eventbus"
	"github.com/hill-race-archive/race-results/app/modules/normalize"
	resultsservice "github.com/hill-race-archive/race-results/app/modules/results/application"
	"github.com/hill-race-archive/race-results/app/modules/results/infrastructure/parsers"
	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
	resultsmigrations "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories/migrations"
	"github.com/hill-race-archive/race-results/config"
	"github.com/hill-race-archive/race-results/internal/observability"
)

func main() {
	cliApp := &cli.App{
		Name:  "races",
		Usage: "import, normalize, and query race results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			newMigrateCommand(),
			newImportCommand(),
			newListCommand(),
			newQueryCommand(),
			newReportCommand(),
			newPlotCommand(),
			newRankingsCommand(),
			newPositionsCommand(),
			newServeCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// toolkit bundles what every db-backed command needs.
type toolkit struct {
	cfg     *config.Config
	db      *bun.DB
	repo    *resultsdb.ResultsDBImpl
	service *resultsservice.ResultsService
	bus     eventbus.EventBus
}

func newToolkit(c *cli.Context) (*toolkit, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	obs := observability.Setup(cfg.Observability)

	db, err := app.OpenDB(c.Context, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewEventBus(obs.Logger)
	if err := bus.Subscribe(c.Context, eventbus.TopicResultsImported, resultsservice.ImportedEventLogger(obs.Logger)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to subscribe to import events: %w", err)
	}
	repo := &resultsdb.ResultsDBImpl{DB: db}
	service := resultsservice.NewResultsService(
		repo,
		parsers.NewFactory(),
		bus,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
	)

	return &toolkit{cfg: cfg, db: db, repo: repo, service: service, bus: bus}, nil
}

func (t *toolkit) Close() {
	t.bus.Close()
	t.db.Close()
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrator(func(c *cli.Context, migrator *migrate.Migrator) error {
					return migrator.Init(c.Context)
				}),
			},
			{
				Name:  "up",
				Usage: "migrate database",
				Action: withMigrator(func(c *cli.Context, migrator *migrate.Migrator) error {
					group, err := migrator.Migrate(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Println("No new migrations to run")
					} else {
						fmt.Printf("Migrated to %s\n", group)
					}
					return nil
				}),
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: withMigrator(func(c *cli.Context, migrator *migrate.Migrator) error {
					group, err := migrator.Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Println("No groups to roll back")
					} else {
						fmt.Printf("Rolled back %s\n", group)
					}
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrator(func(c *cli.Context, migrator *migrate.Migrator) error {
					ms, err := migrator.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("Migrations: %s\n", ms)
					fmt.Printf("Applied: %s\n", ms.Applied())
					fmt.Printf("Unapplied: %s\n", ms.Unapplied())
					return nil
				}),
			},
		},
	}
}

func withMigrator(fn func(c *cli.Context, migrator *migrate.Migrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		t, err := newToolkit(c)
		if err != nil {
			return err
		}
		defer t.Close()
		return fn(c, migrate.NewMigrator(t.db, resultsmigrations.Migrations))
	}
}

func newImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import one results file as a race edition",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "race", Required: true, Usage: "race name"},
			&cli.StringFlag{Name: "date", Usage: "race date, ISO or natural language (\"last saturday\")"},
			&cli.IntFlag{Name: "year", Usage: "race year (derived from --date when omitted)"},
			&cli.StringFlag{Name: "category", Usage: "race category (fell_race, 10k, ...)"},
			&cli.StringFlag{Name: "time-format", Usage: "time format: HH:MM:SS, MM:SS, or seconds"},
			&cli.BoolFlag{Name: "strict", Usage: "drop rows that fail to normalize"},
			&cli.StringFlag{Name: "default-age-category", Usage: "age category applied to blank cells"},
			&cli.StringFlag{Name: "mapping", Usage: "path to a YAML column mapping file"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one results file")
			}
			filename := c.Args().First()

			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", filename, err)
			}

			date, year, err := resolveDate(c.String("date"))
			if err != nil {
				return err
			}
			if c.Int("year") != 0 {
				year = c.Int("year")
			}

			var mapping normalize.ColumnMapping
			if path := c.String("mapping"); path != "" {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read mapping file: %w", err)
				}
				if err := yaml.Unmarshal(raw, &mapping); err != nil {
					return fmt.Errorf("failed to parse mapping file: %w", err)
				}
			}

			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.Close()

			timeFormat := c.String("time-format")
			if timeFormat == "" {
				timeFormat = t.cfg.Import.TimeFormat
			}
			strict := c.Bool("strict") || t.cfg.Import.Strict
			defaultAge := c.String("default-age-category")
			if defaultAge == "" {
				defaultAge = t.cfg.Import.DefaultAgeCategory
			}

			summary, err := t.service.ImportFile(c.Context, filename, data, resultsservice.ImportOptions{
				RaceName:           c.String("race"),
				RaceDate:           date,
				RaceYear:           year,
				RaceCategory:       normalize.RaceCategory(c.String("category")),
				TimeFormat:         normalize.TimeFormat(timeFormat),
				Strict:             strict,
				Mapping:            mapping,
				DefaultAgeCategory: defaultAge,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d records for %s %d\n", summary.RecordCount, summary.RaceName, summary.RaceYear)
			for _, dropped := range summary.DroppedRows {
				fmt.Printf("  dropped row %d: %s: %s\n", dropped.Row, dropped.Field, dropped.Reason)
			}
			return nil
		},
	}
}

func newListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list stored races and years",
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.Close()

			races, err := t.repo.ListRaces(c.Context)
			if err != nil {
				return err
			}

			for _, race := range races {
				fmt.Printf("%s:", race.RaceName)
				for _, edition := range race.Editions {
					fmt.Printf(" %d", edition.RaceYear)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func newQueryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "print a race's normalized results as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "race", Required: true},
			&cli.IntFlag{Name: "year"},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.Close()

			rows, err := t.repo.GetResults(c.Context, c.String("race"), c.Int("year"))
			if err != nil {
				return err
			}

			records := make([]normalize.Record, 0, len(rows))
			for _, row := range rows {
				records = append(records, row.ToRecord())
			}

			table := normalize.Project(records)
			writer := csv.NewWriter(os.Stdout)
			if err := writer.Write(table.Headers); err != nil {
				return err
			}
			for _, row := range table.Rows {
				if err := writer.Write(row); err != nil {
					return err
				}
			}
			writer.Flush()
			return writer.Error()
		},
	}
}

func newReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "print a race summary report as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "race", Required: true},
			&cli.IntFlag{Name: "year"},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.Close()

			report, err := t.service.RaceReport(c.Context, c.String("race"), c.Int("year"))
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(report)
		},
	}
}

func newPlotCommand() *cli.Command {
	return &cli.Command{
		Name:  "plot",
		Usage: "render a finish time histogram to a PNG file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "race", Required: true},
			&cli.IntFlag{Name: "year"},
			&cli.StringFlag{Name: "out", Value: "finish-times.png"},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.Close()

			png, err := t.service.FinishTimeChart(c.Context, c.String("race"), c.Int("year"))
			if err != nil {
				return err
			}

			out := c.String("out")
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
}

func newRankingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "rankings",
		Usage: "print Elo rankings for a race's runners",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "race", Required: true},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.Close()

			ratings, err := t.service.CalculateRankings(c.Context, c.String("race"))
			if err != nil {
				return err
			}

			for i, r := range ratings {
				fmt.Printf("%3d. %-30s %7.1f (%d races)\n", i+1, r.Name, r.Rating, r.Races)
			}
			return nil
		},
	}
}

func newPositionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "positions",
		Usage: "derive gender and category positions for stored results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "race", Required: true},
			&cli.IntFlag{Name: "year"},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.Close()

			updated, err := t.service.ApplyDerivedPositions(c.Context, c.String("race"), c.Int("year"))
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d results\n", updated)
			return nil
		},
	}
}

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API server",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Run(ctx)
		},
	}
}
