package resultsservice

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hill-race-archive/race-results/app/eventbus"
	"github.com/hill-race-archive/race-results/app/modules/normalize"
)

// ImportOptions controls how one results file is normalized and stored.
type ImportOptions struct {
	RaceName           string
	RaceDate           string
	RaceYear           int
	RaceCategory       normalize.RaceCategory
	TimeFormat         normalize.TimeFormat
	Strict             bool
	Mapping            normalize.ColumnMapping
	DefaultAgeCategory string
}

// ImportSummary reports what one import stored.
type ImportSummary struct {
	RaceName    string               `json:"race_name"`
	RaceYear    int                  `json:"race_year"`
	RecordCount int                  `json:"record_count"`
	DroppedRows []normalize.RowError `json:"dropped_rows,omitempty"`
}

// ResultsImportedEvent is published on every successful import.
type ResultsImportedEvent struct {
	RaceName    string `json:"race_name"`
	RaceYear    int    `json:"race_year"`
	RecordCount int    `json:"record_count"`
	DroppedRows int    `json:"dropped_rows"`
}

// ImportFile parses, normalizes, and stores one results file. Re-importing
// the same race and year replaces the stored edition.
func (s *ResultsService) ImportFile(ctx context.Context, filename string, data []byte, opts ImportOptions) (*ImportSummary, error) {
	return withTelemetry(s, ctx, "ImportFile", opts.RaceName, func(ctx context.Context) (*ImportSummary, error) {
		if opts.RaceName == "" {
			return nil, fmt.Errorf("race name is required")
		}

		year := opts.RaceYear
		if year == 0 && len(opts.RaceDate) >= 4 {
			if y, err := strconv.Atoi(opts.RaceDate[:4]); err == nil {
				year = y
			}
		}
		if year == 0 {
			return nil, fmt.Errorf("race year is required (set it directly or via an ISO race date)")
		}

		parser, err := s.parsers.GetParser(filename)
		if err != nil {
			return nil, err
		}

		table, err := parser.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}

		normalizer := normalize.New(normalize.Options{
			Mapping:            opts.Mapping,
			AutoDetect:         true,
			TimeFormat:         opts.TimeFormat,
			Strict:             opts.Strict,
			RaceName:           opts.RaceName,
			RaceDate:           opts.RaceDate,
			RaceYear:           year,
			RaceCategory:       opts.RaceCategory,
			DefaultAgeCategory: opts.DefaultAgeCategory,
		})

		records, dropped, err := normalizer.Normalize(table)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize %s: %w", filename, err)
		}

		race, err := s.repo.UpsertRace(ctx, opts.RaceName)
		if err != nil {
			return nil, err
		}

		edition, err := s.repo.UpsertEdition(ctx, race.ID, year, opts.RaceDate, string(opts.RaceCategory))
		if err != nil {
			return nil, err
		}

		stored, err := s.repo.ReplaceEditionResults(ctx, edition.ID, records)
		if err != nil {
			s.metrics.ImportsTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		s.metrics.ImportsTotal.WithLabelValues("ok").Inc()
		s.metrics.ImportRowsTotal.WithLabelValues(opts.RaceName).Add(float64(stored))
		s.metrics.ImportRowFailures.WithLabelValues(opts.RaceName).Add(float64(len(dropped)))

		s.logger.InfoContext(ctx, "Results file imported",
			slog.String("file", filename),
			slog.String("race_name", opts.RaceName),
			slog.Int("race_year", year),
			slog.Int("records", stored),
			slog.Int("dropped", len(dropped)),
		)

		if s.EventBus != nil {
			event := ResultsImportedEvent{
				RaceName:    opts.RaceName,
				RaceYear:    year,
				RecordCount: stored,
				DroppedRows: len(dropped),
			}
			if err := s.EventBus.Publish(ctx, eventbus.TopicResultsImported, event); err != nil {
				s.logger.WarnContext(ctx, "Failed to publish import event", slog.Any("error", err))
			}
		}

		return &ImportSummary{
			RaceName:    opts.RaceName,
			RaceYear:    year,
			RecordCount: stored,
			DroppedRows: dropped,
		}, nil
	})
}
