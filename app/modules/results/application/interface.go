package resultsservice

import (
	"context"
)

// Service is the results module's application surface.
type Service interface {
	ImportFile(ctx context.Context, filename string, data []byte, opts ImportOptions) (*ImportSummary, error)
	RaceReport(ctx context.Context, raceName string, year int) (*Report, error)
	CalculateRankings(ctx context.Context, raceName string) ([]RunnerRating, error)
	FinishTimeChart(ctx context.Context, raceName string, year int) ([]byte, error)
	ApplyDerivedPositions(ctx context.Context, raceName string, year int) (int, error)
}
