package resultsservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hill-race-archive/race-results/app/eventbus"
	"github.com/hill-race-archive/race-results/app/modules/results/infrastructure/parsers"
	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
	"github.com/hill-race-archive/race-results/internal/observability"
)

// ResultsService implements the Service interface.
type ResultsService struct {
	repo     resultsdb.ResultsDB
	parsers  parsers.ParserFactory
	EventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

// NewResultsService creates a new ResultsService.
func NewResultsService(
	repo resultsdb.ResultsDB,
	parserFactory parsers.ParserFactory,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics *observability.Metrics,
	tracer trace.Tracer,
) *ResultsService {
	return &ResultsService{
		repo:     repo,
		parsers:  parserFactory,
		EventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[T any](
	s *ResultsService,
	ctx context.Context,
	operationName string,
	raceName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("race_name", raceName),
	))
	defer span.End()

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.String("race_name", raceName),
				slog.Any("error", err),
			)
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed",
			slog.String("operation", operationName),
			slog.String("race_name", raceName),
			slog.Any("error", wrappedErr),
		)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	return result, nil
}
