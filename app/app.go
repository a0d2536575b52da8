package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/time/rate"

	"github.com/hill-race-archive/race-results/app/eventbus"
	resultsservice "github.com/hill-race-archive/race-results/app/modules/results/application"
	resultshandlers "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/handlers"
	"github.com/hill-race-archive/race-results/app/modules/results/infrastructure/parsers"
	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
	"github.com/hill-race-archive/race-results/config"
	"github.com/hill-race-archive/race-results/internal/observability"
)

// App wires the results service, storage, and HTTP API together.
type App struct {
	Cfg           *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Service       *resultsservice.ResultsService
	server        *http.Server
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.Setup(cfg.Observability)
	logger := obs.Logger

	db, err := OpenDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewEventBus(logger)
	if err := bus.Subscribe(ctx, eventbus.TopicResultsImported, resultsservice.ImportedEventLogger(logger)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to subscribe to import events: %w", err)
	}

	repo := &resultsdb.ResultsDBImpl{DB: db}
	service := resultsservice.NewResultsService(
		repo,
		parsers.NewFactory(),
		bus,
		logger,
		obs.Metrics,
		obs.Tracer,
	)

	handlers := resultshandlers.NewResultsHandlers(service, repo, logger, obs.Metrics, obs.Tracer)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handlers.Router(obs.Registry, rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		Cfg:           cfg,
		Observability: obs,
		DB:            db,
		EventBus:      bus,
		Service:       service,
		server:        server,
	}, nil
}

// OpenDB connects to Postgres and verifies the connection.
func OpenDB(ctx context.Context, dsn string) (*bun.DB, error) {
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(pgdb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Run serves the HTTP API until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	return nil
}

// Close releases the app's resources.
func (app *App) Close() error {
	logger := app.Observability.Logger

	if err := app.EventBus.Close(); err != nil {
		logger.Error("Failed to close event bus", slog.Any("error", err))
	}
	if err := app.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
