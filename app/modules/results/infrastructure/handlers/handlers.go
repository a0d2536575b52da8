package resultshandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	resultsservice "github.com/hill-race-archive/race-results/app/modules/results/application"
	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
	"github.com/hill-race-archive/race-results/internal/observability"
)

// ResultsHandlers serves the results HTTP API.
type ResultsHandlers struct {
	service resultsservice.Service
	repo    resultsdb.ResultsDB
	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// NewResultsHandlers creates a new ResultsHandlers instance.
func NewResultsHandlers(
	service resultsservice.Service,
	repo resultsdb.ResultsDB,
	logger *slog.Logger,
	metrics *observability.Metrics,
	tracer trace.Tracer,
) *ResultsHandlers {
	return &ResultsHandlers{
		service: service,
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// Router builds the full API router, including health and metrics endpoints.
// Rate limiting applies per client IP with the given sustained rate and burst.
func (h *ResultsHandlers) Router(registry *prometheus.Registry, limit rate.Limit, burst int) chi.Router {
	r := chi.NewRouter()

	limiter := NewIPRateLimiter(limit, burst)
	r.Use(RateLimitMiddleware(limiter))
	r.Use(MetricsMiddleware(h.metrics))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/races", h.ListRaces)
		r.Get("/races/{raceName}/results", h.GetRaceResults)
		r.Get("/races/{raceName}/report", h.GetRaceReport)
		r.Get("/races/{raceName}/rankings", h.GetRankings)
		r.Get("/races/{raceName}/chart", h.GetChart)
		r.Get("/runners/{name}/history", h.GetRunnerHistory)
		r.Post("/import", h.ImportResults)
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
