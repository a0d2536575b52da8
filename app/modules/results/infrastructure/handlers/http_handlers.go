package resultshandlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
	resultsservice "github.com/hill-race-archive/race-results/app/modules/results/application"
	resultsdb "github.com/hill-race-archive/race-results/app/modules/results/infrastructure/repositories"
)

// maxUploadBytes caps import uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// HealthCheck reports liveness.
func (h *ResultsHandlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type raceSummary struct {
	RaceName string `json:"race_name"`
	Years    []int  `json:"years"`
}

// ListRaces returns every stored race and the years it has results for.
func (h *ResultsHandlers) ListRaces(w http.ResponseWriter, r *http.Request) {
	races, err := h.repo.ListRaces(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list races", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to list races")
		return
	}

	summaries := make([]raceSummary, 0, len(races))
	for _, race := range races {
		summary := raceSummary{RaceName: race.RaceName, Years: []int{}}
		for _, edition := range race.Editions {
			summary.Years = append(summary.Years, edition.RaceYear)
		}
		summaries = append(summaries, summary)
	}

	respondJSON(w, http.StatusOK, summaries)
}

// GetRaceResults returns the normalized records for a race. The optional
// year query parameter narrows it to one edition.
func (h *ResultsHandlers) GetRaceResults(w http.ResponseWriter, r *http.Request) {
	raceName := chi.URLParam(r, "raceName")

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	rows, err := h.repo.GetResults(r.Context(), raceName, year)
	if err != nil {
		if errors.Is(err, resultsdb.ErrNotFound) {
			respondError(w, http.StatusNotFound, "race not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to fetch results", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to fetch results")
		return
	}

	records := make([]normalize.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.ToRecord())
	}
	respondJSON(w, http.StatusOK, records)
}

// GetRaceReport returns the summary report for a race.
func (h *ResultsHandlers) GetRaceReport(w http.ResponseWriter, r *http.Request) {
	raceName := chi.URLParam(r, "raceName")

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	report, err := h.service.RaceReport(r.Context(), raceName, year)
	if err != nil {
		if errors.Is(err, resultsdb.ErrNotFound) {
			respondError(w, http.StatusNotFound, "race not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to build report", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetRankings returns Elo ratings for a race's runners.
func (h *ResultsHandlers) GetRankings(w http.ResponseWriter, r *http.Request) {
	raceName := chi.URLParam(r, "raceName")

	ratings, err := h.service.CalculateRankings(r.Context(), raceName)
	if err != nil {
		if errors.Is(err, resultsdb.ErrNotFound) {
			respondError(w, http.StatusNotFound, "race not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to calculate rankings", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to calculate rankings")
		return
	}

	respondJSON(w, http.StatusOK, ratings)
}

// GetChart returns a PNG histogram of finish times.
func (h *ResultsHandlers) GetChart(w http.ResponseWriter, r *http.Request) {
	raceName := chi.URLParam(r, "raceName")

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	png, err := h.service.FinishTimeChart(r.Context(), raceName, year)
	if err != nil {
		if errors.Is(err, resultsdb.ErrNotFound) {
			respondError(w, http.StatusNotFound, "race not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to render chart", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// GetRunnerHistory returns every stored result for one runner.
func (h *ResultsHandlers) GetRunnerHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rows, err := h.repo.GetRunnerHistory(r.Context(), name)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to fetch runner history", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to fetch runner history")
		return
	}
	if len(rows) == 0 {
		respondError(w, http.StatusNotFound, "runner not found")
		return
	}

	records := make([]normalize.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.ToRecord())
	}
	respondJSON(w, http.StatusOK, records)
}

// ImportResults accepts a multipart upload ("file") plus form fields and
// imports it as one race edition.
func (h *ResultsHandlers) ImportResults(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	opts := resultsservice.ImportOptions{
		RaceName:           r.FormValue("race_name"),
		RaceDate:           r.FormValue("race_date"),
		RaceCategory:       normalize.RaceCategory(r.FormValue("race_category")),
		TimeFormat:         normalize.TimeFormat(r.FormValue("time_format")),
		Strict:             r.FormValue("strict") == "true",
		DefaultAgeCategory: r.FormValue("default_age_category"),
	}
	if v := r.FormValue("race_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid race_year")
			return
		}
		opts.RaceYear = year
	}

	summary, err := h.service.ImportFile(r.Context(), header.Filename, data, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Import failed",
			slog.String("file", header.Filename),
			slog.Any("error", err),
		)
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, summary)
}

// yearParam parses the optional year query parameter. On a malformed value it
// writes a 400 and returns false.
func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return 0, true
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid year")
		return 0, false
	}
	return year, true
}
