package resultsservice

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

// FinishTimeChart renders a PNG histogram of the race's finish times. A zero
// year covers every edition.
func (s *ResultsService) FinishTimeChart(ctx context.Context, raceName string, year int) ([]byte, error) {
	return withTelemetry(s, ctx, "FinishTimeChart", raceName, func(ctx context.Context) ([]byte, error) {
		rows, err := s.repo.GetResults(ctx, raceName, year)
		if err != nil {
			return nil, err
		}

		var times []float64
		for _, row := range rows {
			record := row.ToRecord()
			if t, ok := record.PreferredTimeSeconds(); ok {
				times = append(times, t)
			}
		}
		if len(times) == 0 {
			return nil, fmt.Errorf("race %q has no finish times to chart", raceName)
		}

		return renderFinishTimeHistogram(raceName, times)
	})
}

const histogramBuckets = 12

func renderFinishTimeHistogram(raceName string, times []float64) ([]byte, error) {
	min, max := times[0], times[0]
	for _, t := range times {
		min = math.Min(min, t)
		max = math.Max(max, t)
	}

	width := (max - min) / histogramBuckets
	if width == 0 {
		width = 1
	}

	counts := make([]int, histogramBuckets)
	for _, t := range times {
		bucket := int((t - min) / width)
		if bucket >= histogramBuckets {
			bucket = histogramBuckets - 1
		}
		counts[bucket]++
	}

	bars := make([]chart.Value, histogramBuckets)
	for i, count := range counts {
		bars[i] = chart.Value{
			Value: float64(count),
			Label: formatMinutes(min + float64(i)*width),
		}
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s finish times", raceName),
		Width:    900,
		Height:   450,
		BarWidth: 50,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Name: "Runners",
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func formatMinutes(seconds float64) string {
	return fmt.Sprintf("%dm", int(seconds/60))
}
