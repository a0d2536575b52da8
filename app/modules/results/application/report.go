package resultsservice

import (
	"context"
	"math"
	"sort"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
)

// TimeStats summarizes the finish times of one group, in seconds.
type TimeStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// GroupCount is one breakdown bucket.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Report summarizes one race, or one edition of it when a year is given.
type Report struct {
	RaceName     string       `json:"race_name"`
	RaceYear     int          `json:"race_year,omitempty"`
	Starters     int          `json:"starters"`
	Finishers    int          `json:"finishers"`
	NonFinishers int          `json:"non_finishers"`
	Times        *TimeStats   `json:"times,omitempty"`
	Winner       string       `json:"winner,omitempty"`
	ByGender     []GroupCount `json:"by_gender,omitempty"`
	ByCategory   []GroupCount `json:"by_category,omitempty"`
	TopClubs     []GroupCount `json:"top_clubs,omitempty"`
}

const topClubCount = 10

// RaceReport builds a summary report from the stored results. A zero year
// covers every edition.
func (s *ResultsService) RaceReport(ctx context.Context, raceName string, year int) (*Report, error) {
	return withTelemetry(s, ctx, "RaceReport", raceName, func(ctx context.Context) (*Report, error) {
		rows, err := s.repo.GetResults(ctx, raceName, year)
		if err != nil {
			return nil, err
		}

		records := make([]normalize.Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, row.ToRecord())
		}

		return buildReport(raceName, year, records), nil
	})
}

func buildReport(raceName string, year int, records []normalize.Record) *Report {
	report := &Report{
		RaceName: raceName,
		RaceYear: year,
		Starters: len(records),
	}

	var times []float64
	var winner string
	winnerTime := math.Inf(1)
	gender := map[string]int{}
	category := map[string]int{}
	clubs := map[string]int{}

	for _, r := range records {
		if r.RaceStatus == normalize.StatusFinished {
			report.Finishers++
		} else if r.RaceStatus.IsNonFinish() {
			report.NonFinishers++
		}

		if t, ok := r.PreferredTimeSeconds(); ok {
			times = append(times, t)
			if t < winnerTime {
				winnerTime = t
				winner = r.Name
			}
		}

		if r.Gender != "" {
			gender[string(r.Gender)]++
		}
		if r.AgeCategory != "" {
			category[r.AgeCategory]++
		}
		if r.Club != "" && r.Club != normalize.UnattachedClub {
			clubs[r.Club]++
		}
	}

	report.Times = timeStats(times)
	report.Winner = winner
	report.ByGender = sortedCounts(gender, 0)
	report.ByCategory = sortedCounts(category, 0)
	report.TopClubs = sortedCounts(clubs, topClubCount)

	return report
}

func timeStats(times []float64) *TimeStats {
	if len(times) == 0 {
		return nil
	}

	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, t := range sorted {
		sum += t
	}

	return &TimeStats{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
		Median: percentile(sorted, 50),
		P90:    percentile(sorted, 90),
	}
}

// percentile interpolates linearly between the two nearest ranks. The input
// must be sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	low := int(math.Floor(rank))
	high := int(math.Ceil(rank))
	if low == high {
		return sorted[low]
	}
	frac := rank - float64(low)
	return sorted[low]*(1-frac) + sorted[high]*frac
}

// sortedCounts orders buckets by descending count, then key for stable output.
// A zero limit keeps every bucket.
func sortedCounts(counts map[string]int, limit int) []GroupCount {
	if len(counts) == 0 {
		return nil
	}

	out := make([]GroupCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, GroupCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
